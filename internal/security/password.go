package security

import "golang.org/x/crypto/bcrypt"

const DefaultBcryptCost = 10

// PasswordHasher: hash bcrypt con costo fijo. La comparación es de tiempo
// constante (bcrypt.CompareHashAndPassword).
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	return string(b), err
}

// Verify devuelve false ante mismatch o digest corrupto; no es un error.
func (h *PasswordHasher) Verify(plain, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
