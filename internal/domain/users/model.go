package users

import "time"

// Provider indica cómo se creó la cuenta.
// @Enum local, google
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

// Roles conocidos (tabla roles).
const (
	RoleAdmin  = "ADMIN"
	RoleClient = "CLIENTE"
)

// User es una cuenta. Las cuentas federadas no tienen PasswordHash.
type User struct {
	ID    int64
	Name  string
	Email string // siempre en minúsculas

	PasswordHash string
	PictureURL   string
	Provider     Provider

	CreatedAt time.Time
}

// IsLocal: tiene contraseña y puede usar login con email/contraseña.
func (u User) IsLocal() bool {
	return u.Provider == ProviderLocal && u.PasswordHash != ""
}
