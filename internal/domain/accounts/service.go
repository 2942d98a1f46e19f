package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"veterinaria-ica/internal/domain/users"
	"veterinaria-ica/internal/ports/auth"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidCredentials cubre usuario inexistente y contraseña errónea.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type TokenIssuer interface {
	Issue(userID int64, email string) (string, time.Time, error)
}

type Service struct {
	users     users.Repository
	hasher    PasswordHasher
	tokens    TokenIssuer
	federated auth.FederatedVerifier

	dummyOnce sync.Once
	dummy     string
}

func NewService(repo users.Repository, hasher PasswordHasher, tokens TokenIssuer, federated auth.FederatedVerifier) *Service {
	return &Service{
		users:     repo,
		hasher:    hasher,
		tokens:    tokens,
		federated: federated,
	}
}

// Session es el resultado de un login exitoso.
type Session struct {
	User      users.User
	Token     string
	ExpiresAt time.Time
	Role      string
	Roles     []string
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register crea un usuario local con rol CLIENTE. No emite token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (users.User, error) {
	name := strings.TrimSpace(in.Name)
	email := users.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return users.User{}, ErrMissingFields
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return users.User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.users.CreateLocal(ctx, users.User{
		Name:         name,
		Email:        email,
		PasswordHash: digest,
		Provider:     users.ProviderLocal,
	}, users.RoleClient)
}

// Login autentica con email/contraseña (solo cuentas locales).
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = users.NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrMissingFields
	}

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, users.ErrNotFound):
		// Misma latencia que un usuario existente.
		s.hasher.Verify(password, s.dummyDigest())
		return Session{}, ErrInvalidCredentials
	case err != nil:
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	if !u.IsLocal() {
		s.hasher.Verify(password, s.dummyDigest())
		return Session{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}

	return s.issue(ctx, u)
}

// LoginFederated valida el id_token externo y hace find-or-create del usuario.
func (s *Service) LoginFederated(ctx context.Context, rawToken string) (Session, error) {
	if strings.TrimSpace(rawToken) == "" {
		return Session{}, ErrMissingFields
	}
	if s.federated == nil {
		return Session{}, auth.ErrVerifierUnavailable
	}

	id, err := s.federated.Verify(ctx, rawToken)
	if err != nil {
		return Session{}, err
	}

	name := strings.TrimSpace(id.DisplayName)
	email := users.NormalizeEmail(id.Email)
	if name == "" {
		name = email
	}

	u, _, err := s.users.FindOrCreateFederated(ctx, users.User{
		Name:       name,
		Email:      email,
		PictureURL: id.PictureURL,
		Provider:   users.ProviderGoogle,
	}, users.RoleClient)
	if err != nil {
		return Session{}, fmt.Errorf("find or create federated user: %w", err)
	}

	return s.issue(ctx, u)
}

// EnsureAdmin garantiza que exista un usuario local con rol ADMIN.
// Si el email ya existe solo se le asigna el rol (no se toca la contraseña).
func (s *Service) EnsureAdmin(ctx context.Context, in RegisterInput) (users.User, bool, error) {
	email := users.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return users.User{}, false, ErrMissingFields
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if err := s.users.AssignRole(ctx, existing.ID, users.RoleAdmin); err != nil {
			return users.User{}, false, fmt.Errorf("assign admin role: %w", err)
		}
		return existing, false, nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return users.User{}, false, fmt.Errorf("lookup admin: %w", err)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Administrador"
	}
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return users.User{}, false, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateLocal(ctx, users.User{
		Name:         name,
		Email:        email,
		PasswordHash: digest,
		Provider:     users.ProviderLocal,
	}, users.RoleAdmin)
	if errors.Is(err, users.ErrEmailTaken) {
		// otra instancia lo creó entre el lookup y el insert
		return s.EnsureAdmin(ctx, in)
	}
	if err != nil {
		return users.User{}, false, err
	}
	return u, true, nil
}

func (s *Service) issue(ctx context.Context, u users.User) (Session, error) {
	roles, err := s.users.RolesOf(ctx, u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("resolve roles: %w", err)
	}

	token, exp, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}

	u.PasswordHash = ""
	return Session{
		User:      u,
		Token:     token,
		ExpiresAt: exp,
		Role:      users.PrimaryRole(roles),
		Roles:     roles,
	}, nil
}

func (s *Service) dummyDigest() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = s.hasher.Hash("veterinaria-ica-dummy")
	})
	return s.dummy
}
