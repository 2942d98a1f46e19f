package users

import (
	"context"
	"errors"
	"sort"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Exists lo usan otros módulos para validar referencias a usuarios.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// RolesOf y HasRole implementan auth.RoleResolver. Sin cache: cada request
// de autorización ve el estado actual del almacenamiento.
func (s *Service) RolesOf(ctx context.Context, userID int64) ([]string, error) {
	return s.repo.RolesOf(ctx, userID)
}

func (s *Service) HasRole(ctx context.Context, userID int64, role string) (bool, error) {
	roles, err := s.repo.RolesOf(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) AssignRole(ctx context.Context, userID int64, role string) error {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role != RoleAdmin && role != RoleClient {
		return ErrUnknownRole
	}
	return s.repo.AssignRole(ctx, userID, role)
}

// PrimaryRole elige el rol que se informa al cliente tras un login:
// ADMIN si lo tiene, si no CLIENTE, si no el primero alfabético.
func PrimaryRole(roles []string) string {
	has := func(want string) bool {
		for _, r := range roles {
			if r == want {
				return true
			}
		}
		return false
	}
	switch {
	case has(RoleAdmin):
		return RoleAdmin
	case has(RoleClient):
		return RoleClient
	case len(roles) > 0:
		sorted := append([]string(nil), roles...)
		sort.Strings(sorted)
		return sorted[0]
	default:
		return RoleClient
	}
}
