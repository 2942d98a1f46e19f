package veterinarians

import (
	"context"
	"errors"
	"strings"

	"veterinaria-ica/internal/domain/users"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUserNotFound = errors.New("user not found")
)

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (users.User, error)
}

// AppointmentCounter cuenta citas por veterinario (appointments.Service).
type AppointmentCounter interface {
	CountByVeterinarian(ctx context.Context, vetID int64) (int, error)
}

type Service struct {
	repo  Repository
	users UserLookup
}

func NewService(repo Repository, users UserLookup) *Service {
	return &Service{repo: repo, users: users}
}

type CreateInput struct {
	UserID    int64
	Specialty string
	Phone     string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Veterinarian, error) {
	if in.UserID <= 0 {
		return Veterinarian{}, ErrInvalidInput
	}

	u, err := s.users.GetByID(ctx, in.UserID)
	if errors.Is(err, users.ErrNotFound) {
		return Veterinarian{}, ErrUserNotFound
	}
	if err != nil {
		return Veterinarian{}, err
	}

	v := Veterinarian{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Specialty: strings.TrimSpace(in.Specialty),
		Phone:     strings.TrimSpace(in.Phone),
	}
	id, err := s.repo.Create(ctx, v)
	if err != nil {
		return Veterinarian{}, err
	}
	v.ID = id
	return v, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Veterinarian, error) {
	if id <= 0 {
		return Veterinarian{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Exists lo usa appointments para validar veterinario_id.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) List(ctx context.Context) ([]Veterinarian, error) {
	return s.repo.List(ctx)
}
