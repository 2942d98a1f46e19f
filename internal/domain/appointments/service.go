package appointments

import (
	"context"
	"errors"
	"strings"
	"time"

	"veterinaria-ica/internal/domain/pets"
)

var (
	ErrMissingFields = errors.New("missing appointment fields")
	ErrInvalidDate   = errors.New("invalid date")
	ErrPetNotFound   = errors.New("pet not found")
	ErrVetNotFound   = errors.New("veterinarian not found")
)

// PetOwners resuelve el dueño de una mascota (pets.Service).
type PetOwners interface {
	OwnerOf(ctx context.Context, petID int64) (int64, error)
}

type VetLookup interface {
	Exists(ctx context.Context, vetID int64) (bool, error)
}

type Service struct {
	repo Repository
	pets PetOwners
	vets VetLookup
}

func NewService(repo Repository, pets PetOwners, vets VetLookup) *Service {
	return &Service{repo: repo, pets: pets, vets: vets}
}

type CreateInput struct {
	PetID  int64
	VetID  int64
	Date   time.Time
	Reason string
}

// Create agenda una cita en estado PENDIENTE.
func (s *Service) Create(ctx context.Context, in CreateInput) (Appointment, error) {
	reason := strings.TrimSpace(in.Reason)
	if in.PetID <= 0 || in.VetID <= 0 || in.Date.IsZero() || reason == "" {
		return Appointment{}, ErrMissingFields
	}

	if _, err := s.PetOwner(ctx, in.PetID); err != nil {
		return Appointment{}, err
	}
	ok, err := s.vets.Exists(ctx, in.VetID)
	if err != nil {
		return Appointment{}, err
	}
	if !ok {
		return Appointment{}, ErrVetNotFound
	}

	a := Appointment{
		PetID:  in.PetID,
		VetID:  in.VetID,
		Date:   in.Date.UTC(),
		Reason: reason,
		Status: StatusPending,
	}
	id, err := s.repo.Create(ctx, a)
	if err != nil {
		return Appointment{}, err
	}
	a.ID = id
	return a, nil
}

// PetOwner devuelve el dueño de la mascota o ErrPetNotFound.
func (s *Service) PetOwner(ctx context.Context, petID int64) (int64, error) {
	owner, err := s.pets.OwnerOf(ctx, petID)
	if errors.Is(err, pets.ErrNotFound) {
		return 0, ErrPetNotFound
	}
	return owner, err
}

func (s *Service) List(ctx context.Context) ([]Appointment, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]Appointment, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) CountByVeterinarian(ctx context.Context, vetID int64) (int, error) {
	return s.repo.CountByVeterinarian(ctx, vetID)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate acepta RFC3339 y los formatos de <input type="datetime-local">.
// Sin zona horaria se interpreta como UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
