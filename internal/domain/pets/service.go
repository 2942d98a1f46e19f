package pets

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrOwnerNotFound = errors.New("owner not found")
)

// OwnerLookup verifica que el dueño exista (users.Service).
type OwnerLookup interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

type Service struct {
	repo   Repository
	owners OwnerLookup
	now    func() time.Time
}

func NewService(repo Repository, owners OwnerLookup) *Service {
	return &Service{
		repo:   repo,
		owners: owners,
		now:    time.Now,
	}
}

type CreateInput struct {
	OwnerID int64
	Name    string
	Species string
	Breed   string
	Age     int
	Weight  float64
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	if in.OwnerID <= 0 || strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}
	if in.Age < 0 || in.Weight < 0 {
		return Pet{}, ErrInvalidInput
	}

	if s.owners != nil {
		ok, err := s.owners.Exists(ctx, in.OwnerID)
		if err != nil {
			return Pet{}, err
		}
		if !ok {
			return Pet{}, ErrOwnerNotFound
		}
	}

	p := Pet{
		OwnerID:   in.OwnerID,
		Name:      strings.TrimSpace(in.Name),
		Species:   strings.TrimSpace(in.Species),
		Breed:     strings.TrimSpace(in.Breed),
		Age:       in.Age,
		Weight:    in.Weight,
		CreatedAt: s.now(),
	}

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return Pet{}, err
	}
	p.ID = id
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Pet, error) {
	if id <= 0 {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Pet, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// OwnerOf expone el dueño de una mascota.
// Se usa para evitar ciclos de imports entre módulos (pets <-> appointments).
func (s *Service) OwnerOf(ctx context.Context, petID int64) (int64, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return 0, err
	}
	return p.OwnerID, nil
}
