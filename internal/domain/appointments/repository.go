package appointments

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("appointment not found")

type Repository interface {
	Create(ctx context.Context, a Appointment) (int64, error)
	// List ordena por id desc, ListByOwner por fecha desc. Ambos incluyen
	// PetName/VetName.
	List(ctx context.Context) ([]Appointment, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Appointment, error)
	Delete(ctx context.Context, id int64) error
	CountByVeterinarian(ctx context.Context, vetID int64) (int, error)
}
