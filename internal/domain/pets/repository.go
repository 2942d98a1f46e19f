package pets

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("pet not found")

type Repository interface {
	// Create persiste p y devuelve el id asignado.
	Create(ctx context.Context, p Pet) (int64, error)
	GetByID(ctx context.Context, id int64) (Pet, error)
	// List devuelve todas las mascotas con OwnerName (id desc).
	List(ctx context.Context) ([]Pet, error)
	// ListByOwner ordena por creado_en desc.
	ListByOwner(ctx context.Context, ownerID int64) ([]Pet, error)
}
