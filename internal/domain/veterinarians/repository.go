package veterinarians

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("veterinarian not found")

type Repository interface {
	Create(ctx context.Context, v Veterinarian) (int64, error)
	GetByID(ctx context.Context, id int64) (Veterinarian, error)
	// List ordena por id asc.
	List(ctx context.Context) ([]Veterinarian, error)
}
