package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailTaken  = errors.New("email already registered")
	ErrUnknownRole = errors.New("unknown role")
)

type Repository interface {
	// CreateLocal inserta usuario + rol en una sola unidad atómica.
	// Retorna ErrEmailTaken si el email ya existe (incluso bajo concurrencia).
	CreateLocal(ctx context.Context, u User, role string) (User, error)

	// FindOrCreateFederated busca por email; si no existe crea el usuario con
	// role. created=false si ya existía (no se duplica el rol).
	FindOrCreateFederated(ctx context.Context, u User, role string) (User, bool, error)

	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// List ordena por id desc.
	List(ctx context.Context) ([]User, error)

	// RolesOf lee los roles vigentes (orden alfabético).
	RolesOf(ctx context.Context, userID int64) ([]string, error)
	// AssignRole es idempotente.
	AssignRole(ctx context.Context, userID int64, role string) error
}
