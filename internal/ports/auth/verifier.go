package auth

import (
	"context"
	"errors"
)

var (
	ErrForbidden = errors.New("forbidden")

	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	ErrInvalidFederatedToken = errors.New("invalid federated token")
	// ErrVerifierUnavailable: el proveedor externo no respondió (red, timeout).
	ErrVerifierUnavailable = errors.New("federated verifier unavailable")
)

// TokenVerifier verifica un token de sesión y devuelve claims o error.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// FederatedVerifier valida un id_token de un proveedor de identidad externo.
type FederatedVerifier interface {
	Verify(ctx context.Context, rawToken string) (FederatedIdentity, error)
}

// RoleResolver resuelve los roles asignados a un usuario (sin cache).
type RoleResolver interface {
	RolesOf(ctx context.Context, userID int64) ([]string, error)
	HasRole(ctx context.Context, userID int64, role string) (bool, error)
}

// Policy decide si un sujeto autenticado puede continuar.
// Retorna ErrForbidden si no, u otro error si no pudo decidir.
type Policy func(ctx context.Context, c Claims) error
