package middleware

import (
	"context"
	"fmt"

	"veterinaria-ica/internal/ports/auth"
)

// RequireRole consulta el almacenamiento en cada request: un rol asignado
// (o quitado) se refleja en el siguiente request sin reemitir el token.
func RequireRole(resolver auth.RoleResolver, role string) auth.Policy {
	return func(ctx context.Context, c auth.Claims) error {
		ok, err := resolver.HasRole(ctx, c.UserID, role)
		if err != nil {
			return fmt.Errorf("resolve role %s for user %d: %w", role, c.UserID, err)
		}
		if !ok {
			return auth.ErrForbidden
		}
		return nil
	}
}

// SelfOrRole permite al dueño del recurso (ownerID) o a quien tenga role.
func SelfOrRole(resolver auth.RoleResolver, ownerID int64, role string) auth.Policy {
	byRole := RequireRole(resolver, role)
	return func(ctx context.Context, c auth.Claims) error {
		if ownerID > 0 && c.UserID == ownerID {
			return nil
		}
		return byRole(ctx, c)
	}
}
