package middleware

import (
	"net/http"

	"veterinaria-ica/internal/platform/logger"
	"veterinaria-ica/internal/ports/auth"
)

// Gate agrupa las cadenas de middleware que usan los módulos al registrar
// rutas, para no repetir verifier/resolver en cada handler.
type Gate struct {
	verifier auth.TokenVerifier
	roles    auth.RoleResolver
	log      logger.Logger
}

func NewGate(verifier auth.TokenVerifier, roles auth.RoleResolver, log logger.Logger) *Gate {
	if log == nil {
		log = logger.NewNop()
	}
	return &Gate{verifier: verifier, roles: roles, log: log}
}

// Authenticated: cualquier sujeto con token válido.
func (g *Gate) Authenticated() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		Authenticate(g.verifier, g.log),
	}
}

// Role: token válido + rol vigente en almacenamiento.
func (g *Gate) Role(role string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		Authenticate(g.verifier, g.log),
		Authorize(g.log, RequireRole(g.roles, role)),
	}
}

// Roles expone el resolver para checks de ownership dentro de handlers.
func (g *Gate) Roles() auth.RoleResolver { return g.roles }

func (g *Gate) Logger() logger.Logger { return g.log }
