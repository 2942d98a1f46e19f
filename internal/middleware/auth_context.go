package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"veterinaria-ica/internal/platform/logger"
	"veterinaria-ica/internal/platform/respond"
	"veterinaria-ica/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

const (
	MsgTokenMissing = "Token no enviado"
	MsgTokenInvalid = "Token inválido"
	MsgForbidden    = "No tienes permisos para esta acción"
)

// Authenticate exige "Authorization: Bearer <token>".
// - sin header (o esquema distinto) => 401 "Token no enviado"
// - token inválido/expirado        => 401 "Token inválido"
// Nunca deja pasar claims parciales.
func Authenticate(verifier auth.TokenVerifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				respond.Fail(w, http.StatusUnauthorized, MsgTokenMissing)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.FromContext(r.Context(), log).Debug("token rejected", map[string]any{"error": err})
				respond.Fail(w, http.StatusUnauthorized, MsgTokenInvalid)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithClaims guarda claims en ctx. Exportado para tests de handlers.
func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authorize evalúa las policies en orden; todas deben pasar.
// Debe montarse después de Authenticate.
func Authorize(log logger.Logger, policies ...auth.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok {
				respond.Fail(w, http.StatusUnauthorized, MsgTokenMissing)
				return
			}
			for _, p := range policies {
				if err := p(r.Context(), claims); err != nil {
					WritePolicyError(w, r, log, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WritePolicyError traduce el error de una policy a 403 o 500.
func WritePolicyError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	if errors.Is(err, auth.ErrForbidden) {
		respond.Fail(w, http.StatusForbidden, MsgForbidden)
		return
	}
	logger.FromContext(r.Context(), log).Error("authorization failed", map[string]any{"error": err})
	respond.Fail(w, http.StatusInternalServerError, respond.MsgInternal)
}
