package accounts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"veterinaria-ica/internal/domain/users"
	"veterinaria-ica/internal/platform/logger"
	"veterinaria-ica/internal/platform/reqparse"
	"veterinaria-ica/internal/platform/respond"
	"veterinaria-ica/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

const (
	MsgMissingFields      = "Todos los campos son obligatorios"
	MsgEmailTaken         = "Ese correo ya está registrado"
	MsgRegistered         = "Usuario registrado correctamente"
	MsgInvalidCredentials = "Credenciales inválidas"
	MsgGoogleMissing      = "Token de Google no enviado"
	MsgGoogleInvalid      = "Token de Google inválido"
)

// LoginObserver recibe el resultado de cada intento (métricas).
type LoginObserver interface {
	ObserveLogin(method, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveLogin(string, string) {}

func RegisterRoutes(r chi.Router, svc *Service, obs LoginObserver, log logger.Logger) {
	if obs == nil {
		obs = nopObserver{}
	}
	r.Post("/api/auth/login-admin", loginHandler(svc, obs, log))
	r.Post("/api/auth/register", registerHandler(svc, obs, log))
	r.Post("/api/auth/google", googleHandler(svc, obs, log))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	Credential string `json:"credential"`
	IDToken    string `json:"id_token"`
}

// loginHandler godoc
// @Summary      Login con email y contraseña
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body loginRequest true "credenciales"
// @Success      200 {object} map[string]any
// @Failure      400 {object} map[string]any
// @Failure      401 {object} map[string]any
// @Router       /api/auth/login-admin [post]
func loginHandler(svc *Service, obs LoginObserver, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := reqparse.JSON(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, MsgMissingFields)
			return
		}

		sess, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeLoginError(w, r, log, obs, "local", err)
			return
		}
		obs.ObserveLogin("local", "ok")
		writeSession(w, sess)
	}
}

// registerHandler godoc
// @Summary      Registro de cliente
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body registerRequest true "datos"
// @Success      201 {object} map[string]any
// @Failure      400 {object} map[string]any
// @Router       /api/auth/register [post]
func registerHandler(svc *Service, obs LoginObserver, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := reqparse.JSON(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, MsgMissingFields)
			return
		}

		_, err := svc.Register(r.Context(), RegisterInput{
			Name:     req.Nombre,
			Email:    req.Email,
			Password: req.Password,
		})
		switch {
		case err == nil:
			obs.ObserveLogin("register", "ok")
			respond.OK(w, http.StatusCreated, map[string]any{"msg": MsgRegistered})
		case errors.Is(err, ErrMissingFields):
			obs.ObserveLogin("register", "rejected")
			respond.Fail(w, http.StatusBadRequest, MsgMissingFields)
		case errors.Is(err, users.ErrEmailTaken):
			obs.ObserveLogin("register", "rejected")
			respond.Fail(w, http.StatusBadRequest, MsgEmailTaken)
		default:
			obs.ObserveLogin("register", "error")
			logger.FromContext(r.Context(), log).Error("register", map[string]any{"error": err})
			respond.Fail(w, http.StatusInternalServerError, respond.MsgInternal)
		}
	}
}

// googleHandler godoc
// @Summary      Login con Google (id_token)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body googleRequest true "credential o id_token"
// @Success      200 {object} map[string]any
// @Failure      400 {object} map[string]any
// @Failure      401 {object} map[string]any
// @Router       /api/auth/google [post]
func googleHandler(svc *Service, obs LoginObserver, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req googleRequest
		if err := reqparse.JSON(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, MsgGoogleMissing)
			return
		}
		raw := strings.TrimSpace(req.Credential)
		if raw == "" {
			raw = strings.TrimSpace(req.IDToken)
		}

		sess, err := svc.LoginFederated(r.Context(), raw)
		if err != nil {
			writeLoginError(w, r, log, obs, "google", err)
			return
		}
		obs.ObserveLogin("google", "ok")
		writeSession(w, sess)
	}
}

func writeSession(w http.ResponseWriter, sess Session) {
	respond.OK(w, http.StatusOK, map[string]any{
		"user":  users.ToResponse(sess.User),
		"token": sess.Token,
		"rol":   sess.Role,
	})
}

func writeLoginError(w http.ResponseWriter, r *http.Request, log logger.Logger, obs LoginObserver, method string, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		obs.ObserveLogin(method, "rejected")
		if method == "google" {
			respond.Fail(w, http.StatusBadRequest, MsgGoogleMissing)
			return
		}
		respond.Fail(w, http.StatusBadRequest, MsgMissingFields)
	case errors.Is(err, ErrInvalidCredentials):
		obs.ObserveLogin(method, "rejected")
		respond.Fail(w, http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, auth.ErrInvalidFederatedToken):
		obs.ObserveLogin(method, "rejected")
		respond.Fail(w, http.StatusUnauthorized, MsgGoogleInvalid)
	default:
		obs.ObserveLogin(method, "error")
		fields := map[string]any{"error": err, "method": method}
		if errors.Is(err, context.DeadlineExceeded) {
			fields["timeout"] = true
		}
		logger.FromContext(r.Context(), log).Error("login failed", fields)
		respond.Fail(w, http.StatusInternalServerError, respond.MsgInternal)
	}
}
