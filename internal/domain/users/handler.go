package users

import (
	"net/http"
	"time"

	"veterinaria-ica/internal/middleware"
	"veterinaria-ica/internal/platform/logger"
	"veterinaria-ica/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, gate *middleware.Gate) {
	r.With(gate.Role(RoleAdmin)...).Get("/api/usuarios", listUsersHandler(svc, gate.Logger()))
}

// Response nunca incluye el hash de contraseña.
type Response struct {
	ID         int64     `json:"id"`
	Nombre     string    `json:"nombre"`
	Email      string    `json:"email"`
	FotoPerfil string    `json:"foto_perfil,omitempty"`
	Proveedor  Provider  `json:"proveedor"`
	CreadoEn   time.Time `json:"creado_en"`
}

// listUsersHandler godoc
// @Summary      Listar usuarios
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]any
// @Failure      401 {object} map[string]any
// @Failure      403 {object} map[string]any
// @Router       /api/usuarios [get]
func listUsersHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			logger.FromContext(r.Context(), log).Error("list users", map[string]any{"error": err})
			respond.Fail(w, http.StatusInternalServerError, respond.MsgInternal)
			return
		}

		out := make([]Response, 0, len(items))
		for _, u := range items {
			out = append(out, ToResponse(u))
		}
		respond.OK(w, http.StatusOK, map[string]any{"usuarios": out})
	}
}

func ToResponse(u User) Response {
	return Response{
		ID:         u.ID,
		Nombre:     u.Name,
		Email:      u.Email,
		FotoPerfil: u.PictureURL,
		Proveedor:  u.Provider,
		CreadoEn:   u.CreatedAt,
	}
}
