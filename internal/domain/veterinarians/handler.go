package veterinarians

import (
	"errors"
	"net/http"

	"veterinaria-ica/internal/domain/users"
	"veterinaria-ica/internal/middleware"
	"veterinaria-ica/internal/platform/logger"
	"veterinaria-ica/internal/platform/reqparse"
	"veterinaria-ica/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

const (
	MsgUserNotFound = "Usuario no encontrado"
	MsgMissingUser  = "usuario_id es obligatorio"
	MsgBadID        = "id inválido"
)

func RegisterRoutes(r chi.Router, svc *Service, counter AppointmentCounter, gate *middleware.Gate) {
	log := gate.Logger()

	r.With(gate.Role(users.RoleAdmin)...).Post("/api/veterinarios", createVetHandler(svc, log))
	r.With(gate.Role(users.RoleAdmin)...).Get("/api/veterinarios", listVetsHandler(svc, log))
	r.With(gate.Role(users.RoleAdmin)...).Get("/api/veterinarios/{id}/citas-count", countAppointmentsHandler(counter, log))

	// Listado para clientes (solo datos públicos)
	r.With(gate.Authenticated()...).Get("/api/public/veterinarios", listPublicVetsHandler(svc, log))
}

type createVetRequest struct {
	UsuarioID    reqparse.FlexInt `json:"usuario_id"`
	Especialidad string           `json:"especialidad"`
	Telefono     string           `json:"telefono"`
}

type vetResponse struct {
	ID           int64  `json:"id"`
	UsuarioID    int64  `json:"usuario_id"`
	Nombre       string `json:"nombre"`
	Email        string `json:"email"`
	Especialidad string `json:"especialidad"`
	Telefono     string `json:"telefono"`
}

type publicVetResponse struct {
	ID           int64  `json:"id"`
	Nombre       string `json:"nombre"`
	Especialidad string `json:"especialidad"`
}

// createVetHandler godoc
// @Summary      Crear perfil de veterinario (admin)
// @Tags         veterinarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body createVetRequest true "veterinario"
// @Success      201 {object} map[string]any
// @Failure      404 {object} map[string]any
// @Router       /api/veterinarios [post]
func createVetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createVetRequest
		if err := reqparse.JSON(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, MsgMissingUser)
			return
		}

		v, err := svc.Create(r.Context(), CreateInput{
			UserID:    int64(req.UsuarioID),
			Specialty: req.Especialidad,
			Phone:     req.Telefono,
		})
		switch {
		case err == nil:
			respond.OK(w, http.StatusCreated, map[string]any{"id": v.ID})
		case errors.Is(err, ErrInvalidInput):
			respond.Fail(w, http.StatusBadRequest, MsgMissingUser)
		case errors.Is(err, ErrUserNotFound):
			respond.Fail(w, http.StatusNotFound, MsgUserNotFound)
		default:
			internalError(w, r, log, err)
		}
	}
}

// listVetsHandler godoc
// @Summary      Listar veterinarios (admin)
// @Tags         veterinarios
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]any
// @Router       /api/veterinarios [get]
func listVetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			internalError(w, r, log, err)
			return
		}
		out := make([]vetResponse, 0, len(items))
		for _, v := range items {
			out = append(out, vetResponse{
				ID:           v.ID,
				UsuarioID:    v.UserID,
				Nombre:       v.Name,
				Email:        v.Email,
				Especialidad: v.Specialty,
				Telefono:     v.Phone,
			})
		}
		respond.OK(w, http.StatusOK, map[string]any{"veterinarios": out})
	}
}

// countAppointmentsHandler godoc
// @Summary      Cantidad de citas de un veterinario (admin)
// @Tags         veterinarios
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "id del veterinario"
// @Success      200 {object} map[string]any
// @Router       /api/veterinarios/{id}/citas-count [get]
func countAppointmentsHandler(counter AppointmentCounter, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := reqparse.ID(r, "id")
		if !ok {
			respond.Fail(w, http.StatusBadRequest, MsgBadID)
			return
		}
		total, err := counter.CountByVeterinarian(r.Context(), id)
		if err != nil {
			internalError(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, map[string]any{"total": total})
	}
}

// listPublicVetsHandler godoc
// @Summary      Veterinarios disponibles
// @Tags         cliente
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]any
// @Router       /api/public/veterinarios [get]
func listPublicVetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			internalError(w, r, log, err)
			return
		}
		out := make([]publicVetResponse, 0, len(items))
		for _, v := range items {
			out = append(out, publicVetResponse{ID: v.ID, Nombre: v.Name, Especialidad: v.Specialty})
		}
		respond.OK(w, http.StatusOK, map[string]any{"veterinarios": out})
	}
}

func internalError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	logger.FromContext(r.Context(), log).Error("veterinarians", map[string]any{"error": err})
	respond.Fail(w, http.StatusInternalServerError, respond.MsgInternal)
}
