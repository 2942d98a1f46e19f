package appointments

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"veterinaria-ica/internal/domain/users"
	"veterinaria-ica/internal/middleware"
	"veterinaria-ica/internal/platform/logger"
	"veterinaria-ica/internal/platform/reqparse"
	"veterinaria-ica/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

const (
	MsgCreated     = "Cita creada correctamente"
	MsgDeleted     = "Cita eliminada"
	MsgMissingData = "Faltan datos para crear la cita"
	MsgInvalidDate = "Fecha inválida"
	MsgNotFound    = "Cita no encontrada"
	MsgPetNotFound = "Mascota no encontrada"
	MsgVetNotFound = "Veterinario no encontrado"
	MsgBadID       = "id inválido"
)

func RegisterRoutes(r chi.Router, svc *Service, gate *middleware.Gate) {
	log := gate.Logger()

	r.With(gate.Role(users.RoleAdmin)...).Get("/api/citas", listAppointmentsHandler(svc, log))
	r.With(gate.Role(users.RoleAdmin)...).Delete("/api/citas/{id}", deleteAppointmentHandler(svc, log))

	r.With(gate.Authenticated()...).Get("/api/cliente/citas/{usuario_id}", listOwnerAppointmentsHandler(svc, gate))
	r.With(gate.Authenticated()...).Post("/api/cliente/citas", createAppointmentHandler(svc, gate))
}

type createAppointmentRequest struct {
	MascotaID     reqparse.FlexInt `json:"mascota_id"`
	VeterinarioID reqparse.FlexInt `json:"veterinario_id"`
	Fecha         string           `json:"fecha"`
	Motivo        string           `json:"motivo"`
}

type appointmentResponse struct {
	ID            int64     `json:"id"`
	MascotaID     int64     `json:"mascota_id"`
	VeterinarioID int64     `json:"veterinario_id"`
	Fecha         time.Time `json:"fecha"`
	Motivo        string    `json:"motivo"`
	Estado        Status    `json:"estado"`
	Mascota       string    `json:"mascota"`
	Veterinario   string    `json:"veterinario"`
}

func toResponses(items []Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, appointmentResponse{
			ID:            a.ID,
			MascotaID:     a.PetID,
			VeterinarioID: a.VetID,
			Fecha:         a.Date,
			Motivo:        a.Reason,
			Estado:        a.Status,
			Mascota:       a.PetName,
			Veterinario:   a.VetName,
		})
	}
	return out
}

// listAppointmentsHandler godoc
// @Summary      Listar todas las citas (admin)
// @Tags         citas
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]any
// @Router       /api/citas [get]
func listAppointmentsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, map[string]any{"citas": toResponses(items)})
	}
}

// deleteAppointmentHandler godoc
// @Summary      Eliminar cita (admin)
// @Tags         citas
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "id de la cita"
// @Success      200 {object} map[string]any
// @Failure      404 {object} map[string]any
// @Router       /api/citas/{id} [delete]
func deleteAppointmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := reqparse.ID(r, "id")
		if !ok {
			respond.Fail(w, http.StatusBadRequest, MsgBadID)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, map[string]any{"msg": MsgDeleted})
	}
}

// listOwnerAppointmentsHandler godoc
// @Summary      Citas de las mascotas de un usuario
// @Tags         cliente
// @Produce      json
// @Security     BearerAuth
// @Param        usuario_id path int true "id del usuario"
// @Success      200 {object} map[string]any
// @Failure      403 {object} map[string]any
// @Router       /api/cliente/citas/{usuario_id} [get]
func listOwnerAppointmentsHandler(svc *Service, gate *middleware.Gate) http.HandlerFunc {
	log := gate.Logger()
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		ownerID, ok := reqparse.ID(r, "usuario_id")
		if !ok {
			respond.Fail(w, http.StatusBadRequest, MsgBadID)
			return
		}
		policy := middleware.SelfOrRole(gate.Roles(), ownerID, users.RoleAdmin)
		if err := policy(r.Context(), claims); err != nil {
			middleware.WritePolicyError(w, r, log, err)
			return
		}

		items, err := svc.ListByOwner(r.Context(), ownerID)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, map[string]any{"citas": toResponses(items)})
	}
}

// createAppointmentHandler godoc
// @Summary      Agendar cita
// @Description  La mascota debe pertenecer al usuario autenticado (o ser ADMIN).
// @Tags         cliente
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body createAppointmentRequest true "cita"
// @Success      201 {object} map[string]any
// @Failure      400 {object} map[string]any
// @Failure      403 {object} map[string]any
// @Router       /api/cliente/citas [post]
func createAppointmentHandler(svc *Service, gate *middleware.Gate) http.HandlerFunc {
	log := gate.Logger()
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req createAppointmentRequest
		if err := reqparse.JSON(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, MsgMissingData)
			return
		}
		date, err := ParseDate(req.Fecha)
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, MsgInvalidDate)
			return
		}
		in := CreateInput{
			PetID:  int64(req.MascotaID),
			VetID:  int64(req.VeterinarioID),
			Date:   date,
			Reason: req.Motivo,
		}
		if in.PetID <= 0 || in.VetID <= 0 || in.Date.IsZero() || strings.TrimSpace(in.Reason) == "" {
			respond.Fail(w, http.StatusBadRequest, MsgMissingData)
			return
		}

		owner, err := svc.PetOwner(r.Context(), in.PetID)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		policy := middleware.SelfOrRole(gate.Roles(), owner, users.RoleAdmin)
		if err := policy(r.Context(), claims); err != nil {
			middleware.WritePolicyError(w, r, log, err)
			return
		}

		a, err := svc.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusCreated, map[string]any{"msg": MsgCreated, "id": a.ID})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		respond.Fail(w, http.StatusBadRequest, MsgMissingData)
	case errors.Is(err, ErrInvalidDate):
		respond.Fail(w, http.StatusBadRequest, MsgInvalidDate)
	case errors.Is(err, ErrNotFound):
		respond.Fail(w, http.StatusNotFound, MsgNotFound)
	case errors.Is(err, ErrPetNotFound):
		respond.Fail(w, http.StatusNotFound, MsgPetNotFound)
	case errors.Is(err, ErrVetNotFound):
		respond.Fail(w, http.StatusNotFound, MsgVetNotFound)
	default:
		logger.FromContext(r.Context(), log).Error("appointments", map[string]any{"error": err})
		respond.Fail(w, http.StatusInternalServerError, respond.MsgInternal)
	}
}
