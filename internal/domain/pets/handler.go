package pets

import (
	"errors"
	"net/http"
	"time"

	"veterinaria-ica/internal/domain/users"
	"veterinaria-ica/internal/middleware"
	"veterinaria-ica/internal/platform/logger"
	"veterinaria-ica/internal/platform/reqparse"
	"veterinaria-ica/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

const (
	MsgCreated      = "Mascota registrada"
	MsgMissingData  = "Faltan datos de la mascota"
	MsgOwnerMissing = "Usuario no encontrado"
	MsgBadUserID    = "usuario_id inválido"
)

func RegisterRoutes(r chi.Router, svc *Service, gate *middleware.Gate) {
	log := gate.Logger()

	// Administración
	r.With(gate.Role(users.RoleAdmin)...).Post("/api/mascotas", createPetHandler(svc, log))
	r.With(gate.Role(users.RoleAdmin)...).Get("/api/mascotas", listPetsHandler(svc, log))

	// Cliente (dueño o ADMIN)
	r.With(gate.Authenticated()...).Get("/api/cliente/mascotas/{usuario_id}", listOwnerPetsHandler(svc, gate))
	r.With(gate.Authenticated()...).Post("/api/cliente/mascotas", createOwnPetHandler(svc, gate))
}

type createPetRequest struct {
	UsuarioID reqparse.FlexInt   `json:"usuario_id"`
	Nombre    string             `json:"nombre"`
	Especie   string             `json:"especie"`
	Raza      string             `json:"raza"`
	Edad      reqparse.FlexInt   `json:"edad"`
	Peso      reqparse.FlexFloat `json:"peso"`
}

func (req createPetRequest) input() CreateInput {
	return CreateInput{
		OwnerID: int64(req.UsuarioID),
		Name:    req.Nombre,
		Species: req.Especie,
		Breed:   req.Raza,
		Age:     int(req.Edad),
		Weight:  float64(req.Peso),
	}
}

type petResponse struct {
	ID        int64     `json:"id"`
	UsuarioID int64     `json:"usuario_id"`
	Nombre    string    `json:"nombre"`
	Especie   string    `json:"especie"`
	Raza      string    `json:"raza"`
	Edad      int       `json:"edad"`
	Peso      float64   `json:"peso"`
	CreadoEn  time.Time `json:"creado_en"`
	Dueno     string    `json:"dueño,omitempty"`
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:        p.ID,
		UsuarioID: p.OwnerID,
		Nombre:    p.Name,
		Especie:   p.Species,
		Raza:      p.Breed,
		Edad:      p.Age,
		Peso:      p.Weight,
		CreadoEn:  p.CreatedAt,
		Dueno:     p.OwnerName,
	}
}

func toPetResponses(items []Pet) []petResponse {
	out := make([]petResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPetResponse(p))
	}
	return out
}

// createPetHandler godoc
// @Summary      Registrar mascota (admin)
// @Tags         mascotas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body createPetRequest true "mascota"
// @Success      201 {object} map[string]any
// @Failure      400 {object} map[string]any
// @Failure      403 {object} map[string]any
// @Router       /api/mascotas [post]
func createPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := reqparse.JSON(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, MsgMissingData)
			return
		}

		p, err := svc.Create(r.Context(), req.input())
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusCreated, map[string]any{"id": p.ID})
	}
}

// listPetsHandler godoc
// @Summary      Listar mascotas con su dueño (admin)
// @Tags         mascotas
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]any
// @Router       /api/mascotas [get]
func listPetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, map[string]any{"mascotas": toPetResponses(items)})
	}
}

// listOwnerPetsHandler godoc
// @Summary      Mascotas de un usuario
// @Tags         cliente
// @Produce      json
// @Security     BearerAuth
// @Param        usuario_id path int true "id del usuario"
// @Success      200 {object} map[string]any
// @Failure      403 {object} map[string]any
// @Router       /api/cliente/mascotas/{usuario_id} [get]
func listOwnerPetsHandler(svc *Service, gate *middleware.Gate) http.HandlerFunc {
	log := gate.Logger()
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		ownerID, ok := reqparse.ID(r, "usuario_id")
		if !ok {
			respond.Fail(w, http.StatusBadRequest, MsgBadUserID)
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
		respond.OK(w, http.StatusOK, map[string]any{"mascotas": toPetResponses(items)})
	}
}

// createOwnPetHandler godoc
// @Summary      Registrar mascota propia
// @Description  usuario_id es opcional; por defecto el usuario autenticado.
// @Tags         cliente
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body createPetRequest true "mascota"
// @Success      201 {object} map[string]any
// @Failure      400 {object} map[string]any
// @Failure      403 {object} map[string]any
// @Router       /api/cliente/mascotas [post]
func createOwnPetHandler(svc *Service, gate *middleware.Gate) http.HandlerFunc {
	log := gate.Logger()
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req createPetRequest
		if err := reqparse.JSON(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, MsgMissingData)
			return
		}
		if req.UsuarioID <= 0 {
			req.UsuarioID = reqparse.FlexInt(claims.UserID)
		}

		policy := middleware.SelfOrRole(gate.Roles(), int64(req.UsuarioID), users.RoleAdmin)
		if err := policy(r.Context(), claims); err != nil {
			middleware.WritePolicyError(w, r, log, err)
			return
		}

		p, err := svc.Create(r.Context(), req.input())
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusCreated, map[string]any{"msg": MsgCreated, "id": p.ID})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Fail(w, http.StatusBadRequest, MsgMissingData)
	case errors.Is(err, ErrOwnerNotFound):
		respond.Fail(w, http.StatusNotFound, MsgOwnerMissing)
	default:
		logger.FromContext(r.Context(), log).Error("pets", map[string]any{"error": err})
		respond.Fail(w, http.StatusInternalServerError, respond.MsgInternal)
	}
}
