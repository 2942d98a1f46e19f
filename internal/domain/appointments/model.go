package appointments

import "time"

// Status es el estado de una cita.
// @Enum PENDIENTE
type Status string

const StatusPending Status = "PENDIENTE"

type Appointment struct {
	ID    int64
	PetID int64
	VetID int64

	Date   time.Time
	Reason string
	Status Status

	// Completados por los listados (join con mascotas/veterinarios).
	PetName string
	VetName string
}
