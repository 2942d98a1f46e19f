package pets

import "time"

// Pet representa una mascota registrada a nombre de un usuario.
type Pet struct {
	ID      int64
	OwnerID int64

	Name    string
	Species string
	Breed   string
	Age     int     // años
	Weight  float64 // kg

	CreatedAt time.Time

	// OwnerName solo se completa en el listado administrativo.
	OwnerName string
}
