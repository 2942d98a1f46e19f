package veterinarians

// Veterinarian es el perfil profesional de un usuario. Nombre y email se
// copian del usuario al crear el perfil.
type Veterinarian struct {
	ID     int64
	UserID int64

	Name      string
	Email     string
	Specialty string
	Phone     string
}
