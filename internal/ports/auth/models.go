package auth

// Claims representa la información extraída de un token de sesión verificado.
type Claims struct {
	UserID int64
	Email  string
}

// FederatedIdentity son los claims verificados de un proveedor externo (Google).
type FederatedIdentity struct {
	Email       string
	DisplayName string
	PictureURL  string
}
