package ports

// PasswordHasher es el puerto hacia el hash unidireccional de contraseñas.
// La aplicación nunca guarda ni compara contraseñas planas por su cuenta.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verify devuelve nil si plain corresponde al hash.
	Verify(hash, plain string) error
}
