package security

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/emed-onboarding/internal/application/ports"
)

var _ ports.PasswordHasher = (*BcryptHasher)(nil)

// DefaultCost costo de bcrypt para contraseñas de administradores.
const DefaultCost = 10

// BcryptHasher implementa ports.PasswordHasher con bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher usa cost si está en el rango válido de bcrypt; si no, DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
