package enrollment

import (
	"context"

	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

// TxRunner ejecuta el canje de un código en una transacción: bloqueo del código,
// alta del empleado, marca de uso y orden del kit son todo o nada.
type TxRunner interface {
	RunEnrollment(ctx context.Context, fn func(
		codeRepo repository.EnrollmentCodeRepository,
		userRepo repository.EnrolledUserRepository,
		kitRepo repository.LabKitRepository,
	) error) error
}
