package repository

import (
	"context"
	"time"

	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
)

// CodeFilter filtros opcionales para listar códigos (siempre como parámetros, nunca concatenados).
type CodeFilter struct {
	BatchID string
	Status  string
}

// CodeBatchRepository persistencia de lotes de códigos.
type CodeBatchRepository interface {
	Create(ctx context.Context, batch *entity.CodeBatch) error
	GetByID(ctx context.Context, id string) (*entity.CodeBatch, error)
	ListSummaries(ctx context.Context, companyID string) ([]*entity.CodeBatchSummary, error)
}

// EnrollmentCodeRepository persistencia de códigos de inscripción.
// Create devuelve domain.ErrConflict si el código colisiona con uno existente.
type EnrollmentCodeRepository interface {
	Create(ctx context.Context, code *entity.EnrollmentCode) error
	GetByCode(ctx context.Context, code string) (*entity.EnrollmentCode, error)
	// GetByCodeForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetByCodeForUpdate(ctx context.Context, code string) (*entity.EnrollmentCode, error)
	// MarkUsed es condicional (WHERE status = 'active'); devuelve false si no afectó filas.
	MarkUsed(ctx context.Context, codeID, userID string, at time.Time) (bool, error)
	// MarkExpired es condicional (activo y con expires_at <= at); devuelve false si no afectó filas.
	MarkExpired(ctx context.Context, codeID string, at time.Time) (bool, error)
	List(ctx context.Context, companyID string, f CodeFilter) ([]*entity.EnrollmentCode, error)
	// ListByBatch devuelve los códigos en orden de emisión.
	ListByBatch(ctx context.Context, batchID string) ([]*entity.EnrollmentCode, error)
}
