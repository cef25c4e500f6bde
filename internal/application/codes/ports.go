package codes

import (
	"context"

	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con los repos de lotes y códigos atados a ella.
// Garantiza que un lote nunca sobreviva sin su juego completo de códigos.
type TxRunner interface {
	RunCodes(ctx context.Context, fn func(
		batchRepo repository.CodeBatchRepository,
		codeRepo repository.EnrollmentCodeRepository,
	) error) error
}

// CodeSheetPDFGenerator genera la hoja imprimible de un lote (implementación en infrastructure/pdf).
type CodeSheetPDFGenerator interface {
	GenerateCodeSheetPDF(
		ctx context.Context,
		company *entity.Company,
		program *entity.Program,
		batch *entity.CodeBatch,
		codes []*entity.EnrollmentCode,
		enrollmentURL string,
	) ([]byte, error)
}
