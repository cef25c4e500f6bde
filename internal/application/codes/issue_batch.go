package codes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/ports"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
	"github.com/jhoicas/emed-onboarding/pkg/identifier"
)

// Config parámetros de emisión.
type Config struct {
	ProgramCode      string
	MaxBatchQuantity int
	EnrollmentURL    string
}

// CodeUseCase emisión, consulta y exportación de códigos de inscripción.
type CodeUseCase struct {
	txRunner    TxRunner
	companyRepo repository.CompanyRepository
	programRepo repository.ProgramRepository
	batchRepo   repository.CodeBatchRepository
	codeRepo    repository.EnrollmentCodeRepository
	pdf         CodeSheetPDFGenerator
	ids         *identifier.Generator
	metrics     ports.Metrics
	cfg         Config
	now         func() time.Time
}

// NewCodeUseCase construye el caso de uso.
func NewCodeUseCase(
	txRunner TxRunner,
	companyRepo repository.CompanyRepository,
	programRepo repository.ProgramRepository,
	batchRepo repository.CodeBatchRepository,
	codeRepo repository.EnrollmentCodeRepository,
	pdf CodeSheetPDFGenerator,
	ids *identifier.Generator,
	metrics ports.Metrics,
	cfg Config,
) *CodeUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if cfg.MaxBatchQuantity <= 0 {
		cfg.MaxBatchQuantity = 1000
	}
	return &CodeUseCase{
		txRunner:    txRunner,
		companyRepo: companyRepo,
		programRepo: programRepo,
		batchRepo:   batchRepo,
		codeRepo:    codeRepo,
		pdf:         pdf,
		ids:         ids,
		metrics:     metrics,
		cfg:         cfg,
		now:         time.Now,
	}
}

// IssueBatch crea un CodeBatch y exactamente in.Quantity códigos en una transacción.
// Cualquier fallo (incluida una colisión de código) aborta el lote completo; ante
// domain.ErrConflict se regenera y reintenta la transacción entera una sola vez.
func (uc *CodeUseCase) IssueBatch(ctx context.Context, companyID, adminID string, in dto.IssueBatchRequest) (*dto.IssueBatchResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if in.Quantity > uc.cfg.MaxBatchQuantity {
		return nil, domain.Invalid("quantity", fmt.Sprintf("max=%d", uc.cfg.MaxBatchQuantity))
	}

	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("issue batch: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	program, err := uc.programRepo.GetByCode(ctx, uc.cfg.ProgramCode)
	if err != nil {
		return nil, fmt.Errorf("issue batch: obtener programa: %w", err)
	}
	if program == nil {
		return nil, domain.ErrNotFound
	}

	var out *dto.IssueBatchResponse
	for attempt := 0; attempt < 2; attempt++ {
		out, err = uc.issueOnce(ctx, company, program, adminID, in)
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	uc.metrics.CodesIssued(len(out.Codes))
	return out, nil
}

func (uc *CodeUseCase) issueOnce(
	ctx context.Context,
	company *entity.Company,
	program *entity.Program,
	adminID string,
	in dto.IssueBatchRequest,
) (*dto.IssueBatchResponse, error) {
	now := uc.now()
	var expiresAt *time.Time
	if in.ExpiresInDays > 0 {
		t := now.AddDate(0, 0, in.ExpiresInDays)
		expiresAt = &t
	}
	batch := &entity.CodeBatch{
		ID:        uuid.New().String(),
		CompanyID: company.ID,
		ProgramID: program.ID,
		Quantity:  in.Quantity,
		Notes:     in.Notes,
		CreatedBy: adminID,
		CreatedAt: now,
	}
	codes := make([]string, 0, in.Quantity)

	err := uc.txRunner.RunCodes(ctx, func(
		batchRepo repository.CodeBatchRepository,
		codeRepo repository.EnrollmentCodeRepository,
	) error {
		if err := batchRepo.Create(ctx, batch); err != nil {
			return err
		}
		for i := 0; i < in.Quantity; i++ {
			value, err := uc.ids.EnrollmentCode(company.Name, program.Code)
			if err != nil {
				return err
			}
			code := &entity.EnrollmentCode{
				ID:        uuid.New().String(),
				Code:      value,
				CompanyID: company.ID,
				ProgramID: program.ID,
				BatchID:   batch.ID,
				CreatedBy: adminID,
				Status:    entity.CodeStatusActive,
				ExpiresAt: expiresAt,
				// Orden de emisión estable para exportar.
				CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
			}
			if err := codeRepo.Create(ctx, code); err != nil {
				return err
			}
			codes = append(codes, value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.IssueBatchResponse{
		BatchID:   batch.ID,
		CompanyID: company.ID,
		ProgramID: program.ID,
		Quantity:  in.Quantity,
		Codes:     codes,
		ExpiresAt: expiresAt,
	}, nil
}
