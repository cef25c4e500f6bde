package codes

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

// ListCodes lista los códigos de la empresa, opcionalmente filtrados por lote y estado.
func (uc *CodeUseCase) ListCodes(ctx context.Context, companyID string, f repository.CodeFilter) ([]dto.EnrollmentCodeResponse, error) {
	if f.Status != "" && !entity.ValidCodeStatus(f.Status) {
		return nil, domain.Invalid("status", "oneof=active used expired")
	}
	list, err := uc.codeRepo.List(ctx, companyID, f)
	if err != nil {
		return nil, fmt.Errorf("listar códigos: %w", err)
	}
	out := make([]dto.EnrollmentCodeResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCodeResponse(c))
	}
	return out, nil
}

// ListBatches lista los lotes de la empresa con conteos por estado y el nombre del creador.
func (uc *CodeUseCase) ListBatches(ctx context.Context, companyID string) ([]dto.CodeBatchResponse, error) {
	list, err := uc.batchRepo.ListSummaries(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listar lotes: %w", err)
	}
	out := make([]dto.CodeBatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.CodeBatchResponse{
			ID:            b.ID,
			ProgramID:     b.ProgramID,
			Quantity:      b.Quantity,
			Notes:         b.Notes,
			CreatedBy:     b.CreatedBy,
			CreatedByName: b.CreatedByName,
			CreatedAt:     b.CreatedAt,
			ActiveCount:   b.ActiveCount,
			UsedCount:     b.UsedCount,
			ExpiredCount:  b.ExpiredCount,
		})
	}
	return out, nil
}

// batchForCompany devuelve el lote solo si pertenece a la empresa; otro tenant ve ErrNotFound.
func (uc *CodeUseCase) batchForCompany(ctx context.Context, companyID, batchID string) (*entity.CodeBatch, []*entity.EnrollmentCode, error) {
	batch, err := uc.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, nil, fmt.Errorf("obtener lote: %w", err)
	}
	if batch == nil || batch.CompanyID != companyID {
		return nil, nil, domain.ErrNotFound
	}
	codes, err := uc.codeRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, nil, fmt.Errorf("listar códigos del lote: %w", err)
	}
	return batch, codes, nil
}

// ExportCSV devuelve un CSV de una columna ("code") en orden de emisión.
func (uc *CodeUseCase) ExportCSV(ctx context.Context, companyID, batchID string) ([]byte, error) {
	_, codes, err := uc.batchForCompany(ctx, companyID, batchID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"code"}); err != nil {
		return nil, err
	}
	for _, c := range codes {
		if err := w.Write([]string{c.Code}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportPDF genera la hoja imprimible del lote con un QR por código.
func (uc *CodeUseCase) ExportPDF(ctx context.Context, companyID, batchID string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("export pdf: generador no configurado")
	}
	batch, codes, err := uc.batchForCompany(ctx, companyID, batchID)
	if err != nil {
		return nil, err
	}
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("export pdf: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	program, err := uc.programRepo.GetByID(ctx, batch.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("export pdf: obtener programa: %w", err)
	}
	if program == nil {
		return nil, domain.ErrNotFound
	}
	return uc.pdf.GenerateCodeSheetPDF(ctx, company, program, batch, codes, uc.cfg.EnrollmentURL)
}

func toCodeResponse(c *entity.EnrollmentCode) dto.EnrollmentCodeResponse {
	return dto.EnrollmentCodeResponse{
		ID:           c.ID,
		Code:         c.Code,
		BatchID:      c.BatchID,
		ProgramID:    c.ProgramID,
		Status:       c.Status,
		UsedAt:       c.UsedAt,
		UsedByUserID: c.UsedByUserID,
		ExpiresAt:    c.ExpiresAt,
		CreatedAt:    c.CreatedAt,
	}
}
