// Package seed crea los datos de referencia (programa GLP-1) y, opcionalmente, una
// empresa de demostración con su lote de códigos.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/emed-onboarding/internal/application/codes"
	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/provisioning"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

// DemoCodeQuantity cantidad de códigos del lote demo.
const DemoCodeQuantity = 10

// DefaultProgram programa GLP-1 con un ID nuevo.
func DefaultProgram() *entity.Program {
	return &entity.Program{
		ID:          uuid.New().String(),
		Code:        entity.ProgramGLP1,
		Name:        "GLP-1 Medication Program",
		Description: "Chronic care management program for GLP-1 medications",
		Active:      true,
	}
}

// ProgramFor programa a sembrar para el código configurado. GLP1 (o vacío) usa DefaultProgram.
func ProgramFor(code string) *entity.Program {
	code = strings.TrimSpace(code)
	if code == "" || code == entity.ProgramGLP1 {
		return DefaultProgram()
	}
	return &entity.Program{
		ID:     uuid.New().String(),
		Code:   code,
		Name:   code + " Program",
		Active: true,
	}
}

// Result resumen de lo sembrado.
type Result struct {
	Program *entity.Program
	Demo    *dto.ProvisionResponse
	Batch   *dto.IssueBatchResponse

	// DemoExists indica que la empresa demo ya estaba sembrada.
	DemoExists bool
}

// Seeder orquesta el sembrado; es idempotente para el programa.
type Seeder struct {
	programCode string
	programRepo repository.ProgramRepository
	provision   *provisioning.ProvisionUseCase
	codes       *codes.CodeUseCase
}

// NewSeeder construye el seeder para el programa programCode; debe coincidir con el que
// usan provisionUC y codeUC. provision y codes solo se usan con demo.
func NewSeeder(programCode string, programRepo repository.ProgramRepository, provisionUC *provisioning.ProvisionUseCase, codeUC *codes.CodeUseCase) *Seeder {
	return &Seeder{programCode: programCode, programRepo: programRepo, provision: provisionUC, codes: codeUC}
}

// Run inserta el programa si no existe y, con demo, una empresa con admin y un lote de códigos.
func (s *Seeder) Run(ctx context.Context, demo bool) (*Result, error) {
	program := ProgramFor(s.programCode)
	if err := s.programRepo.EnsureExists(ctx, program); err != nil {
		return nil, fmt.Errorf("seed: programa: %w", err)
	}
	res := &Result{Program: program}
	if !demo {
		return res, nil
	}
	if s.provision == nil || s.codes == nil {
		return nil, fmt.Errorf("seed: demo requiere provisioning y codes")
	}

	prov, err := s.provision.Provision(ctx, dto.ProvisionRequest{
		CompanyName: "Demo Company",
		Industry:    "Technology",
		Size:        entity.Size51To200,
		AdminUser: dto.AdminUserRequest{
			Name:  "Demo Admin",
			Email: "admin@democompany.com",
			Title: "HR Director",
		},
	})
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		res.DemoExists = true
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seed: empresa demo: %w", err)
	}
	res.Demo = prov

	batch, err := s.codes.IssueBatch(ctx, prov.Company.ID, prov.Admin.ID, dto.IssueBatchRequest{
		Quantity: DemoCodeQuantity,
		Notes:    "Demo batch",
	})
	if err != nil {
		return nil, fmt.Errorf("seed: lote demo: %w", err)
	}
	res.Batch = batch
	return res, nil
}
