package repository

import (
	"context"

	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
)

// ProgramRepository lectura de la fila de referencia Program. EnsureExists solo lo usa el seed.
type ProgramRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Program, error)
	GetByID(ctx context.Context, id string) (*entity.Program, error)
	EnsureExists(ctx context.Context, program *entity.Program) error
}
