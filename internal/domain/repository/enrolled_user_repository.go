package repository

import (
	"context"

	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
)

// UserFilter filtros opcionales del listado de empleados.
type UserFilter struct {
	Status string
	Search string // coincide con nombre o email (ILIKE)
	Limit  int
	Offset int
}

// EnrolledUserRepository persistencia de empleados inscritos.
// Create devuelve domain.ErrConflict si emed_identifier o enrollment_code_id ya existen.
type EnrolledUserRepository interface {
	Create(ctx context.Context, user *entity.EnrolledUser) error
	GetByID(ctx context.Context, id string) (*entity.EnrolledUser, error)
	GetByEmedIdentifier(ctx context.Context, emedID string) (*entity.EnrolledUser, error)
	List(ctx context.Context, companyID string, f UserFilter) ([]*entity.EnrolledUser, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
