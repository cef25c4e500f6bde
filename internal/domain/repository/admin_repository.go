package repository

import (
	"context"
	"time"

	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
)

// AdminRepository define el puerto de persistencia para Admin.
// Create devuelve domain.ErrEmailAlreadyExists si el email viola el índice único.
type AdminRepository interface {
	Create(ctx context.Context, admin *entity.Admin) error
	GetByID(ctx context.Context, id string) (*entity.Admin, error)
	GetActiveByEmail(ctx context.Context, email string) (*entity.Admin, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	IsActiveAdmin(ctx context.Context, adminID, companyID string) (bool, error)
	TouchLastLogin(ctx context.Context, adminID string, at time.Time) error
}
