package repository

import (
	"context"

	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
)

// LabKitRepository persistencia de kits de laboratorio.
type LabKitRepository interface {
	Create(ctx context.Context, kit *entity.LabKit) error
	GetByIdentifierForUpdate(ctx context.Context, kitIdentifier string) (*entity.LabKit, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.LabKit, error)
	// UpdateStatus persiste el estado y las marcas de tiempo del kit.
	UpdateStatus(ctx context.Context, kit *entity.LabKit) error
}

// LabResultRepository persistencia de resultados de laboratorio.
type LabResultRepository interface {
	Create(ctx context.Context, result *entity.LabResult) error
	ListByKit(ctx context.Context, kitID string) ([]*entity.LabResult, error)
}
