package repository

import (
	"context"

	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
)

// TelehealthReviewRepository persistencia de revisiones de telemedicina.
type TelehealthReviewRepository interface {
	Create(ctx context.Context, review *entity.TelehealthReview) error
	ListByUser(ctx context.Context, userID string) ([]*entity.TelehealthReview, error)
}

// PrescriptionRepository persistencia de recetas.
type PrescriptionRepository interface {
	Create(ctx context.Context, rx *entity.Prescription) error
	GetByRxIdentifierForUpdate(ctx context.Context, rxIdentifier string) (*entity.Prescription, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Prescription, error)
	UpdateStatus(ctx context.Context, rx *entity.Prescription) error
}

// ShipmentRepository persistencia de envíos de farmacia.
type ShipmentRepository interface {
	Create(ctx context.Context, s *entity.Shipment) error
	ListByPrescription(ctx context.Context, prescriptionID string) ([]*entity.Shipment, error)
}
