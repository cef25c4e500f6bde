package webhooks

import (
	"context"

	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con los repos que tocan los webhooks de socios.
type TxRunner interface {
	RunWebhooks(ctx context.Context, fn func(
		kitRepo repository.LabKitRepository,
		resultRepo repository.LabResultRepository,
		userRepo repository.EnrolledUserRepository,
		reviewRepo repository.TelehealthReviewRepository,
		rxRepo repository.PrescriptionRepository,
		shipmentRepo repository.ShipmentRepository,
	) error) error
}
