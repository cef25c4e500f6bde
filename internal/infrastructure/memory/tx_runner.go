package memory

import (
	"context"

	"github.com/jhoicas/emed-onboarding/internal/application/codes"
	"github.com/jhoicas/emed-onboarding/internal/application/enrollment"
	"github.com/jhoicas/emed-onboarding/internal/application/provisioning"
	"github.com/jhoicas/emed-onboarding/internal/application/webhooks"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var (
	_ provisioning.TxRunner = (*TxRunner)(nil)
	_ codes.TxRunner        = (*TxRunner)(nil)
	_ enrollment.TxRunner   = (*TxRunner)(nil)
	_ webhooks.TxRunner     = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks con repos atados a una copia de las tablas.
type TxRunner struct {
	s *Store
}

// RunProvisioning repos de empresa y admin en una transacción.
func (r *TxRunner) RunProvisioning(ctx context.Context, fn func(
	companyRepo repository.CompanyRepository,
	adminRepo repository.AdminRepository,
) error) error {
	return r.s.inTx(ctx, func(t *tables) error {
		return fn(&CompanyRepo{s: r.s, tx: t}, &AdminRepo{s: r.s, tx: t})
	})
}

// RunCodes repos de lotes y códigos en una transacción.
func (r *TxRunner) RunCodes(ctx context.Context, fn func(
	batchRepo repository.CodeBatchRepository,
	codeRepo repository.EnrollmentCodeRepository,
) error) error {
	return r.s.inTx(ctx, func(t *tables) error {
		return fn(&CodeBatchRepo{s: r.s, tx: t}, &EnrollmentCodeRepo{s: r.s, tx: t})
	})
}

// RunEnrollment repos del canje en una transacción.
func (r *TxRunner) RunEnrollment(ctx context.Context, fn func(
	codeRepo repository.EnrollmentCodeRepository,
	userRepo repository.EnrolledUserRepository,
	kitRepo repository.LabKitRepository,
) error) error {
	return r.s.inTx(ctx, func(t *tables) error {
		return fn(
			&EnrollmentCodeRepo{s: r.s, tx: t},
			&EnrolledUserRepo{s: r.s, tx: t},
			&LabKitRepo{s: r.s, tx: t},
		)
	})
}

// RunWebhooks repos de los webhooks de socios en una transacción.
func (r *TxRunner) RunWebhooks(ctx context.Context, fn func(
	kitRepo repository.LabKitRepository,
	resultRepo repository.LabResultRepository,
	userRepo repository.EnrolledUserRepository,
	reviewRepo repository.TelehealthReviewRepository,
	rxRepo repository.PrescriptionRepository,
	shipmentRepo repository.ShipmentRepository,
) error) error {
	return r.s.inTx(ctx, func(t *tables) error {
		return fn(
			&LabKitRepo{s: r.s, tx: t},
			&LabResultRepo{s: r.s, tx: t},
			&EnrolledUserRepo{s: r.s, tx: t},
			&TelehealthReviewRepo{s: r.s, tx: t},
			&PrescriptionRepo{s: r.s, tx: t},
			&ShipmentRepo{s: r.s, tx: t},
		)
	})
}
