package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

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

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapPostgresError("commit transaction", err)
	}
	return nil
}

// RunProvisioning empresa y admin inicial en la misma transacción.
func (r *TxRunner) RunProvisioning(ctx context.Context, fn func(
	companyRepo repository.CompanyRepository,
	adminRepo repository.AdminRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewCompanyRepository(tx), NewAdminRepository(tx))
	})
}

// RunCodes lote y sus códigos: todo o nada.
func (r *TxRunner) RunCodes(ctx context.Context, fn func(
	batchRepo repository.CodeBatchRepository,
	codeRepo repository.EnrollmentCodeRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewCodeBatchRepository(tx), NewEnrollmentCodeRepository(tx))
	})
}

// RunEnrollment canje de código: lock del código, usuario, kit y marca de uso.
func (r *TxRunner) RunEnrollment(ctx context.Context, fn func(
	codeRepo repository.EnrollmentCodeRepository,
	userRepo repository.EnrolledUserRepository,
	kitRepo repository.LabKitRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewEnrollmentCodeRepository(tx), NewEnrolledUserRepository(tx), NewLabKitRepository(tx))
	})
}

// RunWebhooks repos que tocan los callbacks de socios.
func (r *TxRunner) RunWebhooks(ctx context.Context, fn func(
	kitRepo repository.LabKitRepository,
	resultRepo repository.LabResultRepository,
	userRepo repository.EnrolledUserRepository,
	reviewRepo repository.TelehealthReviewRepository,
	rxRepo repository.PrescriptionRepository,
	shipmentRepo repository.ShipmentRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(
			NewLabKitRepository(tx),
			NewLabResultRepository(tx),
			NewEnrolledUserRepository(tx),
			NewTelehealthReviewRepository(tx),
			NewPrescriptionRepository(tx),
			NewShipmentRepository(tx),
		)
	})
}
