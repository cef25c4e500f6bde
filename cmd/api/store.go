package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/emed-onboarding/internal/application/codes"
	"github.com/jhoicas/emed-onboarding/internal/application/employees"
	"github.com/jhoicas/emed-onboarding/internal/application/enrollment"
	"github.com/jhoicas/emed-onboarding/internal/application/provisioning"
	"github.com/jhoicas/emed-onboarding/internal/application/webhooks"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/memory"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/postgres"
	"github.com/jhoicas/emed-onboarding/pkg/config"
)

// store repositorios y transacciones según el driver configurado.
type store struct {
	companies repository.CompanyRepository
	admins    repository.AdminRepository
	programs  repository.ProgramRepository
	batches   repository.CodeBatchRepository
	codes     repository.EnrollmentCodeRepository
	users     repository.EnrolledUserRepository
	metrics   repository.MetricsRepository
	care      employees.CareRepos

	provisioningTx provisioning.TxRunner
	codesTx        codes.TxRunner
	enrollmentTx   enrollment.TxRunner
	webhooksTx     webhooks.TxRunner

	// seedProgram: el almacenamiento en memoria arranca vacío.
	seedProgram bool
	close       func()
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		m := memory.NewStore()
		tx := m.TxRunner()
		return &store{
			companies:      m.Companies(),
			admins:         m.Admins(),
			programs:       m.Programs(),
			batches:        m.Batches(),
			codes:          m.Codes(),
			users:          m.Users(),
			metrics:        m.Metrics(),
			care: employees.CareRepos{
				Kits:          m.Kits(),
				Results:       m.Results(),
				Reviews:       m.Reviews(),
				Prescriptions: m.Prescriptions(),
				Shipments:     m.Shipments(),
			},
			provisioningTx: tx,
			codesTx:        tx,
			enrollmentTx:   tx,
			webhooksTx:     tx,
			seedProgram:    true,
			close:          func() {},
		}, nil
	case config.StoreDriverPostgres, "":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		tx := postgres.NewTxRunner(pool)
		return &store{
			companies:      postgres.NewCompanyRepository(pool),
			admins:         postgres.NewAdminRepository(pool),
			programs:       postgres.NewProgramRepository(pool),
			batches:        postgres.NewCodeBatchRepository(pool),
			codes:          postgres.NewEnrollmentCodeRepository(pool),
			users:          postgres.NewEnrolledUserRepository(pool),
			metrics:        postgres.NewMetricsRepository(pool),
			care: employees.CareRepos{
				Kits:          postgres.NewLabKitRepository(pool),
				Results:       postgres.NewLabResultRepository(pool),
				Reviews:       postgres.NewTelehealthReviewRepository(pool),
				Prescriptions: postgres.NewPrescriptionRepository(pool),
				Shipments:     postgres.NewShipmentRepository(pool),
			},
			provisioningTx: tx,
			codesTx:        tx,
			enrollmentTx:   tx,
			webhooksTx:     tx,
			close:          pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("driver de almacenamiento desconocido: %q", cfg.Store.Driver)
	}
}
