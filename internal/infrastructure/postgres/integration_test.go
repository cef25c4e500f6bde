//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/emed-onboarding/internal/application/codes"
	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/enrollment"
	"github.com/jhoicas/emed-onboarding/internal/application/provisioning"
	"github.com/jhoicas/emed-onboarding/internal/application/seed"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/postgres"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/security"
	"github.com/jhoicas/emed-onboarding/pkg/identifier"
)

func setupPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "onboarding",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/onboarding?sslmode=disable", host, port.Port())
	pool, err := postgres.NewPoolFromDSN(ctx, dsn, 10)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applied, err := postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	require.Equal(t, 1, applied)

	again, err := postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	assert.Zero(t, again, "segunda ejecución no aplica nada")
	return pool
}

type env struct {
	pool      *pgxpool.Pool
	tx        *postgres.TxRunner
	provision *provisioning.ProvisionUseCase
	codes     *codes.CodeUseCase
	enroll    *enrollment.EnrollmentUseCase
}

func newEnv(t *testing.T, ctx context.Context) *env {
	pool := setupPostgres(t, ctx)
	tx := postgres.NewTxRunner(pool)
	ids := identifier.NewGenerator()
	programs := postgres.NewProgramRepository(pool)
	companies := postgres.NewCompanyRepository(pool)
	codeRepo := postgres.NewEnrollmentCodeRepository(pool)

	require.NoError(t, programs.EnsureExists(ctx, seed.DefaultProgram()))

	return &env{
		pool: pool,
		tx:   tx,
		provision: provisioning.NewProvisionUseCase(tx, programs, security.NewBcryptHasher(4), ids, nil,
			provisioning.Config{ProgramCode: entity.ProgramGLP1, PortalBaseURL: "https://portal.test"}),
		codes: codes.NewCodeUseCase(tx, companies, programs, postgres.NewCodeBatchRepository(pool), codeRepo,
			nil, ids, nil, codes.Config{ProgramCode: entity.ProgramGLP1, MaxBatchQuantity: 1000}),
		enroll: enrollment.NewEnrollmentUseCase(tx, codeRepo, companies, programs, ids, nil),
	}
}

func (e *env) provisionCompany(t *testing.T, ctx context.Context, email string) *dto.ProvisionResponse {
	t.Helper()
	out, err := e.provision.Provision(ctx, dto.ProvisionRequest{
		CompanyName: "Acme Corp",
		Size:        entity.Size51To200,
		AdminUser:   dto.AdminUserRequest{Name: "Ana Gómez", Email: email},
	})
	require.NoError(t, err)
	return out
}

func TestIntegration_ProvisionDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, ctx)

	e.provisionCompany(t, ctx, "ana@acme.com")
	_, err := e.provision.Provision(ctx, dto.ProvisionRequest{
		CompanyName: "Acme Dos",
		AdminUser:   dto.AdminUserRequest{Name: "Ana", Email: "ana@acme.com"},
	})
	require.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	var companies int
	require.NoError(t, e.pool.QueryRow(ctx, `SELECT COUNT(*) FROM companies`).Scan(&companies))
	assert.Equal(t, 1, companies, "la empresa del intento fallido no queda persistida")
}

func TestIntegration_IssueAndRedeemConcurrently(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, ctx)
	prov := e.provisionCompany(t, ctx, "ana@acme.com")

	batch, err := e.codes.IssueBatch(ctx, prov.Company.ID, prov.Admin.ID, dto.IssueBatchRequest{Quantity: 5})
	require.NoError(t, err)
	require.Len(t, batch.Codes, 5)

	summaries, err := postgres.NewCodeBatchRepository(e.pool).ListSummaries(ctx, prov.Company.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 5, summaries[0].ActiveCount)
	assert.Equal(t, "Ana Gómez", summaries[0].CreatedByName)

	code := batch.Codes[0]
	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		rejects int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.enroll.Redeem(ctx, dto.RedeemRequest{Code: code, Name: "Luis", Email: "luis@acme.com"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrInvalidOrExpiredCode):
				rejects++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, rejects)

	users, err := postgres.NewEnrolledUserRepository(e.pool).List(ctx, prov.Company.ID, repository.UserFilter{})
	require.NoError(t, err)
	require.Len(t, users, 1)

	c, err := postgres.NewEnrollmentCodeRepository(e.pool).GetByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, entity.CodeStatusUsed, c.Status)
	require.NotNil(t, c.UsedByUserID)
	assert.Equal(t, users[0].ID, *c.UsedByUserID)

	kits, err := postgres.NewLabKitRepository(e.pool).ListByUser(ctx, users[0].ID)
	require.NoError(t, err)
	require.Len(t, kits, 1)
	assert.Equal(t, entity.KitStatusOrdered, kits[0].Status)

	m, err := postgres.NewMetricsRepository(e.pool).GetEnrollmentMetrics(ctx, prov.Company.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalEnrolled)
	assert.Equal(t, 1, m.ActiveUsers)
	assert.Zero(t, m.KitsShipped)
}

func TestIntegration_BatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, ctx)
	prov := e.provisionCompany(t, ctx, "ana@acme.com")

	// un código preexistente obliga a que el segundo insert del lote colisione
	programs := postgres.NewProgramRepository(e.pool)
	program, err := programs.GetByCode(ctx, entity.ProgramGLP1)
	require.NoError(t, err)

	err = e.tx.RunCodes(ctx, func(batchRepo repository.CodeBatchRepository, codeRepo repository.EnrollmentCodeRepository) error {
		b := &entity.CodeBatch{
			ID: "5d0c6a8e-8a55-4a39-9d84-2f1c1f0b8a01", CompanyID: prov.Company.ID, ProgramID: program.ID,
			Quantity: 2, CreatedBy: prov.Admin.ID, CreatedAt: time.Now(),
		}
		if err := batchRepo.Create(ctx, b); err != nil {
			return err
		}
		for i, id := range []string{"0b4f2f6c-7d1e-4a8e-bf59-1c2d3e4f5a01", "0b4f2f6c-7d1e-4a8e-bf59-1c2d3e4f5a02"} {
			err := codeRepo.Create(ctx, &entity.EnrollmentCode{
				ID: id, Code: "DUPLIC", CompanyID: prov.Company.ID, ProgramID: program.ID, BatchID: b.ID,
				CreatedBy: prov.Admin.ID, Status: entity.CodeStatusActive, CreatedAt: time.Now().Add(time.Duration(i)),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	var batches, codesCount int
	require.NoError(t, e.pool.QueryRow(ctx, `SELECT COUNT(*) FROM code_batches`).Scan(&batches))
	require.NoError(t, e.pool.QueryRow(ctx, `SELECT COUNT(*) FROM enrollment_codes`).Scan(&codesCount))
	assert.Zero(t, batches)
	assert.Zero(t, codesCount)
}

func TestIntegration_ExpiredCodeIsPersisted(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, ctx)
	prov := e.provisionCompany(t, ctx, "ana@acme.com")

	batch, err := e.codes.IssueBatch(ctx, prov.Company.ID, prov.Admin.ID, dto.IssueBatchRequest{Quantity: 1, ExpiresInDays: 1})
	require.NoError(t, err)
	_, err = e.pool.Exec(ctx, `UPDATE enrollment_codes SET expires_at = now() - interval '1 hour'`)
	require.NoError(t, err)

	_, err = e.enroll.Redeem(ctx, dto.RedeemRequest{Code: batch.Codes[0], Name: "Luis", Email: "luis@acme.com"})
	require.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)

	c, err := postgres.NewEnrollmentCodeRepository(e.pool).GetByCode(ctx, batch.Codes[0])
	require.NoError(t, err)
	assert.Equal(t, entity.CodeStatusExpired, c.Status)
}
