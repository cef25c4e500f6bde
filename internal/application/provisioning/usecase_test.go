package provisioning_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/ports"
	"github.com/jhoicas/emed-onboarding/internal/application/provisioning"
	"github.com/jhoicas/emed-onboarding/internal/application/seed"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/memory"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/security"
	"github.com/jhoicas/emed-onboarding/pkg/identifier"
)

var tempPasswordRe = regexp.MustCompile(`^eMed[0-9A-Z]{6}$`)

// spyTx registra los IDs de empresa insertados dentro de la transacción.
type spyTx struct {
	*memory.TxRunner
	companyIDs []string
}

type spyCompanyRepo struct {
	repository.CompanyRepository
	spy *spyTx
}

func (r spyCompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	r.spy.companyIDs = append(r.spy.companyIDs, c.ID)
	return r.CompanyRepository.Create(ctx, c)
}

func (s *spyTx) RunProvisioning(ctx context.Context, fn func(repository.CompanyRepository, repository.AdminRepository) error) error {
	return s.TxRunner.RunProvisioning(ctx, func(companyRepo repository.CompanyRepository, adminRepo repository.AdminRepository) error {
		return fn(spyCompanyRepo{CompanyRepository: companyRepo, spy: s}, adminRepo)
	})
}

type recordingMetrics struct {
	ports.NopMetrics
	results []string
}

func (m *recordingMetrics) ProvisioningResult(r string) { m.results = append(m.results, r) }

type fixture struct {
	store   *memory.Store
	tx      *spyTx
	metrics *recordingMetrics
	hasher  *security.BcryptHasher
}

func newFixture(t *testing.T, withProgram bool) *fixture {
	t.Helper()
	st := memory.NewStore()
	if withProgram {
		require.NoError(t, st.Programs().EnsureExists(context.Background(), seed.DefaultProgram()))
	}
	return &fixture{
		store:   st,
		tx:      &spyTx{TxRunner: st.TxRunner()},
		metrics: &recordingMetrics{},
		hasher:  security.NewBcryptHasher(bcrypt.MinCost),
	}
}

func (f *fixture) useCase(policy string) *provisioning.ProvisionUseCase {
	return provisioning.NewProvisionUseCase(f.tx, f.store.Programs(), f.hasher, identifier.NewGenerator(), f.metrics, provisioning.Config{
		ProgramCode:    entity.ProgramGLP1,
		PortalBaseURL:  "https://emed-care.com/portal/",
		DuplicateEmail: policy,
	})
}

func validRequest() dto.ProvisionRequest {
	return dto.ProvisionRequest{
		CompanyName: "  Acme Corp ",
		Industry:    "Manufacturing",
		Size:        entity.Size51To200,
		AdminUser: dto.AdminUserRequest{
			Name:  "Ana Gómez",
			Email: "Ana@Acme.com",
			Title: "HR",
		},
	}
}

func TestProvision_Success(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	out, err := f.useCase(provisioning.DuplicateEmailReject).Provision(ctx, validRequest())
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", out.Company.Name)
	assert.Equal(t, "ana@acme.com", out.Admin.Email)
	assert.Equal(t, out.Company.ID, out.Admin.CompanyID)
	assert.Equal(t, "ana@acme.com", out.Credentials.Email)
	assert.Regexp(t, tempPasswordRe, out.Credentials.TempPassword)
	assert.Equal(t, "https://emed-care.com/portal/acmecorp", out.PortalURL)

	admin, err := f.store.Admins().GetActiveByEmail(ctx, "ana@acme.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.NotEqual(t, out.Credentials.TempPassword, admin.PasswordHash)
	assert.NoError(t, f.hasher.Verify(admin.PasswordHash, out.Credentials.TempPassword))

	company, err := f.store.Companies().GetByID(ctx, out.Company.ID)
	require.NoError(t, err)
	require.NotNil(t, company)
	assert.Equal(t, []string{ports.ResultOK}, f.metrics.results)
}

func TestProvision_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.ProvisionRequest)
		field  string
	}{
		{"empty company name", func(r *dto.ProvisionRequest) { r.CompanyName = "   " }, "companyName"},
		{"missing admin name", func(r *dto.ProvisionRequest) { r.AdminUser.Name = "" }, "adminUser.name"},
		{"bad email", func(r *dto.ProvisionRequest) { r.AdminUser.Email = "not-an-email" }, "adminUser.email"},
		{"unknown size", func(r *dto.ProvisionRequest) { r.Size = "huge" }, "size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			req := validRequest()
			tt.mutate(&req)

			_, err := f.useCase("").Provision(context.Background(), req)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, f.tx.companyIDs, "no debe escribir nada")
			assert.Equal(t, []string{ports.ResultRejected}, f.metrics.results)
		})
	}
}

func TestProvision_ProgramNotSeeded(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.useCase("").Provision(context.Background(), validRequest())
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.tx.companyIDs)
}

func TestProvision_DuplicateEmailRejectRollsBack(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	uc := f.useCase(provisioning.DuplicateEmailReject)

	_, err := uc.Provision(ctx, validRequest())
	require.NoError(t, err)

	second := validRequest()
	second.CompanyName = "Other Inc"
	_, err = uc.Provision(ctx, second)
	require.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	require.Len(t, f.tx.companyIDs, 2)
	orphan, err := f.store.Companies().GetByID(ctx, f.tx.companyIDs[1])
	require.NoError(t, err)
	assert.Nil(t, orphan, "la empresa debe revertirse junto con el admin")
}

func TestProvision_DuplicateEmailSuffix(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	uc := f.useCase(provisioning.DuplicateEmailSuffix)

	_, err := uc.Provision(ctx, validRequest())
	require.NoError(t, err)

	out, err := uc.Provision(ctx, validRequest())
	require.NoError(t, err)
	assert.Regexp(t, `^ana\+\d+@acme\.com$`, out.Admin.Email)
	assert.Equal(t, out.Admin.Email, out.Credentials.Email)
}

func TestProvision_DuplicateEmailSuffixSameSecond(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	at := time.Unix(1700000000, 0)
	uc := provisioning.NewProvisionUseCase(f.tx, f.store.Programs(), f.hasher, identifier.NewGenerator(), f.metrics, provisioning.Config{
		ProgramCode:    entity.ProgramGLP1,
		DuplicateEmail: provisioning.DuplicateEmailSuffix,
		Clock:          func() time.Time { return at },
	})

	want := []string{
		"ana@acme.com",
		"ana+1700000000@acme.com",
		"ana+1700000000-2@acme.com",
		"ana+1700000000-3@acme.com",
	}
	for _, email := range want {
		out, err := uc.Provision(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, email, out.Credentials.Email)
	}
}

func TestSuffixEmail(t *testing.T) {
	at := time.Unix(1700000000, 0)
	assert.Equal(t, "ana+1700000000@acme.com", provisioning.SuffixEmail("ana@acme.com", at, 0))
	assert.Equal(t, "ana+1700000000-2@acme.com", provisioning.SuffixEmail("ana@acme.com", at, 1))
	assert.Equal(t, "ana+1700000000", provisioning.SuffixEmail("ana", at, 0))
}

func TestPortalURL(t *testing.T) {
	assert.Equal(t, "https://emed-care.com/portal/cafeteriaelnino",
		provisioning.PortalURL("https://emed-care.com/portal/", "Cafetería El Niño"))
	assert.Equal(t, "https://emed-care.com/portal/acmecorp",
		provisioning.PortalURL("https://emed-care.com/portal", "Acme Corp!"))
}
