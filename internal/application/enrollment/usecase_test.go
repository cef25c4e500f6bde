package enrollment_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/enrollment"
	"github.com/jhoicas/emed-onboarding/internal/application/seed"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/memory"
	"github.com/jhoicas/emed-onboarding/pkg/identifier"
)

const companyID = "company-1"

type fixture struct {
	store   *memory.Store
	program *entity.Program
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.NewStore()
	program := seed.DefaultProgram()
	require.NoError(t, st.Programs().EnsureExists(ctx, program))
	require.NoError(t, st.Companies().Create(ctx, &entity.Company{ID: companyID, Name: "Acme Corp", CreatedAt: time.Now()}))
	return &fixture{store: st, program: program}
}

func (f *fixture) addCode(t *testing.T, id, code string, expiresAt *time.Time) {
	t.Helper()
	require.NoError(t, f.store.Codes().Create(context.Background(), &entity.EnrollmentCode{
		ID:        id,
		Code:      code,
		CompanyID: companyID,
		ProgramID: f.program.ID,
		BatchID:   "batch-1",
		CreatedBy: "admin-1",
		Status:    entity.CodeStatusActive,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}))
}

func (f *fixture) useCase(ids *identifier.Generator) *enrollment.EnrollmentUseCase {
	return enrollment.NewEnrollmentUseCase(f.store.TxRunner(), f.store.Codes(), f.store.Companies(), f.store.Programs(), ids, nil)
}

func (f *fixture) codeStatus(t *testing.T, code string) string {
	t.Helper()
	c, err := f.store.Codes().GetByCode(context.Background(), code)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c.Status
}

func (f *fixture) users(t *testing.T) []*entity.EnrolledUser {
	t.Helper()
	list, err := f.store.Users().List(context.Background(), companyID, repository.UserFilter{})
	require.NoError(t, err)
	return list
}

func redeemRequest(code string) dto.RedeemRequest {
	return dto.RedeemRequest{
		Code:        code,
		Name:        "Luis Díaz",
		Email:       "Luis@Acme.com",
		Phone:       "555-0100",
		DateOfBirth: "1985-04-12",
		Address:     "Calle 1",
	}
}

func past() *time.Time {
	t := time.Now().Add(-time.Hour)
	return &t
}

func TestValidateCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCode(t, "k1", "ACM-GLP1-AAAAAA", nil)
	uc := f.useCase(identifier.NewGenerator())

	out, err := uc.ValidateCode(ctx, dto.ValidateCodeRequest{Code: " acm-glp1-aaaaaa "})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, "Acme Corp", out.Company.Name)
	assert.Equal(t, "GLP-1 Medication Program", out.Program.Name)
	assert.Equal(t, entity.CodeStatusActive, f.codeStatus(t, "ACM-GLP1-AAAAAA"), "validar no escribe")

	_, err = uc.ValidateCode(ctx, dto.ValidateCodeRequest{Code: "ACM-GLP1-ZZZZZZ"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)

	_, err = uc.ValidateCode(ctx, dto.ValidateCodeRequest{Code: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidateCode_ExpiredIsPersisted(t *testing.T) {
	f := newFixture(t)
	f.addCode(t, "k1", "ACM-GLP1-AAAAAA", past())

	_, err := f.useCase(identifier.NewGenerator()).ValidateCode(context.Background(), dto.ValidateCodeRequest{Code: "ACM-GLP1-AAAAAA"})
	require.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
	assert.Equal(t, entity.CodeStatusExpired, f.codeStatus(t, "ACM-GLP1-AAAAAA"))
}

func TestRedeem_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCode(t, "k1", "ACM-GLP1-AAAAAA", nil)

	out, err := f.useCase(identifier.NewGenerator()).Redeem(ctx, redeemRequest("ACM-GLP1-AAAAAA"))
	require.NoError(t, err)
	assert.Equal(t, "luis@acme.com", out.Email)
	assert.Regexp(t, `^eMED-company-1-[0-9A-Z]{4}$`, out.EmedIdentifier)

	code, err := f.store.Codes().GetByCode(ctx, "ACM-GLP1-AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, entity.CodeStatusUsed, code.Status)
	require.NotNil(t, code.UsedByUserID)
	assert.Equal(t, out.UserID, *code.UsedByUserID)
	require.NotNil(t, code.UsedAt)

	user, err := f.store.Users().GetByID(ctx, out.UserID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "k1", user.EnrollmentCodeID)
	assert.Equal(t, f.program.ID, user.ProgramID)
	require.NotNil(t, user.DateOfBirth)
	assert.Equal(t, "1985-04-12", user.DateOfBirth.Format("2006-01-02"))

	kits, err := f.store.Kits().ListByUser(ctx, out.UserID)
	require.NoError(t, err)
	require.Len(t, kits, 1)
	assert.Equal(t, entity.KitStatusOrdered, kits[0].Status)
	assert.Regexp(t, `^KIT-[0-9A-Z]{8}$`, kits[0].KitIdentifier)
}

func TestRedeem_CodeUsableOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCode(t, "k1", "ACM-GLP1-AAAAAA", nil)
	uc := f.useCase(identifier.NewGenerator())

	_, err := uc.Redeem(ctx, redeemRequest("ACM-GLP1-AAAAAA"))
	require.NoError(t, err)
	_, err = uc.Redeem(ctx, redeemRequest("ACM-GLP1-AAAAAA"))
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)

	_, err = uc.ValidateCode(ctx, dto.ValidateCodeRequest{Code: "ACM-GLP1-AAAAAA"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
	assert.Len(t, f.users(t), 1)
}

func TestRedeem_ExpiredCode(t *testing.T) {
	f := newFixture(t)
	f.addCode(t, "k1", "ACM-GLP1-AAAAAA", past())

	_, err := f.useCase(identifier.NewGenerator()).Redeem(context.Background(), redeemRequest("ACM-GLP1-AAAAAA"))
	require.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
	assert.Equal(t, entity.CodeStatusExpired, f.codeStatus(t, "ACM-GLP1-AAAAAA"))
	assert.Empty(t, f.users(t))
}

func TestRedeem_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.RedeemRequest)
		field  string
	}{
		{"missing name", func(r *dto.RedeemRequest) { r.Name = " " }, "name"},
		{"bad email", func(r *dto.RedeemRequest) { r.Email = "x" }, "email"},
		{"bad dob", func(r *dto.RedeemRequest) { r.DateOfBirth = "12/04/1985" }, "dateOfBirth"},
		{"future dob", func(r *dto.RedeemRequest) { r.DateOfBirth = time.Now().AddDate(1, 0, 0).Format("2006-01-02") }, "dateOfBirth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addCode(t, "k1", "ACM-GLP1-AAAAAA", nil)
			req := redeemRequest("ACM-GLP1-AAAAAA")
			tt.mutate(&req)

			_, err := f.useCase(identifier.NewGenerator()).Redeem(context.Background(), req)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, entity.CodeStatusActive, f.codeStatus(t, "ACM-GLP1-AAAAAA"))
		})
	}
}

func TestRedeem_EmedCollisionRetriesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCode(t, "k1", "ACM-GLP1-AAAAAA", nil)
	require.NoError(t, f.store.Users().Create(ctx, &entity.EnrolledUser{
		ID: "existing", CompanyID: companyID, EnrollmentCodeID: "k0", EmedIdentifier: "eMED-company-1-AAAA",
	}))

	// intento 1: eMED ...AAAA (colisión); intento 2: eMED ...BBBB y kit CCCCCCCC
	var src bytes.Buffer
	src.Write(bytes.Repeat([]byte{10}, 4))
	src.Write(bytes.Repeat([]byte{11}, 4))
	src.Write(bytes.Repeat([]byte{12}, 8))

	out, err := f.useCase(identifier.NewGeneratorFrom(&src)).Redeem(ctx, redeemRequest("ACM-GLP1-AAAAAA"))
	require.NoError(t, err)
	assert.Equal(t, "eMED-company-1-BBBB", out.EmedIdentifier)
	assert.Equal(t, entity.CodeStatusUsed, f.codeStatus(t, "ACM-GLP1-AAAAAA"))
}

func TestRedeem_FailureLeavesCodeActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCode(t, "k1", "ACM-GLP1-AAAAAA", nil)
	require.NoError(t, f.store.Kits().Create(ctx, &entity.LabKit{ID: "kit-0", UserID: "someone", KitIdentifier: "KIT-CCCCCCCC", Status: entity.KitStatusOrdered}))

	// ambos intentos generan el mismo KIT ya existente
	var src bytes.Buffer
	src.Write(bytes.Repeat([]byte{10}, 4))
	src.Write(bytes.Repeat([]byte{12}, 8))
	src.Write(bytes.Repeat([]byte{11}, 4))
	src.Write(bytes.Repeat([]byte{12}, 8))

	_, err := f.useCase(identifier.NewGeneratorFrom(&src)).Redeem(ctx, redeemRequest("ACM-GLP1-AAAAAA"))
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, entity.CodeStatusActive, f.codeStatus(t, "ACM-GLP1-AAAAAA"))
	assert.Empty(t, f.users(t))
}

func TestRedeem_ConcurrentExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	f.addCode(t, "k1", "ACM-GLP1-AAAAAA", nil)
	uc := f.useCase(identifier.NewGenerator())

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Redeem(context.Background(), redeemRequest("ACM-GLP1-AAAAAA"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, oks)
	require.Len(t, errs, n-1)
	for _, err := range errs {
		assert.True(t, errors.Is(err, domain.ErrInvalidOrExpiredCode), "error inesperado: %v", err)
	}
	assert.Len(t, f.users(t), 1)
}
