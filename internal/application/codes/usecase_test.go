package codes_test

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emed-onboarding/internal/application/codes"
	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/seed"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/memory"
	"github.com/jhoicas/emed-onboarding/pkg/identifier"
)

var codeRe = regexp.MustCompile(`^ACM-GLP1-[0-9A-Z]{6}$`)

type fakePDF struct {
	codes []string
	url   string
}

func (f *fakePDF) GenerateCodeSheetPDF(_ context.Context, _ *entity.Company, _ *entity.Program, _ *entity.CodeBatch, list []*entity.EnrollmentCode, url string) ([]byte, error) {
	for _, c := range list {
		f.codes = append(f.codes, c.Code)
	}
	f.url = url
	return []byte("%PDF-fake"), nil
}

// constReader entrega siempre el mismo byte: todos los códigos generados colisionan.
type constReader byte

func (r constReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r)
	}
	return len(p), nil
}

type fixture struct {
	store   *memory.Store
	company *entity.Company
	admin   *entity.Admin
	pdf     *fakePDF
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.NewStore()
	require.NoError(t, st.Programs().EnsureExists(ctx, seed.DefaultProgram()))

	company := &entity.Company{ID: "company-1", Name: "Acme Corp", Size: entity.Size1To50, CreatedAt: time.Now()}
	require.NoError(t, st.Companies().Create(ctx, company))
	admin := &entity.Admin{ID: "admin-1", CompanyID: company.ID, Name: "Ana", Email: "ana@acme.com", Active: true}
	require.NoError(t, st.Admins().Create(ctx, admin))

	return &fixture{store: st, company: company, admin: admin, pdf: &fakePDF{}}
}

func (f *fixture) useCase(ids *identifier.Generator) *codes.CodeUseCase {
	return codes.NewCodeUseCase(
		f.store.TxRunner(),
		f.store.Companies(),
		f.store.Programs(),
		f.store.Batches(),
		f.store.Codes(),
		f.pdf,
		ids,
		nil,
		codes.Config{ProgramCode: entity.ProgramGLP1, MaxBatchQuantity: 1000, EnrollmentURL: "https://emed-care.com/enroll"},
	)
}

func TestIssueBatch_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.useCase(identifier.NewGenerator()).IssueBatch(ctx, f.company.ID, f.admin.ID, dto.IssueBatchRequest{Quantity: 25, Notes: "onboarding"})
	require.NoError(t, err)
	require.Len(t, out.Codes, 25)
	assert.Nil(t, out.ExpiresAt)

	seen := make(map[string]bool)
	for _, c := range out.Codes {
		assert.Regexp(t, codeRe, c)
		assert.False(t, seen[c], "código repetido %s", c)
		seen[c] = true
	}

	stored, err := f.store.Codes().ListByBatch(ctx, out.BatchID)
	require.NoError(t, err)
	require.Len(t, stored, 25)
	for i, c := range stored {
		assert.Equal(t, out.Codes[i], c.Code, "orden de emisión")
		assert.Equal(t, entity.CodeStatusActive, c.Status)
		assert.Equal(t, f.admin.ID, c.CreatedBy)
	}
}

func TestIssueBatch_ExpiresInDays(t *testing.T) {
	f := newFixture(t)
	out, err := f.useCase(identifier.NewGenerator()).IssueBatch(context.Background(), f.company.ID, f.admin.ID, dto.IssueBatchRequest{Quantity: 1, ExpiresInDays: 30})
	require.NoError(t, err)
	require.NotNil(t, out.ExpiresAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), *out.ExpiresAt, time.Minute)
}

func TestIssueBatch_InvalidQuantity(t *testing.T) {
	for _, q := range []int{0, -1, 1001} {
		t.Run(fmt.Sprint(q), func(t *testing.T) {
			f := newFixture(t)
			_, err := f.useCase(identifier.NewGenerator()).IssueBatch(context.Background(), f.company.ID, f.admin.ID, dto.IssueBatchRequest{Quantity: q})
			require.ErrorIs(t, err, domain.ErrInvalidInput)

			batches, err := f.store.Batches().ListSummaries(context.Background(), f.company.ID)
			require.NoError(t, err)
			assert.Empty(t, batches)
		})
	}
}

func TestIssueBatch_UnknownCompany(t *testing.T) {
	f := newFixture(t)
	_, err := f.useCase(identifier.NewGenerator()).IssueBatch(context.Background(), "nope", f.admin.ID, dto.IssueBatchRequest{Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIssueBatch_CollisionRetriesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// intento 1: dos códigos iguales (colisión); intento 2: BBBBBB y CCCCCC
	src := bytes.NewReader(append(append(
		bytes.Repeat([]byte{10}, 12),
		bytes.Repeat([]byte{11}, 6)...),
		bytes.Repeat([]byte{12}, 6)...))

	out, err := f.useCase(identifier.NewGeneratorFrom(src)).IssueBatch(ctx, f.company.ID, f.admin.ID, dto.IssueBatchRequest{Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"ACM-GLP1-BBBBBB", "ACM-GLP1-CCCCCC"}, out.Codes)

	batches, err := f.store.Batches().ListSummaries(ctx, f.company.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1, "el intento fallido no deja lote parcial")
	assert.Equal(t, 2, batches[0].ActiveCount)
}

func TestIssueBatch_PersistentCollisionAbortsWholeBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.useCase(identifier.NewGeneratorFrom(constReader(7))).IssueBatch(ctx, f.company.ID, f.admin.ID, dto.IssueBatchRequest{Quantity: 3})
	require.ErrorIs(t, err, domain.ErrConflict)

	batches, err := f.store.Batches().ListSummaries(ctx, f.company.ID)
	require.NoError(t, err)
	assert.Empty(t, batches)
	list, err := f.store.Codes().List(ctx, f.company.ID, repository.CodeFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListCodesAndBatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := f.useCase(identifier.NewGenerator())

	b1, err := uc.IssueBatch(ctx, f.company.ID, f.admin.ID, dto.IssueBatchRequest{Quantity: 3})
	require.NoError(t, err)
	_, err = uc.IssueBatch(ctx, f.company.ID, f.admin.ID, dto.IssueBatchRequest{Quantity: 2})
	require.NoError(t, err)

	first, err := f.store.Codes().GetByCode(ctx, b1.Codes[0])
	require.NoError(t, err)
	ok, err := f.store.Codes().MarkUsed(ctx, first.ID, "user-1", time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	all, err := uc.ListCodes(ctx, f.company.ID, repository.CodeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	inBatch, err := uc.ListCodes(ctx, f.company.ID, repository.CodeFilter{BatchID: b1.BatchID, Status: entity.CodeStatusActive})
	require.NoError(t, err)
	assert.Len(t, inBatch, 2)

	_, err = uc.ListCodes(ctx, f.company.ID, repository.CodeFilter{Status: "active' OR 1=1 --"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	other, err := uc.ListCodes(ctx, "company-2", repository.CodeFilter{})
	require.NoError(t, err)
	assert.Empty(t, other)

	batches, err := uc.ListBatches(ctx, f.company.ID)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	var found bool
	for _, b := range batches {
		assert.Equal(t, "Ana", b.CreatedByName)
		if b.ID == b1.BatchID {
			found = true
			assert.Equal(t, 2, b.ActiveCount)
			assert.Equal(t, 1, b.UsedCount)
			assert.Equal(t, 0, b.ExpiredCount)
		}
	}
	assert.True(t, found)
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := f.useCase(identifier.NewGenerator())

	out, err := uc.IssueBatch(ctx, f.company.ID, f.admin.ID, dto.IssueBatchRequest{Quantity: 4})
	require.NoError(t, err)

	csv, err := uc.ExportCSV(ctx, f.company.ID, out.BatchID)
	require.NoError(t, err)
	assert.Equal(t, "code\n"+strings.Join(out.Codes, "\n")+"\n", string(csv))

	_, err = uc.ExportCSV(ctx, "company-2", out.BatchID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.ExportCSV(ctx, f.company.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExportPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := f.useCase(identifier.NewGenerator())

	out, err := uc.IssueBatch(ctx, f.company.ID, f.admin.ID, dto.IssueBatchRequest{Quantity: 3})
	require.NoError(t, err)

	pdf, err := uc.ExportPDF(ctx, f.company.ID, out.BatchID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Equal(t, out.Codes, f.pdf.codes)
	assert.Equal(t, "https://emed-care.com/enroll", f.pdf.url)

	_, err = uc.ExportPDF(ctx, "company-2", out.BatchID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
