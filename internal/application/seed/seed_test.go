package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/emed-onboarding/internal/application/codes"
	"github.com/jhoicas/emed-onboarding/internal/application/ports"
	"github.com/jhoicas/emed-onboarding/internal/application/provisioning"
	"github.com/jhoicas/emed-onboarding/internal/application/seed"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/memory"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/security"
	"github.com/jhoicas/emed-onboarding/pkg/identifier"
)

func newSeeder(st *memory.Store) *seed.Seeder {
	return newSeederFor(st, entity.ProgramGLP1)
}

func newSeederFor(st *memory.Store, programCode string) *seed.Seeder {
	ids := identifier.NewGenerator()
	tx := st.TxRunner()
	provisionUC := provisioning.NewProvisionUseCase(tx, st.Programs(), security.NewBcryptHasher(bcrypt.MinCost), ids, ports.NopMetrics{},
		provisioning.Config{ProgramCode: programCode, PortalBaseURL: "https://emed-care.com/portal", DuplicateEmail: "reject"})
	codeUC := codes.NewCodeUseCase(tx, st.Companies(), st.Programs(), st.Batches(), st.Codes(), nil, ids, ports.NopMetrics{},
		codes.Config{ProgramCode: programCode, MaxBatchQuantity: 1000})
	return seed.NewSeeder(programCode, st.Programs(), provisionUC, codeUC)
}

func TestSeeder_ProgramIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	s := newSeeder(st)

	first, err := s.Run(ctx, false)
	require.NoError(t, err)
	second, err := s.Run(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, first.Program.ID, second.Program.ID)
	assert.Nil(t, first.Demo)

	p, err := st.Programs().GetByCode(ctx, entity.ProgramGLP1)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, first.Program.ID, p.ID)
}

func TestSeeder_Demo(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	s := newSeeder(st)

	res, err := s.Run(ctx, true)
	require.NoError(t, err)
	require.NotNil(t, res.Demo)
	require.NotNil(t, res.Batch)
	assert.False(t, res.DemoExists)
	assert.Equal(t, "admin@democompany.com", res.Demo.Credentials.Email)
	assert.Len(t, res.Batch.Codes, seed.DemoCodeQuantity)

	again, err := s.Run(ctx, true)
	require.NoError(t, err)
	assert.True(t, again.DemoExists)
	assert.Nil(t, again.Batch)
}

func TestSeeder_DemoNeedsUseCases(t *testing.T) {
	_, err := seed.NewSeeder(entity.ProgramGLP1, memory.NewStore().Programs(), nil, nil).Run(context.Background(), true)
	assert.Error(t, err)
}

func TestSeeder_ConfiguredProgramCode(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()

	res, err := newSeederFor(st, "WL1").Run(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "WL1", res.Program.Code)
	require.NotNil(t, res.Batch)
	assert.Equal(t, res.Program.ID, res.Batch.ProgramID)
	assert.Regexp(t, `^DEM-WL1-[0-9A-Z]{6}$`, res.Batch.Codes[0])

	glp1, err := st.Programs().GetByCode(ctx, entity.ProgramGLP1)
	require.NoError(t, err)
	assert.Nil(t, glp1)
}

func TestProgramFor(t *testing.T) {
	assert.Equal(t, entity.ProgramGLP1, seed.ProgramFor("").Code)
	assert.Equal(t, "GLP-1 Medication Program", seed.ProgramFor(entity.ProgramGLP1).Name)

	p := seed.ProgramFor(" WL1 ")
	assert.Equal(t, "WL1", p.Code)
	assert.True(t, p.Active)
	assert.NotEmpty(t, p.ID)
}
