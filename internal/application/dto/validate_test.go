package dto_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/domain"
)

func TestValidate_ProvisionRequest(t *testing.T) {
	ok := dto.ProvisionRequest{
		CompanyName: "Acme",
		Size:        "51-200",
		AdminUser:   dto.AdminUserRequest{Name: "Ana", Email: "ana@acme.com"},
	}
	require.NoError(t, dto.Validate(ok))

	bad := ok
	bad.AdminUser.Email = "no-es-email"
	err := dto.Validate(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "adminUser.email", verr.Field)
	assert.Equal(t, "email", verr.Reason)
}

func TestValidate_SizeDesconocido(t *testing.T) {
	in := dto.ProvisionRequest{
		CompanyName: "Acme",
		Size:        "huge",
		AdminUser:   dto.AdminUserRequest{Name: "Ana", Email: "ana@acme.com"},
	}
	var verr *domain.ValidationError
	require.True(t, errors.As(dto.Validate(in), &verr))
	assert.Equal(t, "size", verr.Field)
}

func TestValidate_IssueBatchCantidad(t *testing.T) {
	for _, q := range []int{0, -3} {
		err := dto.Validate(dto.IssueBatchRequest{Quantity: q})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "quantity=%d", q)
	}
	assert.NoError(t, dto.Validate(dto.IssueBatchRequest{Quantity: 1}))
}
