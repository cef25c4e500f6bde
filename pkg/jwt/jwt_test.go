package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emed-onboarding/pkg/jwt"
)

func TestGenerateAndParse(t *testing.T) {
	token, err := jwt.Generate("s3cret", "admin-1", "company-1", "admin", "emed-onboarding", 60)
	require.NoError(t, err)

	p, err := jwt.Parse("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", p.AdminID)
	assert.Equal(t, "company-1", p.CompanyID)
	assert.Equal(t, "admin", p.Role)
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := jwt.Generate("s3cret", "admin-1", "company-1", "admin", "", 60)
	require.NoError(t, err)

	_, err = jwt.Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Garbage(t *testing.T) {
	_, err := jwt.Parse("s3cret", "no-es-un-token")
	assert.Error(t, err)
}

func TestGenerate_EmptySecret(t *testing.T) {
	_, err := jwt.Generate("", "a", "c", "admin", "", 60)
	assert.Error(t, err)
}
