package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emed-onboarding/internal/infrastructure/metrics"
)

func TestPrometheus_Counters(t *testing.T) {
	m := metrics.NewPrometheus()

	m.ProvisioningResult("ok")
	m.ProvisioningResult("ok")
	m.ProvisioningResult("rejected")
	m.CodesIssued(25)
	m.CodesIssued(0)
	m.EnrollmentResult("error")
	m.WebhookResult("lab_kit", "ok")

	expected := `
# HELP onboarding_provisioning_total Aprovisionamientos de empresas por resultado.
# TYPE onboarding_provisioning_total counter
onboarding_provisioning_total{result="ok"} 2
onboarding_provisioning_total{result="rejected"} 1
# HELP onboarding_codes_issued_total Códigos de inscripción emitidos.
# TYPE onboarding_codes_issued_total counter
onboarding_codes_issued_total 25
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"onboarding_provisioning_total", "onboarding_codes_issued_total"))
	n, err := testutil.GatherAndCount(m.Registry(), "onboarding_webhooks_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPrometheus_Handler(t *testing.T) {
	m := metrics.NewPrometheus()
	m.EnrollmentResult("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `onboarding_enrollments_total{result="ok"} 1`)
}
