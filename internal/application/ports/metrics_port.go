package ports

// Resultados usados como etiqueta en las métricas.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics registra contadores del flujo de inscripción. El adaptador vive en infrastructure/metrics.
type Metrics interface {
	ProvisioningResult(result string)
	CodesIssued(n int)
	EnrollmentResult(result string)
	WebhookResult(kind, result string)
}

// NopMetrics descarta todo; útil en tests y herramientas de línea de comandos.
type NopMetrics struct{}

func (NopMetrics) ProvisioningResult(string)    {}
func (NopMetrics) CodesIssued(int)              {}
func (NopMetrics) EnrollmentResult(string)      {}
func (NopMetrics) WebhookResult(string, string) {}
