package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/emed-onboarding/internal/application/ports"
)

const namespace = "onboarding"

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus contadores de los flujos de onboarding sobre un registry propio.
type Prometheus struct {
	registry     *prometheus.Registry
	provisioning *prometheus.CounterVec
	codesIssued  prometheus.Counter
	enrollments  *prometheus.CounterVec
	webhooks     *prometheus.CounterVec
}

// NewPrometheus registra los contadores y los collectors de proceso y runtime.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		registry: reg,
		provisioning: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisioning_total",
			Help:      "Aprovisionamientos de empresas por resultado.",
		}, []string{"result"}),
		codesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codes_issued_total",
			Help:      "Códigos de inscripción emitidos.",
		}),
		enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrollments_total",
			Help:      "Canjes de códigos por resultado.",
		}, []string{"result"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Webhooks de socios por tipo y resultado.",
		}, []string{"kind", "result"}),
	}
	reg.MustRegister(
		p.provisioning, p.codesIssued, p.enrollments, p.webhooks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) ProvisioningResult(result string) {
	p.provisioning.WithLabelValues(result).Inc()
}

func (p *Prometheus) CodesIssued(n int) {
	if n > 0 {
		p.codesIssued.Add(float64(n))
	}
}

func (p *Prometheus) EnrollmentResult(result string) {
	p.enrollments.WithLabelValues(result).Inc()
}

func (p *Prometheus) WebhookResult(kind, result string) {
	p.webhooks.WithLabelValues(kind, result).Inc()
}

// Registry expone el registry (tests y exportadores adicionales).
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler sirve el formato de exposición de Prometheus para GET /metrics.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
