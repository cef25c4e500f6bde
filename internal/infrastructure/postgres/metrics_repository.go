package postgres

import (
	"context"

	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var _ repository.MetricsRepository = (*MetricsRepo)(nil)

// MetricsRepo consultas de solo lectura para el tablero de la empresa.
type MetricsRepo struct {
	q Querier
}

// NewMetricsRepository construye el adaptador de métricas.
func NewMetricsRepository(q Querier) *MetricsRepo {
	return &MetricsRepo{q: q}
}

// GetEnrollmentMetrics cuenta inscritos, activos, kits enviados (cualquier estado posterior a ordered),
// kits procesados y recetas, acotado a los empleados de la empresa.
func (r *MetricsRepo) GetEnrollmentMetrics(ctx context.Context, companyID string) (*repository.EnrollmentMetrics, error) {
	const query = `
	WITH users AS (
	    SELECT id, status FROM enrolled_users WHERE company_id = $1
	)
	SELECT
	    (SELECT COUNT(*) FROM users)                                              AS total_enrolled,
	    (SELECT COUNT(*) FROM users WHERE status = 'active')                      AS active_users,
	    (SELECT COUNT(*) FROM lab_kits k JOIN users u ON u.id = k.user_id
	      WHERE k.status <> 'ordered')                                            AS kits_shipped,
	    (SELECT COUNT(*) FROM lab_kits k JOIN users u ON u.id = k.user_id
	      WHERE k.status = 'processed')                                           AS kits_processed,
	    (SELECT COUNT(*) FROM prescriptions p JOIN users u ON u.id = p.user_id)  AS total_prescriptions`

	var m repository.EnrollmentMetrics
	err := r.q.QueryRow(ctx, query, companyID).Scan(
		&m.TotalEnrolled, &m.ActiveUsers, &m.KitsShipped, &m.KitsProcessed, &m.TotalPrescriptions,
	)
	if err != nil {
		return nil, mapPostgresError("enrollment metrics", err)
	}
	return &m, nil
}
