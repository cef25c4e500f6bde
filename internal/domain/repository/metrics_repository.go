package repository

import "context"

// EnrollmentMetrics conteos del tablero de la empresa.
type EnrollmentMetrics struct {
	TotalEnrolled      int
	ActiveUsers        int
	KitsShipped        int
	KitsProcessed      int
	TotalPrescriptions int
}

// MetricsRepository consultas de solo lectura para el tablero.
type MetricsRepository interface {
	GetEnrollmentMetrics(ctx context.Context, companyID string) (*EnrollmentMetrics, error)
}
