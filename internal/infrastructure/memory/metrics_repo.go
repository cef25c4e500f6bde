package memory

import (
	"context"

	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var _ repository.MetricsRepository = (*MetricsRepo)(nil)

// MetricsRepo conteos del tablero calculados sobre las tablas en memoria.
type MetricsRepo struct {
	s *Store
}

func (r *MetricsRepo) GetEnrollmentMetrics(_ context.Context, companyID string) (*repository.EnrollmentMetrics, error) {
	m := &repository.EnrollmentMetrics{}
	err := r.s.view(nil, func(t *tables) error {
		users := make(map[string]struct{})
		for _, u := range t.users {
			if u.CompanyID != companyID {
				continue
			}
			users[u.ID] = struct{}{}
			m.TotalEnrolled++
			if u.Status == entity.UserStatusActive {
				m.ActiveUsers++
			}
		}
		for _, k := range t.kits {
			if _, ok := users[k.UserID]; !ok {
				continue
			}
			// shipped cuenta todo kit que ya salió, aunque haya avanzado después
			if k.Status != entity.KitStatusOrdered {
				m.KitsShipped++
			}
			if k.Status == entity.KitStatusProcessed {
				m.KitsProcessed++
			}
		}
		for _, rx := range t.rxs {
			if _, ok := users[rx.UserID]; ok {
				m.TotalPrescriptions++
			}
		}
		return nil
	})
	return m, err
}
