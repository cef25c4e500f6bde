package memory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var _ repository.EnrolledUserRepository = (*EnrolledUserRepo)(nil)

// EnrolledUserRepo empleados inscritos; emed_identifier y enrollment_code_id son únicos.
type EnrolledUserRepo struct {
	s  *Store
	tx *tables
}

func (r *EnrolledUserRepo) Create(_ context.Context, u *entity.EnrolledUser) error {
	return r.s.view(r.tx, func(t *tables) error {
		if _, ok := t.users[u.ID]; ok {
			return domain.ErrConflict
		}
		for _, existing := range t.users {
			if existing.EmedIdentifier == u.EmedIdentifier || existing.EnrollmentCodeID == u.EnrollmentCodeID {
				return domain.ErrConflict
			}
		}
		t.users[u.ID] = *u
		return nil
	})
}

func (r *EnrolledUserRepo) GetByID(_ context.Context, id string) (*entity.EnrolledUser, error) {
	var out *entity.EnrolledUser
	err := r.s.view(r.tx, func(t *tables) error {
		if u, ok := t.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *EnrolledUserRepo) GetByEmedIdentifier(_ context.Context, emedID string) (*entity.EnrolledUser, error) {
	var out *entity.EnrolledUser
	err := r.s.view(r.tx, func(t *tables) error {
		for _, u := range t.users {
			if u.EmedIdentifier == emedID {
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *EnrolledUserRepo) List(_ context.Context, companyID string, f repository.UserFilter) ([]*entity.EnrolledUser, error) {
	var out []*entity.EnrolledUser
	search := strings.ToLower(f.Search)
	err := r.s.view(r.tx, func(t *tables) error {
		for _, u := range t.users {
			if u.CompanyID != companyID {
				continue
			}
			if f.Status != "" && u.Status != f.Status {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(u.Name), search) &&
				!strings.Contains(strings.ToLower(u.Email), search) {
				continue
			}
			out = append(out, &u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByTimeDesc(out,
		func(u *entity.EnrolledUser) time.Time { return u.EnrollmentDate },
		func(u *entity.EnrolledUser) string { return u.ID })
	return page(out, f.Limit, f.Offset), nil
}

func (r *EnrolledUserRepo) UpdateStatus(_ context.Context, id, status string) error {
	return r.s.view(r.tx, func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return domain.ErrNotFound
		}
		u.Status = status
		t.users[id] = u
		return nil
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
