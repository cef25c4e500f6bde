package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var (
	_ repository.CodeBatchRepository      = (*CodeBatchRepo)(nil)
	_ repository.EnrollmentCodeRepository = (*EnrollmentCodeRepo)(nil)
)

// CodeBatchRepo lotes en memoria.
type CodeBatchRepo struct {
	s  *Store
	tx *tables
}

func (r *CodeBatchRepo) Create(_ context.Context, b *entity.CodeBatch) error {
	return r.s.view(r.tx, func(t *tables) error {
		if _, ok := t.batches[b.ID]; ok {
			return domain.ErrConflict
		}
		t.batches[b.ID] = *b
		return nil
	})
}

func (r *CodeBatchRepo) GetByID(_ context.Context, id string) (*entity.CodeBatch, error) {
	var out *entity.CodeBatch
	err := r.s.view(r.tx, func(t *tables) error {
		if b, ok := t.batches[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

func (r *CodeBatchRepo) ListSummaries(_ context.Context, companyID string) ([]*entity.CodeBatchSummary, error) {
	var out []*entity.CodeBatchSummary
	err := r.s.view(r.tx, func(t *tables) error {
		byID := make(map[string]*entity.CodeBatchSummary)
		for _, b := range t.batches {
			if b.CompanyID != companyID {
				continue
			}
			s := &entity.CodeBatchSummary{CodeBatch: b}
			if a, ok := t.admins[b.CreatedBy]; ok {
				s.CreatedByName = a.Name
			}
			byID[b.ID] = s
			out = append(out, s)
		}
		for _, c := range t.codes {
			s, ok := byID[c.BatchID]
			if !ok {
				continue
			}
			switch c.Status {
			case entity.CodeStatusActive:
				s.ActiveCount++
			case entity.CodeStatusUsed:
				s.UsedCount++
			case entity.CodeStatusExpired:
				s.ExpiredCount++
			}
		}
		return nil
	})
	sortByTimeDesc(out,
		func(s *entity.CodeBatchSummary) time.Time { return s.CreatedAt },
		func(s *entity.CodeBatchSummary) string { return s.ID })
	return out, err
}

// EnrollmentCodeRepo códigos en memoria; el valor del código es único.
type EnrollmentCodeRepo struct {
	s  *Store
	tx *tables
}

func (r *EnrollmentCodeRepo) Create(_ context.Context, c *entity.EnrollmentCode) error {
	return r.s.view(r.tx, func(t *tables) error {
		if _, ok := t.codes[c.ID]; ok {
			return domain.ErrConflict
		}
		for _, existing := range t.codes {
			if existing.Code == c.Code {
				return domain.ErrConflict
			}
		}
		t.codes[c.ID] = *c
		return nil
	})
}

func findCode(t *tables, code string) *entity.EnrollmentCode {
	for _, c := range t.codes {
		if c.Code == code {
			return &c
		}
	}
	return nil
}

func (r *EnrollmentCodeRepo) GetByCode(_ context.Context, code string) (*entity.EnrollmentCode, error) {
	var out *entity.EnrollmentCode
	err := r.s.view(r.tx, func(t *tables) error {
		out = findCode(t, code)
		return nil
	})
	return out, err
}

// GetByCodeForUpdate dentro de una tx la fila ya queda protegida por el lock del store.
func (r *EnrollmentCodeRepo) GetByCodeForUpdate(ctx context.Context, code string) (*entity.EnrollmentCode, error) {
	return r.GetByCode(ctx, code)
}

func (r *EnrollmentCodeRepo) MarkUsed(_ context.Context, codeID, userID string, at time.Time) (bool, error) {
	var updated bool
	err := r.s.view(r.tx, func(t *tables) error {
		c, ok := t.codes[codeID]
		if !ok || !entity.CanTransitionCode(c.Status, entity.CodeStatusUsed) {
			return nil
		}
		uid := userID
		c.Status = entity.CodeStatusUsed
		c.UsedAt = &at
		c.UsedByUserID = &uid
		t.codes[codeID] = c
		updated = true
		return nil
	})
	return updated, err
}

func (r *EnrollmentCodeRepo) MarkExpired(_ context.Context, codeID string, at time.Time) (bool, error) {
	var updated bool
	err := r.s.view(r.tx, func(t *tables) error {
		c, ok := t.codes[codeID]
		if !ok || !entity.CanTransitionCode(c.Status, entity.CodeStatusExpired) || !c.IsExpiredAt(at) {
			return nil
		}
		c.Status = entity.CodeStatusExpired
		t.codes[codeID] = c
		updated = true
		return nil
	})
	return updated, err
}

func (r *EnrollmentCodeRepo) List(_ context.Context, companyID string, f repository.CodeFilter) ([]*entity.EnrollmentCode, error) {
	var out []*entity.EnrollmentCode
	err := r.s.view(r.tx, func(t *tables) error {
		for _, c := range t.codes {
			if c.CompanyID != companyID {
				continue
			}
			if f.BatchID != "" && c.BatchID != f.BatchID {
				continue
			}
			if f.Status != "" && c.Status != f.Status {
				continue
			}
			out = append(out, &c)
		}
		return nil
	})
	sortByTimeDesc(out,
		func(c *entity.EnrollmentCode) time.Time { return c.CreatedAt },
		func(c *entity.EnrollmentCode) string { return c.Code })
	return out, err
}

func (r *EnrollmentCodeRepo) ListByBatch(_ context.Context, batchID string) ([]*entity.EnrollmentCode, error) {
	var out []*entity.EnrollmentCode
	err := r.s.view(r.tx, func(t *tables) error {
		for _, c := range t.codes {
			if c.BatchID == batchID {
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Code < out[j].Code
	})
	return out, err
}
