package memory

import (
	"context"
	"time"

	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var (
	_ repository.LabKitRepository    = (*LabKitRepo)(nil)
	_ repository.LabResultRepository = (*LabResultRepo)(nil)
)

// LabKitRepo kits en memoria; kit_identifier es único.
type LabKitRepo struct {
	s  *Store
	tx *tables
}

func (r *LabKitRepo) Create(_ context.Context, k *entity.LabKit) error {
	return r.s.view(r.tx, func(t *tables) error {
		if _, ok := t.kits[k.ID]; ok {
			return domain.ErrConflict
		}
		for _, existing := range t.kits {
			if existing.KitIdentifier == k.KitIdentifier {
				return domain.ErrConflict
			}
		}
		t.kits[k.ID] = *k
		return nil
	})
}

func (r *LabKitRepo) GetByIdentifierForUpdate(_ context.Context, kitIdentifier string) (*entity.LabKit, error) {
	var out *entity.LabKit
	err := r.s.view(r.tx, func(t *tables) error {
		for _, k := range t.kits {
			if k.KitIdentifier == kitIdentifier {
				out = &k
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *LabKitRepo) ListByUser(_ context.Context, userID string) ([]*entity.LabKit, error) {
	var out []*entity.LabKit
	err := r.s.view(r.tx, func(t *tables) error {
		for _, k := range t.kits {
			if k.UserID == userID {
				out = append(out, &k)
			}
		}
		return nil
	})
	sortByTimeDesc(out,
		func(k *entity.LabKit) time.Time { return k.OrderedAt },
		func(k *entity.LabKit) string { return k.ID })
	return out, err
}

func (r *LabKitRepo) UpdateStatus(_ context.Context, k *entity.LabKit) error {
	return r.s.view(r.tx, func(t *tables) error {
		current, ok := t.kits[k.ID]
		if !ok {
			return domain.ErrNotFound
		}
		current.Status = k.Status
		current.ShippedAt = k.ShippedAt
		current.DeliveredAt = k.DeliveredAt
		current.ProcessedAt = k.ProcessedAt
		t.kits[k.ID] = current
		return nil
	})
}

// LabResultRepo resultados de laboratorio en memoria.
type LabResultRepo struct {
	s  *Store
	tx *tables
}

func (r *LabResultRepo) Create(_ context.Context, res *entity.LabResult) error {
	return r.s.view(r.tx, func(t *tables) error {
		if _, ok := t.results[res.ID]; ok {
			return domain.ErrConflict
		}
		stored := *res
		stored.ResultData = append([]byte(nil), res.ResultData...)
		t.results[res.ID] = stored
		return nil
	})
}

func (r *LabResultRepo) ListByKit(_ context.Context, kitID string) ([]*entity.LabResult, error) {
	var out []*entity.LabResult
	err := r.s.view(r.tx, func(t *tables) error {
		for _, res := range t.results {
			if res.KitID == kitID {
				out = append(out, &res)
			}
		}
		return nil
	})
	sortByTimeDesc(out,
		func(res *entity.LabResult) time.Time { return res.ReceivedAt },
		func(res *entity.LabResult) string { return res.ID })
	return out, err
}
