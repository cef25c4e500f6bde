package memory

import (
	"context"
	"time"

	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var (
	_ repository.TelehealthReviewRepository = (*TelehealthReviewRepo)(nil)
	_ repository.PrescriptionRepository     = (*PrescriptionRepo)(nil)
	_ repository.ShipmentRepository         = (*ShipmentRepo)(nil)
)

// TelehealthReviewRepo revisiones en memoria.
type TelehealthReviewRepo struct {
	s  *Store
	tx *tables
}

func (r *TelehealthReviewRepo) Create(_ context.Context, rv *entity.TelehealthReview) error {
	return r.s.view(r.tx, func(t *tables) error {
		if _, ok := t.reviews[rv.ID]; ok {
			return domain.ErrConflict
		}
		t.reviews[rv.ID] = *rv
		return nil
	})
}

func (r *TelehealthReviewRepo) ListByUser(_ context.Context, userID string) ([]*entity.TelehealthReview, error) {
	var out []*entity.TelehealthReview
	err := r.s.view(r.tx, func(t *tables) error {
		for _, rv := range t.reviews {
			if rv.UserID == userID {
				out = append(out, &rv)
			}
		}
		return nil
	})
	sortByTimeDesc(out,
		func(rv *entity.TelehealthReview) time.Time { return rv.ReviewedAt },
		func(rv *entity.TelehealthReview) string { return rv.ID })
	return out, err
}

// PrescriptionRepo recetas en memoria; rx_identifier es único.
type PrescriptionRepo struct {
	s  *Store
	tx *tables
}

func (r *PrescriptionRepo) Create(_ context.Context, rx *entity.Prescription) error {
	return r.s.view(r.tx, func(t *tables) error {
		if _, ok := t.rxs[rx.ID]; ok {
			return domain.ErrConflict
		}
		for _, existing := range t.rxs {
			if existing.RxIdentifier == rx.RxIdentifier {
				return domain.ErrConflict
			}
		}
		t.rxs[rx.ID] = *rx
		return nil
	})
}

func (r *PrescriptionRepo) GetByRxIdentifierForUpdate(_ context.Context, rxIdentifier string) (*entity.Prescription, error) {
	var out *entity.Prescription
	err := r.s.view(r.tx, func(t *tables) error {
		for _, rx := range t.rxs {
			if rx.RxIdentifier == rxIdentifier {
				out = &rx
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *PrescriptionRepo) ListByUser(_ context.Context, userID string) ([]*entity.Prescription, error) {
	var out []*entity.Prescription
	err := r.s.view(r.tx, func(t *tables) error {
		for _, rx := range t.rxs {
			if rx.UserID == userID {
				out = append(out, &rx)
			}
		}
		return nil
	})
	sortByTimeDesc(out,
		func(rx *entity.Prescription) time.Time { return rx.CreatedAt },
		func(rx *entity.Prescription) string { return rx.ID })
	return out, err
}

func (r *PrescriptionRepo) UpdateStatus(_ context.Context, rx *entity.Prescription) error {
	return r.s.view(r.tx, func(t *tables) error {
		current, ok := t.rxs[rx.ID]
		if !ok {
			return domain.ErrNotFound
		}
		current.Status = rx.Status
		current.UpdatedAt = rx.UpdatedAt
		t.rxs[rx.ID] = current
		return nil
	})
}

// ShipmentRepo envíos en memoria.
type ShipmentRepo struct {
	s  *Store
	tx *tables
}

func (r *ShipmentRepo) Create(_ context.Context, sh *entity.Shipment) error {
	return r.s.view(r.tx, func(t *tables) error {
		if _, ok := t.shipments[sh.ID]; ok {
			return domain.ErrConflict
		}
		t.shipments[sh.ID] = *sh
		return nil
	})
}

func (r *ShipmentRepo) ListByPrescription(_ context.Context, prescriptionID string) ([]*entity.Shipment, error) {
	var out []*entity.Shipment
	err := r.s.view(r.tx, func(t *tables) error {
		for _, sh := range t.shipments {
			if sh.PrescriptionID == prescriptionID {
				out = append(out, &sh)
			}
		}
		return nil
	})
	sortByTimeDesc(out,
		func(sh *entity.Shipment) time.Time { return sh.ShippedAt },
		func(sh *entity.Shipment) string { return sh.ID })
	return out, err
}
