package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var (
	_ repository.TelehealthReviewRepository = (*TelehealthReviewRepo)(nil)
	_ repository.PrescriptionRepository     = (*PrescriptionRepo)(nil)
	_ repository.ShipmentRepository         = (*ShipmentRepo)(nil)
)

// TelehealthReviewRepo revisiones clínicas.
type TelehealthReviewRepo struct {
	q Querier
}

// NewTelehealthReviewRepository construye el adaptador.
func NewTelehealthReviewRepository(q Querier) *TelehealthReviewRepo {
	return &TelehealthReviewRepo{q: q}
}

func (r *TelehealthReviewRepo) Create(ctx context.Context, rv *entity.TelehealthReview) error {
	query := `
		INSERT INTO telehealth_reviews (id, user_id, decision, reviewer_name, notes, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, rv.ID, rv.UserID, rv.Decision, rv.ReviewerName, rv.Notes, rv.ReviewedAt)
	return mapPostgresError("insert telehealth review", err)
}

func (r *TelehealthReviewRepo) ListByUser(ctx context.Context, userID string) ([]*entity.TelehealthReview, error) {
	query := `
		SELECT id, user_id, decision, reviewer_name, notes, reviewed_at
		FROM telehealth_reviews WHERE user_id = $1
		ORDER BY reviewed_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, mapPostgresError("list telehealth reviews", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.TelehealthReview, error) {
		var rv entity.TelehealthReview
		err := row.Scan(&rv.ID, &rv.UserID, &rv.Decision, &rv.ReviewerName, &rv.Notes, &rv.ReviewedAt)
		return &rv, err
	})
	if err != nil {
		return nil, mapPostgresError("scan telehealth reviews", err)
	}
	return out, nil
}

// PrescriptionRepo recetas. dosage_mg viaja como NUMERIC mediante pgx-shopspring-decimal.
type PrescriptionRepo struct {
	q Querier
}

// NewPrescriptionRepository construye el adaptador.
func NewPrescriptionRepository(q Querier) *PrescriptionRepo {
	return &PrescriptionRepo{q: q}
}

const rxColumns = `id, user_id, review_id, rx_identifier, medication, dosage_mg, frequency, instructions, refills, status, created_at, updated_at`

func scanPrescription(row rowScanner) (*entity.Prescription, error) {
	var rx entity.Prescription
	err := row.Scan(
		&rx.ID, &rx.UserID, &rx.ReviewID, &rx.RxIdentifier, &rx.Medication, &rx.DosageMg,
		&rx.Frequency, &rx.Instructions, &rx.Refills, &rx.Status, &rx.CreatedAt, &rx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rx, nil
}

func (r *PrescriptionRepo) Create(ctx context.Context, rx *entity.Prescription) error {
	query := `
		INSERT INTO prescriptions (id, user_id, review_id, rx_identifier, medication, dosage_mg,
		                           frequency, instructions, refills, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		rx.ID, rx.UserID, rx.ReviewID, rx.RxIdentifier, rx.Medication, rx.DosageMg,
		rx.Frequency, rx.Instructions, rx.Refills, rx.Status, rx.CreatedAt, rx.UpdatedAt,
	)
	return mapPostgresError("insert prescription", err)
}

func (r *PrescriptionRepo) GetByRxIdentifierForUpdate(ctx context.Context, rxIdentifier string) (*entity.Prescription, error) {
	rx, err := scanPrescription(r.q.QueryRow(ctx,
		`SELECT `+rxColumns+` FROM prescriptions WHERE rx_identifier = $1 FOR UPDATE`, rxIdentifier))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapPostgresError("get prescription", err)
	}
	return rx, nil
}

func (r *PrescriptionRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Prescription, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+rxColumns+` FROM prescriptions WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, mapPostgresError("list prescriptions", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Prescription, error) {
		return scanPrescription(row)
	})
	if err != nil {
		return nil, mapPostgresError("scan prescriptions", err)
	}
	return out, nil
}

func (r *PrescriptionRepo) UpdateStatus(ctx context.Context, rx *entity.Prescription) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE prescriptions SET status = $2, updated_at = $3 WHERE id = $1`, rx.ID, rx.Status, rx.UpdatedAt)
	if err != nil {
		return mapPostgresError("update prescription", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ShipmentRepo envíos de farmacia.
type ShipmentRepo struct {
	q Querier
}

// NewShipmentRepository construye el adaptador.
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

func (r *ShipmentRepo) Create(ctx context.Context, s *entity.Shipment) error {
	query := `
		INSERT INTO shipments (id, prescription_id, carrier, tracking_number, shipped_at, estimated_delivery)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, s.ID, s.PrescriptionID, s.Carrier, s.TrackingNumber, s.ShippedAt, s.EstimatedDelivery)
	return mapPostgresError("insert shipment", err)
}

func (r *ShipmentRepo) ListByPrescription(ctx context.Context, prescriptionID string) ([]*entity.Shipment, error) {
	query := `
		SELECT id, prescription_id, carrier, tracking_number, shipped_at, estimated_delivery
		FROM shipments WHERE prescription_id = $1
		ORDER BY shipped_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, prescriptionID)
	if err != nil {
		return nil, mapPostgresError("list shipments", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Shipment, error) {
		var s entity.Shipment
		err := row.Scan(&s.ID, &s.PrescriptionID, &s.Carrier, &s.TrackingNumber, &s.ShippedAt, &s.EstimatedDelivery)
		return &s, err
	})
	if err != nil {
		return nil, mapPostgresError("scan shipments", err)
	}
	return out, nil
}
