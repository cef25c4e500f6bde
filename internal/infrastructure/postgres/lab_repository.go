package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var (
	_ repository.LabKitRepository    = (*LabKitRepo)(nil)
	_ repository.LabResultRepository = (*LabResultRepo)(nil)
)

// LabKitRepo kits de laboratorio.
type LabKitRepo struct {
	q Querier
}

// NewLabKitRepository construye el adaptador.
func NewLabKitRepository(q Querier) *LabKitRepo {
	return &LabKitRepo{q: q}
}

const kitColumns = `id, user_id, kit_identifier, status, ordered_at, shipped_at, delivered_at, processed_at`

func scanKit(row rowScanner) (*entity.LabKit, error) {
	var k entity.LabKit
	err := row.Scan(&k.ID, &k.UserID, &k.KitIdentifier, &k.Status, &k.OrderedAt, &k.ShippedAt, &k.DeliveredAt, &k.ProcessedAt)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *LabKitRepo) Create(ctx context.Context, k *entity.LabKit) error {
	query := `
		INSERT INTO lab_kits (id, user_id, kit_identifier, status, ordered_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, k.ID, k.UserID, k.KitIdentifier, k.Status, k.OrderedAt)
	return mapPostgresError("insert lab kit", err)
}

func (r *LabKitRepo) GetByIdentifierForUpdate(ctx context.Context, kitIdentifier string) (*entity.LabKit, error) {
	k, err := scanKit(r.q.QueryRow(ctx,
		`SELECT `+kitColumns+` FROM lab_kits WHERE kit_identifier = $1 FOR UPDATE`, kitIdentifier))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapPostgresError("get lab kit", err)
	}
	return k, nil
}

func (r *LabKitRepo) ListByUser(ctx context.Context, userID string) ([]*entity.LabKit, error) {
	rows, err := r.q.Query(ctx, `SELECT `+kitColumns+` FROM lab_kits WHERE user_id = $1 ORDER BY ordered_at DESC, id DESC`, userID)
	if err != nil {
		return nil, mapPostgresError("list lab kits", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.LabKit, error) {
		return scanKit(row)
	})
	if err != nil {
		return nil, mapPostgresError("scan lab kits", err)
	}
	return out, nil
}

func (r *LabKitRepo) UpdateStatus(ctx context.Context, k *entity.LabKit) error {
	query := `
		UPDATE lab_kits
		SET status = $2, shipped_at = $3, delivered_at = $4, processed_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, k.ID, k.Status, k.ShippedAt, k.DeliveredAt, k.ProcessedAt)
	if err != nil {
		return mapPostgresError("update lab kit", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// LabResultRepo resultados opacos (JSONB).
type LabResultRepo struct {
	q Querier
}

// NewLabResultRepository construye el adaptador.
func NewLabResultRepository(q Querier) *LabResultRepo {
	return &LabResultRepo{q: q}
}

func (r *LabResultRepo) Create(ctx context.Context, res *entity.LabResult) error {
	query := `
		INSERT INTO lab_results (id, user_id, kit_id, result_data, received_at)
		VALUES ($1, $2, $3, $4::jsonb, $5)`
	_, err := r.q.Exec(ctx, query, res.ID, res.UserID, res.KitID, string(res.ResultData), res.ReceivedAt)
	return mapPostgresError("insert lab result", err)
}

func (r *LabResultRepo) ListByKit(ctx context.Context, kitID string) ([]*entity.LabResult, error) {
	query := `
		SELECT id, user_id, kit_id, result_data::text, received_at
		FROM lab_results WHERE kit_id = $1
		ORDER BY received_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, kitID)
	if err != nil {
		return nil, mapPostgresError("list lab results", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.LabResult, error) {
		var (
			res  entity.LabResult
			data string
		)
		if err := row.Scan(&res.ID, &res.UserID, &res.KitID, &data, &res.ReceivedAt); err != nil {
			return nil, err
		}
		res.ResultData = []byte(data)
		return &res, nil
	})
	if err != nil {
		return nil, mapPostgresError("scan lab results", err)
	}
	return out, nil
}
