package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var (
	_ repository.CodeBatchRepository      = (*CodeBatchRepo)(nil)
	_ repository.EnrollmentCodeRepository = (*EnrollmentCodeRepo)(nil)
)

// rowScanner lo cumplen pgx.Row y pgx.CollectableRow.
type rowScanner interface {
	Scan(dest ...any) error
}

// CodeBatchRepo lotes de códigos.
type CodeBatchRepo struct {
	q Querier
}

// NewCodeBatchRepository construye el adaptador.
func NewCodeBatchRepository(q Querier) *CodeBatchRepo {
	return &CodeBatchRepo{q: q}
}

func (r *CodeBatchRepo) Create(ctx context.Context, b *entity.CodeBatch) error {
	query := `
		INSERT INTO code_batches (id, company_id, program_id, quantity, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, b.ID, b.CompanyID, b.ProgramID, b.Quantity, b.Notes, b.CreatedBy, b.CreatedAt)
	return mapPostgresError("insert code batch", err)
}

func (r *CodeBatchRepo) GetByID(ctx context.Context, id string) (*entity.CodeBatch, error) {
	query := `
		SELECT id, company_id, program_id, quantity, notes, created_by, created_at
		FROM code_batches WHERE id = $1`
	var b entity.CodeBatch
	err := r.q.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.CompanyID, &b.ProgramID, &b.Quantity, &b.Notes, &b.CreatedBy, &b.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapPostgresError("get code batch", err)
	}
	return &b, nil
}

// ListSummaries lotes de la empresa con conteos por estado y nombre del creador, más recientes primero.
func (r *CodeBatchRepo) ListSummaries(ctx context.Context, companyID string) ([]*entity.CodeBatchSummary, error) {
	query := `
		SELECT b.id, b.company_id, b.program_id, b.quantity, b.notes, b.created_by, b.created_at,
		       COUNT(c.id) FILTER (WHERE c.status = 'active'),
		       COUNT(c.id) FILTER (WHERE c.status = 'used'),
		       COUNT(c.id) FILTER (WHERE c.status = 'expired'),
		       COALESCE(a.name, '')
		FROM code_batches b
		LEFT JOIN enrollment_codes c ON c.batch_id = b.id
		LEFT JOIN portal_admins a ON a.id = b.created_by
		WHERE b.company_id = $1
		GROUP BY b.id, a.name
		ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, mapPostgresError("list code batches", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.CodeBatchSummary, error) {
		var s entity.CodeBatchSummary
		err := row.Scan(
			&s.ID, &s.CompanyID, &s.ProgramID, &s.Quantity, &s.Notes, &s.CreatedBy, &s.CreatedAt,
			&s.ActiveCount, &s.UsedCount, &s.ExpiredCount, &s.CreatedByName,
		)
		return &s, err
	})
	if err != nil {
		return nil, mapPostgresError("scan code batches", err)
	}
	return out, nil
}

// EnrollmentCodeRepo códigos de inscripción.
type EnrollmentCodeRepo struct {
	q Querier
}

// NewEnrollmentCodeRepository construye el adaptador.
func NewEnrollmentCodeRepository(q Querier) *EnrollmentCodeRepo {
	return &EnrollmentCodeRepo{q: q}
}

const codeColumns = `id, code, company_id, program_id, batch_id, created_by, status, used_at, used_by_user_id, expires_at, created_at`

func scanCode(row rowScanner) (*entity.EnrollmentCode, error) {
	var c entity.EnrollmentCode
	err := row.Scan(
		&c.ID, &c.Code, &c.CompanyID, &c.ProgramID, &c.BatchID, &c.CreatedBy,
		&c.Status, &c.UsedAt, &c.UsedByUserID, &c.ExpiresAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCodes(rows pgx.Rows, op string) ([]*entity.EnrollmentCode, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.EnrollmentCode, error) {
		return scanCode(row)
	})
	if err != nil {
		return nil, mapPostgresError(op, err)
	}
	return out, nil
}

// Create inserta el código; colisión en enrollment_codes_code_key devuelve domain.ErrConflict.
func (r *EnrollmentCodeRepo) Create(ctx context.Context, c *entity.EnrollmentCode) error {
	query := `
		INSERT INTO enrollment_codes (id, code, company_id, program_id, batch_id, created_by, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Code, c.CompanyID, c.ProgramID, c.BatchID, c.CreatedBy, c.Status, c.ExpiresAt, c.CreatedAt,
	)
	return mapPostgresError("insert enrollment code", err)
}

func (r *EnrollmentCodeRepo) getByCode(ctx context.Context, code, suffix string) (*entity.EnrollmentCode, error) {
	c, err := scanCode(r.q.QueryRow(ctx, `SELECT `+codeColumns+` FROM enrollment_codes WHERE code = $1`+suffix, code))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapPostgresError("get enrollment code", err)
	}
	return c, nil
}

func (r *EnrollmentCodeRepo) GetByCode(ctx context.Context, code string) (*entity.EnrollmentCode, error) {
	return r.getByCode(ctx, code, "")
}

// GetByCodeForUpdate requiere que q sea una tx; fuera de ella el lock se libera al instante.
func (r *EnrollmentCodeRepo) GetByCodeForUpdate(ctx context.Context, code string) (*entity.EnrollmentCode, error) {
	return r.getByCode(ctx, code, ` FOR UPDATE`)
}

func (r *EnrollmentCodeRepo) MarkUsed(ctx context.Context, codeID, userID string, at time.Time) (bool, error) {
	query := `
		UPDATE enrollment_codes
		SET status = 'used', used_at = $3, used_by_user_id = $2
		WHERE id = $1 AND status = 'active'`
	tag, err := r.q.Exec(ctx, query, codeID, userID, at)
	if err != nil {
		return false, mapPostgresError("mark code used", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *EnrollmentCodeRepo) MarkExpired(ctx context.Context, codeID string, at time.Time) (bool, error) {
	query := `
		UPDATE enrollment_codes
		SET status = 'expired'
		WHERE id = $1 AND status = 'active' AND expires_at IS NOT NULL AND expires_at <= $2`
	tag, err := r.q.Exec(ctx, query, codeID, at)
	if err != nil {
		return false, mapPostgresError("mark code expired", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List códigos de la empresa con filtros opcionales, más recientes primero.
func (r *EnrollmentCodeRepo) List(ctx context.Context, companyID string, f repository.CodeFilter) ([]*entity.EnrollmentCode, error) {
	var (
		where = []string{"company_id = $1"}
		args  = []any{companyID}
	)
	if f.BatchID != "" {
		args = append(args, f.BatchID)
		where = append(where, fmt.Sprintf("batch_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + codeColumns + ` FROM enrollment_codes WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC, code DESC`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPostgresError("list enrollment codes", err)
	}
	return collectCodes(rows, "scan enrollment codes")
}

func (r *EnrollmentCodeRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.EnrollmentCode, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+codeColumns+` FROM enrollment_codes WHERE batch_id = $1 ORDER BY created_at, code`, batchID)
	if err != nil {
		return nil, mapPostgresError("list batch codes", err)
	}
	return collectCodes(rows, "scan batch codes")
}
