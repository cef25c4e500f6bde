package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var _ repository.EnrolledUserRepository = (*EnrolledUserRepo)(nil)

// EnrolledUserRepo empleados inscritos.
type EnrolledUserRepo struct {
	q Querier
}

// NewEnrolledUserRepository construye el adaptador.
func NewEnrolledUserRepository(q Querier) *EnrolledUserRepo {
	return &EnrolledUserRepo{q: q}
}

const userColumns = `id, company_id, program_id, enrollment_code_id, name, email, phone, date_of_birth, address, emed_identifier, status, enrollment_date`

func scanEnrolledUser(row rowScanner) (*entity.EnrolledUser, error) {
	var u entity.EnrolledUser
	err := row.Scan(
		&u.ID, &u.CompanyID, &u.ProgramID, &u.EnrollmentCodeID, &u.Name, &u.Email, &u.Phone,
		&u.DateOfBirth, &u.Address, &u.EmedIdentifier, &u.Status, &u.EnrollmentDate,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *EnrolledUserRepo) Create(ctx context.Context, u *entity.EnrolledUser) error {
	query := `
		INSERT INTO enrolled_users (id, company_id, program_id, enrollment_code_id, name, email, phone,
		                            date_of_birth, address, emed_identifier, status, enrollment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.CompanyID, u.ProgramID, u.EnrollmentCodeID, u.Name, u.Email, u.Phone,
		u.DateOfBirth, u.Address, u.EmedIdentifier, u.Status, u.EnrollmentDate,
	)
	return mapPostgresError("insert enrolled user", err)
}

func (r *EnrolledUserRepo) getOne(ctx context.Context, where string, arg any) (*entity.EnrolledUser, error) {
	u, err := scanEnrolledUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM enrolled_users WHERE `+where, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapPostgresError("get enrolled user", err)
	}
	return u, nil
}

func (r *EnrolledUserRepo) GetByID(ctx context.Context, id string) (*entity.EnrolledUser, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *EnrolledUserRepo) GetByEmedIdentifier(ctx context.Context, emedID string) (*entity.EnrolledUser, error) {
	return r.getOne(ctx, `emed_identifier = $1`, emedID)
}

// likeEscaper neutraliza los comodines de LIKE en la búsqueda del usuario.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List empleados de la empresa, más recientes primero. Limit 0 no pagina.
func (r *EnrolledUserRepo) List(ctx context.Context, companyID string, f repository.UserFilter) ([]*entity.EnrolledUser, error) {
	var (
		where = []string{"company_id = $1"}
		args  = []any{companyID}
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(f.Search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", n, n))
	}
	query := `SELECT ` + userColumns + ` FROM enrolled_users WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY enrollment_date DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPostgresError("list enrolled users", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.EnrolledUser, error) {
		return scanEnrolledUser(row)
	})
	if err != nil {
		return nil, mapPostgresError("scan enrolled users", err)
	}
	return out, nil
}

func (r *EnrolledUserRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE enrolled_users SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return mapPostgresError("update enrolled user status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
