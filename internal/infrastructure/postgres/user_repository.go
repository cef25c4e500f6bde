package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var _ repository.AdminRepository = (*AdminRepo)(nil)

// AdminRepo administradores del portal (tabla portal_admins).
type AdminRepo struct {
	q Querier
}

// NewAdminRepository construye el adaptador. Pasar pool o tx.
func NewAdminRepository(q Querier) *AdminRepo {
	return &AdminRepo{q: q}
}

const adminColumns = `id, company_id, name, email, title, password_hash, active, last_login, created_at`

func scanAdmin(row rowScanner) (*entity.Admin, error) {
	var a entity.Admin
	err := row.Scan(&a.ID, &a.CompanyID, &a.Name, &a.Email, &a.Title, &a.PasswordHash, &a.Active, &a.LastLogin, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create persiste un admin. Un email repetido devuelve domain.ErrEmailAlreadyExists.
func (r *AdminRepo) Create(ctx context.Context, a *entity.Admin) error {
	query := `
		INSERT INTO portal_admins (id, company_id, name, email, title, password_hash, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.CompanyID, a.Name, a.Email, a.Title, a.PasswordHash, entity.RoleAdmin, a.Active, a.CreatedAt,
	)
	return mapPostgresError("insert admin", err)
}

// GetByID obtiene un admin por ID.
func (r *AdminRepo) GetByID(ctx context.Context, id string) (*entity.Admin, error) {
	a, err := scanAdmin(r.q.QueryRow(ctx, `SELECT `+adminColumns+` FROM portal_admins WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapPostgresError("get admin", err)
	}
	return a, nil
}

// GetActiveByEmail obtiene el admin activo con ese email (login).
func (r *AdminRepo) GetActiveByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	a, err := scanAdmin(r.q.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM portal_admins WHERE lower(email) = lower($1) AND active`, email))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapPostgresError("get admin by email", err)
	}
	return a, nil
}

func (r *AdminRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM portal_admins WHERE lower(email) = lower($1))`, email).Scan(&exists)
	if err != nil {
		return false, mapPostgresError("email exists", err)
	}
	return exists, nil
}

// IsActiveAdmin verificación secundaria del principal del JWT.
func (r *AdminRepo) IsActiveAdmin(ctx context.Context, adminID, companyID string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM portal_admins
			WHERE id = $1 AND company_id = $2 AND role = $3 AND active
		)`, adminID, companyID, entity.RoleAdmin).Scan(&ok)
	if err != nil {
		return false, mapPostgresError("check admin", err)
	}
	return ok, nil
}

func (r *AdminRepo) TouchLastLogin(ctx context.Context, adminID string, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE portal_admins SET last_login = $2 WHERE id = $1`, adminID, at)
	return mapPostgresError("touch last_login", err)
}
