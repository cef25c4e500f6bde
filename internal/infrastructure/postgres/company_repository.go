package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var (
	_ repository.CompanyRepository = (*CompanyRepo)(nil)
	_ repository.ProgramRepository = (*ProgramRepo)(nil)
)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL (pool o tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	query := `
		INSERT INTO companies (id, name, address, industry, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, c.ID, c.Name, c.Address, c.Industry, c.Size, c.CreatedAt)
	return mapPostgresError("insert company", err)
}

// GetByID obtiene una empresa por ID; (nil, nil) si no existe.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `
		SELECT id, name, address, industry, size, created_at
		FROM companies WHERE id = $1`
	var c entity.Company
	err := r.q.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Address, &c.Industry, &c.Size, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapPostgresError("get company", err)
	}
	return &c, nil
}

// ProgramRepo fila de referencia de programas.
type ProgramRepo struct {
	q Querier
}

// NewProgramRepository construye el adaptador.
func NewProgramRepository(q Querier) *ProgramRepo {
	return &ProgramRepo{q: q}
}

const programColumns = `id, code, name, description, active`

func (r *ProgramRepo) get(ctx context.Context, where string, arg any) (*entity.Program, error) {
	var p entity.Program
	err := r.q.QueryRow(ctx, `SELECT `+programColumns+` FROM programs WHERE `+where, arg).Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &p.Active,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapPostgresError("get program", err)
	}
	return &p, nil
}

// GetByCode obtiene el programa por código (ej. GLP1).
func (r *ProgramRepo) GetByCode(ctx context.Context, code string) (*entity.Program, error) {
	return r.get(ctx, `code = $1`, code)
}

// GetByID obtiene el programa por ID.
func (r *ProgramRepo) GetByID(ctx context.Context, id string) (*entity.Program, error) {
	return r.get(ctx, `id = $1`, id)
}

// EnsureExists inserta el programa si el código no existe (idempotente) y deja en p el ID persistido.
func (r *ProgramRepo) EnsureExists(ctx context.Context, p *entity.Program) error {
	query := `
		INSERT INTO programs (id, code, name, description, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, p.ID, p.Code, p.Name, p.Description, p.Active); err != nil {
		return mapPostgresError("upsert program", err)
	}
	existing, err := r.GetByCode(ctx, p.Code)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("upsert program: %s no quedó persistido", p.Code)
	}
	*p = *existing
	return nil
}
