package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

var (
	_ repository.CompanyRepository = (*CompanyRepo)(nil)
	_ repository.AdminRepository   = (*AdminRepo)(nil)
	_ repository.ProgramRepository = (*ProgramRepo)(nil)
)

// CompanyRepo empresas en memoria.
type CompanyRepo struct {
	s  *Store
	tx *tables
}

func (r *CompanyRepo) Create(_ context.Context, c *entity.Company) error {
	return r.s.view(r.tx, func(t *tables) error {
		if _, ok := t.companies[c.ID]; ok {
			return domain.ErrConflict
		}
		t.companies[c.ID] = *c
		return nil
	})
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	err := r.s.view(r.tx, func(t *tables) error {
		if c, ok := t.companies[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

// AdminRepo administradores en memoria; el email es único.
type AdminRepo struct {
	s  *Store
	tx *tables
}

func emailTaken(t *tables, email string) bool {
	for _, a := range t.admins {
		if strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}

func (r *AdminRepo) Create(_ context.Context, a *entity.Admin) error {
	return r.s.view(r.tx, func(t *tables) error {
		if _, ok := t.admins[a.ID]; ok {
			return domain.ErrConflict
		}
		if emailTaken(t, a.Email) {
			return domain.ErrEmailAlreadyExists
		}
		t.admins[a.ID] = *a
		return nil
	})
}

func (r *AdminRepo) GetByID(_ context.Context, id string) (*entity.Admin, error) {
	var out *entity.Admin
	err := r.s.view(r.tx, func(t *tables) error {
		if a, ok := t.admins[id]; ok {
			out = &a
		}
		return nil
	})
	return out, err
}

func (r *AdminRepo) GetActiveByEmail(_ context.Context, email string) (*entity.Admin, error) {
	var out *entity.Admin
	err := r.s.view(r.tx, func(t *tables) error {
		for _, a := range t.admins {
			if a.Active && strings.EqualFold(a.Email, email) {
				out = &a
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *AdminRepo) EmailExists(_ context.Context, email string) (bool, error) {
	var exists bool
	err := r.s.view(r.tx, func(t *tables) error {
		exists = emailTaken(t, email)
		return nil
	})
	return exists, err
}

func (r *AdminRepo) IsActiveAdmin(_ context.Context, adminID, companyID string) (bool, error) {
	var ok bool
	err := r.s.view(r.tx, func(t *tables) error {
		a, found := t.admins[adminID]
		ok = found && a.Active && a.CompanyID == companyID
		return nil
	})
	return ok, err
}

func (r *AdminRepo) TouchLastLogin(_ context.Context, adminID string, at time.Time) error {
	return r.s.view(r.tx, func(t *tables) error {
		a, ok := t.admins[adminID]
		if !ok {
			return domain.ErrNotFound
		}
		a.LastLogin = &at
		t.admins[adminID] = a
		return nil
	})
}

// SetActive activa o desactiva un admin (tests y herramientas).
func (r *AdminRepo) SetActive(_ context.Context, adminID string, active bool) error {
	return r.s.view(r.tx, func(t *tables) error {
		a, ok := t.admins[adminID]
		if !ok {
			return domain.ErrNotFound
		}
		a.Active = active
		t.admins[adminID] = a
		return nil
	})
}

// ProgramRepo programas en memoria; el código es único.
type ProgramRepo struct {
	s  *Store
	tx *tables
}

func (r *ProgramRepo) GetByCode(_ context.Context, code string) (*entity.Program, error) {
	var out *entity.Program
	err := r.s.view(r.tx, func(t *tables) error {
		for _, p := range t.programs {
			if p.Code == code {
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProgramRepo) GetByID(_ context.Context, id string) (*entity.Program, error) {
	var out *entity.Program
	err := r.s.view(r.tx, func(t *tables) error {
		if p, ok := t.programs[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// EnsureExists inserta el programa si su código no existe. Si ya existe, copia el ID real en p.
func (r *ProgramRepo) EnsureExists(_ context.Context, p *entity.Program) error {
	return r.s.view(r.tx, func(t *tables) error {
		for _, existing := range t.programs {
			if existing.Code == p.Code {
				p.ID = existing.ID
				return nil
			}
		}
		t.programs[p.ID] = *p
		return nil
	})
}

// sortByTimeDesc ordena por fecha descendente con desempate por id.
func sortByTimeDesc[T any](items []T, at func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		ti, tj := at(items[i]), at(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return id(items[i]) < id(items[j])
	})
}
