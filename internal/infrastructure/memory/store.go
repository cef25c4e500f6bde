// Package memory implementa los puertos de persistencia en memoria con la misma semántica
// transaccional y de unicidad que PostgreSQL. Se usa en tests y con STORE_DRIVER=memory.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
)

// tables contiene una instantánea de todas las filas.
type tables struct {
	companies map[string]entity.Company
	admins    map[string]entity.Admin
	programs  map[string]entity.Program
	batches   map[string]entity.CodeBatch
	codes     map[string]entity.EnrollmentCode
	users     map[string]entity.EnrolledUser
	kits      map[string]entity.LabKit
	results   map[string]entity.LabResult
	reviews   map[string]entity.TelehealthReview
	rxs       map[string]entity.Prescription
	shipments map[string]entity.Shipment
}

func newTables() *tables {
	return &tables{
		companies: make(map[string]entity.Company),
		admins:    make(map[string]entity.Admin),
		programs:  make(map[string]entity.Program),
		batches:   make(map[string]entity.CodeBatch),
		codes:     make(map[string]entity.EnrollmentCode),
		users:     make(map[string]entity.EnrolledUser),
		kits:      make(map[string]entity.LabKit),
		results:   make(map[string]entity.LabResult),
		reviews:   make(map[string]entity.TelehealthReview),
		rxs:       make(map[string]entity.Prescription),
		shipments: make(map[string]entity.Shipment),
	}
}

func (t *tables) clone() *tables {
	return &tables{
		companies: maps.Clone(t.companies),
		admins:    maps.Clone(t.admins),
		programs:  maps.Clone(t.programs),
		batches:   maps.Clone(t.batches),
		codes:     maps.Clone(t.codes),
		users:     maps.Clone(t.users),
		kits:      maps.Clone(t.kits),
		results:   maps.Clone(t.results),
		reviews:   maps.Clone(t.reviews),
		rxs:       maps.Clone(t.rxs),
		shipments: maps.Clone(t.shipments),
	}
}

// Store base de datos en memoria. Las transacciones se serializan con mu: trabajan sobre
// una copia y solo la publican si fn no devuelve error, lo que equivale a bloquear las filas
// leídas "FOR UPDATE".
type Store struct {
	mu   sync.Mutex
	data *tables
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newTables()}
}

// view ejecuta fn sobre las tablas de la tx si existe, o sobre los datos publicados bajo el lock.
func (s *Store) view(tx *tables, fn func(t *tables) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// inTx abre una transacción: copia, ejecuta y publica la copia solo si todo salió bien.
func (s *Store) inTx(ctx context.Context, fn func(t *tables) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.data.clone()
	if err := fn(work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Repositorios sobre los datos publicados (fuera de transacción).

func (s *Store) Companies() *CompanyRepo { return &CompanyRepo{s: s} }
func (s *Store) Admins() *AdminRepo { return &AdminRepo{s: s} }
func (s *Store) Programs() *ProgramRepo { return &ProgramRepo{s: s} }
func (s *Store) Batches() *CodeBatchRepo { return &CodeBatchRepo{s: s} }
func (s *Store) Codes() *EnrollmentCodeRepo { return &EnrollmentCodeRepo{s: s} }
func (s *Store) Users() *EnrolledUserRepo { return &EnrolledUserRepo{s: s} }
func (s *Store) Kits() *LabKitRepo { return &LabKitRepo{s: s} }
func (s *Store) Results() *LabResultRepo { return &LabResultRepo{s: s} }
func (s *Store) Reviews() *TelehealthReviewRepo { return &TelehealthReviewRepo{s: s} }
func (s *Store) Prescriptions() *PrescriptionRepo { return &PrescriptionRepo{s: s} }
func (s *Store) Shipments() *ShipmentRepo { return &ShipmentRepo{s: s} }
func (s *Store) Metrics() *MetricsRepo { return &MetricsRepo{s: s} }
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }
