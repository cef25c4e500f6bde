package webhooks_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/ports"
	"github.com/jhoicas/emed-onboarding/internal/application/webhooks"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/memory"
	"github.com/jhoicas/emed-onboarding/pkg/identifier"
)

var errStorage = errors.New("almacenamiento no disponible")

type failingResults struct{ repository.LabResultRepository }

func (failingResults) Create(context.Context, *entity.LabResult) error { return errStorage }

type failingPrescriptions struct{ repository.PrescriptionRepository }

func (failingPrescriptions) Create(context.Context, *entity.Prescription) error { return errStorage }

type failingShipments struct{ repository.ShipmentRepository }

func (failingShipments) Create(context.Context, *entity.Shipment) error { return errStorage }

// failingTx sustituye dentro de la transacción los repos marcados por versiones que fallan al insertar.
type failingTx struct {
	*memory.TxRunner
	results, prescriptions, shipments bool
}

func (f *failingTx) RunWebhooks(ctx context.Context, fn func(
	repository.LabKitRepository,
	repository.LabResultRepository,
	repository.EnrolledUserRepository,
	repository.TelehealthReviewRepository,
	repository.PrescriptionRepository,
	repository.ShipmentRepository,
) error) error {
	return f.TxRunner.RunWebhooks(ctx, func(
		kitRepo repository.LabKitRepository,
		resultRepo repository.LabResultRepository,
		userRepo repository.EnrolledUserRepository,
		reviewRepo repository.TelehealthReviewRepository,
		rxRepo repository.PrescriptionRepository,
		shipmentRepo repository.ShipmentRepository,
	) error {
		if f.results {
			resultRepo = failingResults{resultRepo}
		}
		if f.prescriptions {
			rxRepo = failingPrescriptions{rxRepo}
		}
		if f.shipments {
			shipmentRepo = failingShipments{shipmentRepo}
		}
		return fn(kitRepo, resultRepo, userRepo, reviewRepo, rxRepo, shipmentRepo)
	})
}

func (f *fixture) withTx(tx webhooks.TxRunner, ids *identifier.Generator) *webhooks.WebhookUseCase {
	return webhooks.NewWebhookUseCase(tx, ids, f.metrics)
}

func TestLabResult_FailureLeavesKitOrdered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := f.withTx(&failingTx{TxRunner: f.store.TxRunner(), results: true}, identifier.NewGenerator())

	_, err := uc.LabResult(ctx, dto.LabResultWebhook{KitIdentifier: kitID, ResultData: json.RawMessage(`{"a1c":6.1}`)})
	require.ErrorIs(t, err, errStorage)

	k := f.kit(t)
	assert.Equal(t, entity.KitStatusOrdered, k.Status)
	assert.Nil(t, k.ProcessedAt)

	results, err := f.store.Results().ListByKit(ctx, "kit-1")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, [2]string{webhooks.KindLabResult, ports.ResultError}, f.metrics.calls[0])
}

func TestTelehealthReview_PrescriptionFailureDropsReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := f.withTx(&failingTx{TxRunner: f.store.TxRunner(), prescriptions: true}, identifier.NewGenerator())

	_, err := uc.TelehealthReview(ctx, dto.TelehealthWebhook{
		EmedIdentifier: emedID,
		Decision:       entity.DecisionApproved,
		Prescription:   &dto.PrescriptionDetails{Medication: "Semaglutide", DosageMg: decimal.NewFromInt(1)},
	})
	require.ErrorIs(t, err, errStorage)

	reviews, err := f.store.Reviews().ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, reviews)
	rxs, err := f.store.Prescriptions().ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, rxs)
}

func TestPharmacyUpdate_ShipmentFailureKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rxID := newPrescription(t, f)
	uc := f.withTx(&failingTx{TxRunner: f.store.TxRunner(), shipments: true}, identifier.NewGenerator())

	_, err := uc.PharmacyUpdate(ctx, dto.PharmacyWebhook{
		RxIdentifier:   rxID,
		Status:         entity.RxStatusShipped,
		Carrier:        "UPS",
		TrackingNumber: "1Z999",
	})
	require.ErrorIs(t, err, errStorage)

	rxs, err := f.store.Prescriptions().ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, rxs, 1)
	assert.Equal(t, entity.RxStatusPending, rxs[0].Status)

	shipments, err := f.store.Shipments().ListByPrescription(ctx, rxs[0].ID)
	require.NoError(t, err)
	assert.Empty(t, shipments)
}

// seedPrescription ocupa el RX que el generador determinista produce primero (sufijo AAAA).
func seedPrescription(t *testing.T, st *memory.Store) {
	t.Helper()
	require.NoError(t, st.Prescriptions().Create(context.Background(), &entity.Prescription{
		ID:           "rx-existing",
		UserID:       "user-1",
		ReviewID:     "review-existing",
		RxIdentifier: "RX-company-1-user-1-AAAA",
		Medication:   "Semaglutide",
		Status:       entity.RxStatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}))
}

func approvedReview() dto.TelehealthWebhook {
	return dto.TelehealthWebhook{
		EmedIdentifier: emedID,
		Decision:       entity.DecisionApproved,
		Prescription:   &dto.PrescriptionDetails{Medication: "Tirzepatide", DosageMg: decimal.NewFromFloat(2.5)},
	}
}

func TestTelehealthReview_RxCollisionRetriesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedPrescription(t, f.store)

	// intento 1: AAAA (ocupado); intento 2: BBBB
	src := bytes.NewReader(append(bytes.Repeat([]byte{10}, 4), bytes.Repeat([]byte{11}, 4)...))
	uc := f.withTx(f.store.TxRunner(), identifier.NewGeneratorFrom(src))

	ack, err := uc.TelehealthReview(ctx, approvedReview())
	require.NoError(t, err)
	assert.Equal(t, "RX-company-1-user-1-BBBB", ack.RxIdentifier)

	reviews, err := f.store.Reviews().ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, reviews, 1, "la revisión del intento fallido se revierte")
	assert.Equal(t, ack.ReviewID, reviews[0].ID)
}

func TestTelehealthReview_RxCollisionTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedPrescription(t, f.store)

	src := bytes.NewReader(bytes.Repeat([]byte{10}, 8))
	uc := f.withTx(f.store.TxRunner(), identifier.NewGeneratorFrom(src))

	_, err := uc.TelehealthReview(ctx, approvedReview())
	require.ErrorIs(t, err, domain.ErrConflict)

	reviews, err := f.store.Reviews().ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
