package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/ports"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
	"github.com/jhoicas/emed-onboarding/pkg/identifier"
)

// Tipos de webhook (etiqueta de métricas).
const (
	KindLabResult  = "lab_result"
	KindLabKit     = "lab_kit"
	KindTelehealth = "telehealth"
	KindPharmacy   = "pharmacy"
)

// WebhookUseCase ingesta de eventos de laboratorio, telemedicina y farmacia.
type WebhookUseCase struct {
	txRunner TxRunner
	ids      *identifier.Generator
	metrics  ports.Metrics
	now      func() time.Time
}

// NewWebhookUseCase construye el caso de uso.
func NewWebhookUseCase(txRunner TxRunner, ids *identifier.Generator, metrics ports.Metrics) *WebhookUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &WebhookUseCase{txRunner: txRunner, ids: ids, metrics: metrics, now: time.Now}
}

func (uc *WebhookUseCase) record(kind string, err error) {
	switch {
	case err == nil:
		uc.metrics.WebhookResult(kind, ports.ResultOK)
	case domain.IsClientError(err):
		uc.metrics.WebhookResult(kind, ports.ResultRejected)
	default:
		uc.metrics.WebhookResult(kind, ports.ResultError)
	}
}

// LabResult registra el resultado y deja el kit en processed en la misma transacción.
// processed_at se fija solo la primera vez; resultados posteriores se agregan.
func (uc *WebhookUseCase) LabResult(ctx context.Context, in dto.LabResultWebhook) (ack *dto.WebhookAck, err error) {
	defer func() { uc.record(KindLabResult, err) }()

	in.KitIdentifier = strings.TrimSpace(in.KitIdentifier)
	if in.KitIdentifier == "" {
		return nil, domain.Invalid("kit_identifier", "required")
	}
	data := []byte(in.ResultData)
	if len(data) == 0 || string(data) == "null" {
		data = []byte("{}")
	}
	if !json.Valid(data) {
		return nil, domain.Invalid("result_data", "json")
	}

	now := uc.now()
	result := &entity.LabResult{ID: uuid.New().String(), ResultData: data, ReceivedAt: now}
	err = uc.txRunner.RunWebhooks(ctx, func(
		kitRepo repository.LabKitRepository,
		resultRepo repository.LabResultRepository,
		_ repository.EnrolledUserRepository,
		_ repository.TelehealthReviewRepository,
		_ repository.PrescriptionRepository,
		_ repository.ShipmentRepository,
	) error {
		kit, err := kitRepo.GetByIdentifierForUpdate(ctx, in.KitIdentifier)
		if err != nil {
			return err
		}
		if kit == nil {
			return domain.ErrNotFound
		}
		if kit.Status != entity.KitStatusProcessed {
			kit.Status = entity.KitStatusProcessed
			kit.ProcessedAt = &now
			if err := kitRepo.UpdateStatus(ctx, kit); err != nil {
				return err
			}
		}
		result.UserID = kit.UserID
		result.KitID = kit.ID
		return resultRepo.Create(ctx, result)
	})
	if err != nil {
		return nil, err
	}
	return &dto.WebhookAck{Success: true, LabResultID: result.ID, KitStatus: entity.KitStatusProcessed}, nil
}

// LabKitStatus avanza el kit a shipped o delivered. Retroceder devuelve ErrConflict;
// repetir el estado actual es idempotente.
func (uc *WebhookUseCase) LabKitStatus(ctx context.Context, in dto.LabKitStatusWebhook) (ack *dto.WebhookAck, err error) {
	defer func() { uc.record(KindLabKit, err) }()

	in.KitIdentifier = strings.TrimSpace(in.KitIdentifier)
	if in.KitIdentifier == "" {
		return nil, domain.Invalid("kit_identifier", "required")
	}
	if in.Status != entity.KitStatusShipped && in.Status != entity.KitStatusDelivered {
		return nil, domain.Invalid("status", "oneof=shipped delivered")
	}

	now := uc.now()
	err = uc.txRunner.RunWebhooks(ctx, func(
		kitRepo repository.LabKitRepository,
		_ repository.LabResultRepository,
		_ repository.EnrolledUserRepository,
		_ repository.TelehealthReviewRepository,
		_ repository.PrescriptionRepository,
		_ repository.ShipmentRepository,
	) error {
		kit, err := kitRepo.GetByIdentifierForUpdate(ctx, in.KitIdentifier)
		if err != nil {
			return err
		}
		if kit == nil {
			return domain.ErrNotFound
		}
		if kit.Status == in.Status {
			return nil
		}
		if !entity.CanTransitionKit(kit.Status, in.Status) {
			return fmt.Errorf("kit %s: %s -> %s: %w", kit.KitIdentifier, kit.Status, in.Status, domain.ErrConflict)
		}
		kit.Status = in.Status
		switch in.Status {
		case entity.KitStatusShipped:
			kit.ShippedAt = &now
		case entity.KitStatusDelivered:
			kit.DeliveredAt = &now
		}
		return kitRepo.UpdateStatus(ctx, kit)
	})
	if err != nil {
		return nil, err
	}
	return &dto.WebhookAck{Success: true, KitStatus: in.Status}, nil
}

// TelehealthReview registra la decisión clínica. Solo una revisión aprobada con datos de receta
// crea la Prescription (estado pending) en la misma transacción.
func (uc *WebhookUseCase) TelehealthReview(ctx context.Context, in dto.TelehealthWebhook) (ack *dto.WebhookAck, err error) {
	defer func() { uc.record(KindTelehealth, err) }()

	in.EmedIdentifier = strings.TrimSpace(in.EmedIdentifier)
	if in.EmedIdentifier == "" {
		return nil, domain.Invalid("emed_identifier", "required")
	}
	if !entity.ValidDecision(in.Decision) {
		return nil, domain.Invalid("decision", "oneof=approved denied needs_info")
	}
	withRx := in.Decision == entity.DecisionApproved && in.Prescription != nil
	if withRx {
		if strings.TrimSpace(in.Prescription.Medication) == "" {
			return nil, domain.Invalid("prescription.medication", "required")
		}
		if in.Prescription.DosageMg.IsNegative() {
			return nil, domain.Invalid("prescription.dosage_mg", "min=0")
		}
		if in.Prescription.Refills < 0 {
			return nil, domain.Invalid("prescription.refills", "min=0")
		}
	}

	for attempt := 0; attempt < 2; attempt++ {
		ack, err = uc.telehealthOnce(ctx, in, withRx)
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	return ack, err
}

func (uc *WebhookUseCase) telehealthOnce(ctx context.Context, in dto.TelehealthWebhook, withRx bool) (*dto.WebhookAck, error) {
	now := uc.now()
	review := &entity.TelehealthReview{
		ID:           uuid.New().String(),
		Decision:     in.Decision,
		ReviewerName: in.ReviewerName,
		Notes:        in.Notes,
		ReviewedAt:   now,
	}
	var rx *entity.Prescription

	err := uc.txRunner.RunWebhooks(ctx, func(
		_ repository.LabKitRepository,
		_ repository.LabResultRepository,
		userRepo repository.EnrolledUserRepository,
		reviewRepo repository.TelehealthReviewRepository,
		rxRepo repository.PrescriptionRepository,
		_ repository.ShipmentRepository,
	) error {
		user, err := userRepo.GetByEmedIdentifier(ctx, in.EmedIdentifier)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrNotFound
		}
		review.UserID = user.ID
		if err := reviewRepo.Create(ctx, review); err != nil {
			return err
		}
		if !withRx {
			return nil
		}
		rxID, err := uc.ids.RxIdentifier(user.CompanyID, user.ID)
		if err != nil {
			return err
		}
		p := in.Prescription
		rx = &entity.Prescription{
			ID:           uuid.New().String(),
			UserID:       user.ID,
			ReviewID:     review.ID,
			RxIdentifier: rxID,
			Medication:   strings.TrimSpace(p.Medication),
			DosageMg:     p.DosageMg,
			Frequency:    p.Frequency,
			Instructions: p.Instructions,
			Refills:      p.Refills,
			Status:       entity.RxStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return rxRepo.Create(ctx, rx)
	})
	if err != nil {
		return nil, err
	}
	ack := &dto.WebhookAck{Success: true, ReviewID: review.ID}
	if rx != nil {
		ack.RxIdentifier = rx.RxIdentifier
		ack.PrescriptionStatus = rx.Status
	}
	return ack, nil
}

// PharmacyUpdate actualiza el estado de la receta; con shipped y número de guía registra el Shipment.
func (uc *WebhookUseCase) PharmacyUpdate(ctx context.Context, in dto.PharmacyWebhook) (ack *dto.WebhookAck, err error) {
	defer func() { uc.record(KindPharmacy, err) }()

	in.RxIdentifier = strings.TrimSpace(in.RxIdentifier)
	in.TrackingNumber = strings.TrimSpace(in.TrackingNumber)
	if in.RxIdentifier == "" {
		return nil, domain.Invalid("rx_identifier", "required")
	}
	if !entity.ValidRxStatus(in.Status) {
		return nil, domain.Invalid("status", "oneof=pending processing shipped delivered cancelled")
	}

	now := uc.now()
	var shipment *entity.Shipment
	err = uc.txRunner.RunWebhooks(ctx, func(
		_ repository.LabKitRepository,
		_ repository.LabResultRepository,
		_ repository.EnrolledUserRepository,
		_ repository.TelehealthReviewRepository,
		rxRepo repository.PrescriptionRepository,
		shipmentRepo repository.ShipmentRepository,
	) error {
		rx, err := rxRepo.GetByRxIdentifierForUpdate(ctx, in.RxIdentifier)
		if err != nil {
			return err
		}
		if rx == nil {
			return domain.ErrNotFound
		}
		rx.Status = in.Status
		rx.UpdatedAt = now
		if err := rxRepo.UpdateStatus(ctx, rx); err != nil {
			return err
		}
		if in.Status != entity.RxStatusShipped || in.TrackingNumber == "" {
			return nil
		}
		shipment = &entity.Shipment{
			ID:                uuid.New().String(),
			PrescriptionID:    rx.ID,
			Carrier:           in.Carrier,
			TrackingNumber:    in.TrackingNumber,
			ShippedAt:         now,
			EstimatedDelivery: in.EstimatedDelivery,
		}
		return shipmentRepo.Create(ctx, shipment)
	})
	if err != nil {
		return nil, err
	}
	ack = &dto.WebhookAck{Success: true, RxIdentifier: in.RxIdentifier, PrescriptionStatus: in.Status}
	if shipment != nil {
		ack.ShipmentID = shipment.ID
	}
	return ack, nil
}
