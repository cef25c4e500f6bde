package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// LabResultWebhook cuerpo de POST /api/webhooks/lab-results.
type LabResultWebhook struct {
	KitIdentifier string          `json:"kit_identifier"`
	ResultData    json.RawMessage `json:"result_data"`
}

// LabKitStatusWebhook cuerpo de POST /api/webhooks/lab-kits.
type LabKitStatusWebhook struct {
	KitIdentifier string `json:"kit_identifier"`
	Status        string `json:"status"` // shipped | delivered
}

// PrescriptionDetails receta propuesta por una revisión aprobada.
type PrescriptionDetails struct {
	Medication   string          `json:"medication"`
	DosageMg     decimal.Decimal `json:"dosage_mg"`
	Frequency    string          `json:"frequency"`
	Instructions string          `json:"instructions"`
	Refills      int             `json:"refills"`
}

// TelehealthWebhook cuerpo de POST /api/webhooks/telehealth.
type TelehealthWebhook struct {
	EmedIdentifier string               `json:"emed_identifier"`
	Decision       string               `json:"decision"`
	ReviewerName   string               `json:"reviewer_name"`
	Notes          string               `json:"notes"`
	Prescription   *PrescriptionDetails `json:"prescription,omitempty"`
}

// PharmacyWebhook cuerpo de POST /api/webhooks/pharmacy.
type PharmacyWebhook struct {
	RxIdentifier      string     `json:"rx_identifier"`
	Status            string     `json:"status"`
	Carrier           string     `json:"carrier"`
	TrackingNumber    string     `json:"tracking_number"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

// WebhookAck respuesta de los webhooks.
type WebhookAck struct {
	Success            bool   `json:"success"`
	LabResultID        string `json:"lab_result_id,omitempty"`
	KitStatus          string `json:"kit_status,omitempty"`
	ReviewID           string `json:"review_id,omitempty"`
	RxIdentifier       string `json:"rx_identifier,omitempty"`
	PrescriptionStatus string `json:"prescription_status,omitempty"`
	ShipmentID         string `json:"shipment_id,omitempty"`
}
