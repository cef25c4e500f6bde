package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// LabResultResponse resultado tal como lo reportó el laboratorio.
type LabResultResponse struct {
	ID         string          `json:"id"`
	ResultData json.RawMessage `json:"result_data"`
	ReceivedAt time.Time       `json:"received_at"`
}

// LabKitResponse kit con su historial de estados y resultados.
type LabKitResponse struct {
	KitIdentifier string              `json:"kit_identifier"`
	Status        string              `json:"status"`
	OrderedAt     time.Time           `json:"ordered_at"`
	ShippedAt     *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt   *time.Time          `json:"delivered_at,omitempty"`
	ProcessedAt   *time.Time          `json:"processed_at,omitempty"`
	Results       []LabResultResponse `json:"results"`
}

// TelehealthReviewResponse decisión clínica.
type TelehealthReviewResponse struct {
	ID           string    `json:"id"`
	Decision     string    `json:"decision"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

// ShipmentResponse envío de farmacia.
type ShipmentResponse struct {
	ID                string     `json:"id"`
	Carrier           string     `json:"carrier,omitempty"`
	TrackingNumber    string     `json:"tracking_number"`
	ShippedAt         time.Time  `json:"shipped_at"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

// PrescriptionResponse receta con sus envíos.
type PrescriptionResponse struct {
	RxIdentifier string             `json:"rx_identifier"`
	ReviewID     string             `json:"review_id"`
	Medication   string             `json:"medication"`
	DosageMg     decimal.Decimal    `json:"dosage_mg"`
	Frequency    string             `json:"frequency,omitempty"`
	Instructions string             `json:"instructions,omitempty"`
	Refills      int                `json:"refills"`
	Status       string             `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Shipments    []ShipmentResponse `json:"shipments"`
}

// EmployeeDetailResponse ficha del empleado con su recorrido de atención.
type EmployeeDetailResponse struct {
	Employee      EmployeeResponse           `json:"employee"`
	Kits          []LabKitResponse           `json:"kits"`
	Reviews       []TelehealthReviewResponse `json:"reviews"`
	Prescriptions []PrescriptionResponse     `json:"prescriptions"`
}
