package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decisiones de la revisión de telemedicina.
const (
	DecisionApproved  = "approved"
	DecisionDenied    = "denied"
	DecisionNeedsInfo = "needs_info"
)

// ValidDecision informa si d es una decisión conocida.
func ValidDecision(d string) bool {
	return d == DecisionApproved || d == DecisionDenied || d == DecisionNeedsInfo
}

// TelehealthReview es la decisión clínica sobre un empleado inscrito.
type TelehealthReview struct {
	ID           string
	UserID       string
	Decision     string
	ReviewerName string
	Notes        string
	ReviewedAt   time.Time
}

// Estados de Prescription.
const (
	RxStatusPending    = "pending"
	RxStatusProcessing = "processing"
	RxStatusShipped    = "shipped"
	RxStatusDelivered  = "delivered"
	RxStatusCancelled  = "cancelled"
)

// ValidRxStatus informa si s es un estado conocido de receta.
func ValidRxStatus(s string) bool {
	switch s {
	case RxStatusPending, RxStatusProcessing, RxStatusShipped, RxStatusDelivered, RxStatusCancelled:
		return true
	}
	return false
}

// Prescription es la receta autorizada por una revisión aprobada.
type Prescription struct {
	ID           string
	UserID       string
	ReviewID     string
	RxIdentifier string
	Medication   string
	DosageMg     decimal.Decimal
	Frequency    string
	Instructions string
	Refills      int
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Shipment es el envío de la farmacia para una receta.
type Shipment struct {
	ID                string
	PrescriptionID    string
	Carrier           string
	TrackingNumber    string
	ShippedAt         time.Time
	EstimatedDelivery *time.Time
}
