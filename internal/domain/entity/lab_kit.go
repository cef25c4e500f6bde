package entity

import "time"

// Estados de LabKit, en orden de avance.
const (
	KitStatusOrdered   = "ordered"
	KitStatusShipped   = "shipped"
	KitStatusDelivered = "delivered"
	KitStatusProcessed = "processed"
)

var kitStatusRank = map[string]int{
	KitStatusOrdered:   0,
	KitStatusShipped:   1,
	KitStatusDelivered: 2,
	KitStatusProcessed: 3,
}

// LabKit es el kit de laboratorio físico que se ordena al canjear un código.
type LabKit struct {
	ID            string
	UserID        string
	KitIdentifier string
	Status        string
	OrderedAt     time.Time
	ShippedAt     *time.Time
	DeliveredAt   *time.Time
	ProcessedAt   *time.Time
}

// CanTransitionKit permite solo avanzar (se puede saltar estados, p. ej. ordered -> processed).
func CanTransitionKit(from, to string) bool {
	f, ok1 := kitStatusRank[from]
	t, ok2 := kitStatusRank[to]
	return ok1 && ok2 && t > f
}

// LabResult guarda el resultado opaco reportado por el laboratorio.
type LabResult struct {
	ID         string
	UserID     string
	KitID      string
	ResultData []byte // JSON
	ReceivedAt time.Time
}
