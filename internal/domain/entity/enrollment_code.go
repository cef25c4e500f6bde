package entity

import "time"

// Estados de EnrollmentCode. active es el único estado no terminal.
const (
	CodeStatusActive  = "active"
	CodeStatusUsed    = "used"
	CodeStatusExpired = "expired"
)

// EnrollmentCode es un token de un solo uso que permite a un empleado inscribirse.
type EnrollmentCode struct {
	ID           string
	Code         string
	CompanyID    string
	ProgramID    string
	BatchID      string
	CreatedBy    string
	Status       string
	UsedAt       *time.Time
	UsedByUserID *string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
}

// ValidCodeStatus informa si s es un estado conocido.
func ValidCodeStatus(s string) bool {
	return s == CodeStatusActive || s == CodeStatusUsed || s == CodeStatusExpired
}

// CanTransitionCode aplica la máquina de estados: solo active -> used | expired.
func CanTransitionCode(from, to string) bool {
	return from == CodeStatusActive && (to == CodeStatusUsed || to == CodeStatusExpired)
}

// IsActive informa si el código sigue disponible.
func (c *EnrollmentCode) IsActive() bool { return c.Status == CodeStatusActive }

// IsExpiredAt informa si expires_at ya pasó en el instante now.
func (c *EnrollmentCode) IsExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}
