package dto

import "time"

// RedeemRequest entrada de POST /api/enroll.
type RedeemRequest struct {
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"` // YYYY-MM-DD
	Address     string `json:"address"`
}

// RedeemResponse empleado recién inscrito.
type RedeemResponse struct {
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	EmedIdentifier string    `json:"emed_identifier"`
}
