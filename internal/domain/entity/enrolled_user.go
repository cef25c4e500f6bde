package entity

import "time"

// Estados de EnrolledUser.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// EnrolledUser es el empleado inscrito; se crea exactamente una vez por código canjeado.
type EnrolledUser struct {
	ID               string
	CompanyID        string
	ProgramID        string
	EnrollmentCodeID string
	Name             string
	Email            string
	Phone            string
	DateOfBirth      *time.Time
	Address          string
	EmedIdentifier   string
	Status           string
	EnrollmentDate   time.Time
}

// ValidUserStatus informa si s es un estado conocido.
func ValidUserStatus(s string) bool {
	return s == UserStatusActive || s == UserStatusInactive
}
