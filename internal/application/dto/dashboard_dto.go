package dto

import "time"

// EmployeeResponse empleado inscrito en el listado del portal.
type EmployeeResponse struct {
	ID             string     `json:"user_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Address        string     `json:"address,omitempty"`
	EmedIdentifier string     `json:"emed_identifier"`
	Status         string     `json:"status"`
	EnrollmentDate time.Time  `json:"enrollment_date"`
}

// MetricsResponse tablero de la empresa.
type MetricsResponse struct {
	CompanyID          string `json:"company_id"`
	TotalEmployees     int    `json:"total_employees"`
	TotalEnrolled      int    `json:"total_enrolled"`
	ActiveUsers        int    `json:"active_users"`
	KitsShipped        int    `json:"kits_shipped"`
	KitsProcessed      int    `json:"kits_processed"`
	TotalPrescriptions int    `json:"total_prescriptions"`
}

// EmployeeListResponse página del listado de empleados.
type EmployeeListResponse struct {
	Items []EmployeeResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
