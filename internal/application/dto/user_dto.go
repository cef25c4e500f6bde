package dto

import "time"

// AdminResponse salida de un administrador (sin password).
type AdminResponse struct {
	ID        string     `json:"id"`
	CompanyID string     `json:"company_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Title     string     `json:"title,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token   string          `json:"token"`
	Admin   AdminResponse   `json:"admin"`
	Company CompanyResponse `json:"company"`
}
