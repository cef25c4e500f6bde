package entity

import "time"

// RoleAdmin es el único rol del portal; viaja en el JWT.
const RoleAdmin = "admin"

// Admin representa un administrador del portal de una Company.
type Admin struct {
	ID           string
	CompanyID    string
	Name         string
	Email        string
	Title        string
	PasswordHash string // bcrypt, nunca la contraseña plana
	Active       bool
	LastLogin    *time.Time
	CreatedAt    time.Time
}
