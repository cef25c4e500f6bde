package dto

import "time"

// AdminUserRequest datos del primer administrador del portal.
type AdminUserRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	Title string `json:"title"`
}

// ProvisionRequest entrada de POST /api/companies/provision.
type ProvisionRequest struct {
	CompanyName string           `json:"companyName" validate:"required,min=1,max=200"`
	Address     string           `json:"address"`
	Industry    string           `json:"industry"`
	Size        string           `json:"size" validate:"omitempty,oneof=1-50 51-200 201-500 501-1000 1001+"`
	AdminUser   AdminUserRequest `json:"adminUser"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Industry  string    `json:"industry,omitempty"`
	Size      string    `json:"size,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CredentialsResponse credenciales temporales; se muestran una sola vez.
type CredentialsResponse struct {
	Email        string `json:"email"`
	TempPassword string `json:"tempPassword"`
}

// ProvisionResponse salida del aprovisionamiento (sin hash de contraseña).
type ProvisionResponse struct {
	Company     CompanyResponse     `json:"company"`
	Admin       AdminResponse       `json:"admin"`
	Credentials CredentialsResponse `json:"credentials"`
	PortalURL   string              `json:"portalUrl"`
}
