package dto

import "time"

// IssueBatchRequest entrada de POST /api/codes/generate.
type IssueBatchRequest struct {
	Quantity      int    `json:"quantity" validate:"required,min=1"`
	Notes         string `json:"notes"`
	ExpiresInDays int    `json:"expires_in_days" validate:"min=0"` // 0 = sin vencimiento
}

// IssueBatchResponse lote creado con sus códigos en orden de emisión.
type IssueBatchResponse struct {
	BatchID   string     `json:"batch_id"`
	CompanyID string     `json:"company_id"`
	ProgramID string     `json:"program_id"`
	Quantity  int        `json:"quantity"`
	Codes     []string   `json:"codes"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// EnrollmentCodeResponse un código en listados.
type EnrollmentCodeResponse struct {
	ID           string     `json:"id"`
	Code         string     `json:"code"`
	BatchID      string     `json:"batch_id"`
	ProgramID    string     `json:"program_id"`
	Status       string     `json:"status"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	UsedByUserID *string    `json:"used_by_user_id,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CodeBatchResponse un lote con conteos por estado.
type CodeBatchResponse struct {
	ID            string    `json:"batch_id"`
	ProgramID     string    `json:"program_id"`
	Quantity      int       `json:"quantity"`
	Notes         string    `json:"notes"`
	CreatedBy     string    `json:"created_by"`
	CreatedByName string    `json:"created_by_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	ActiveCount   int       `json:"active_count"`
	UsedCount     int       `json:"used_count"`
	ExpiredCount  int       `json:"expired_count"`
}

// ValidateCodeRequest entrada de POST /api/codes/validate.
type ValidateCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// ProgramResponse programa asociado a un código.
type ProgramResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ValidateCodeResponse respuesta de un código válido.
type ValidateCodeResponse struct {
	Valid   bool            `json:"valid"`
	Company CompanyResponse `json:"company"`
	Program ProgramResponse `json:"program"`
}
