package entity

import "time"

// CodeBatch agrupa los códigos emitidos juntos por un administrador.
type CodeBatch struct {
	ID        string
	CompanyID string
	ProgramID string
	Quantity  int
	Notes     string
	CreatedBy string
	CreatedAt time.Time
}

// CodeBatchSummary es la vista de lectura de un lote con conteos por estado.
type CodeBatchSummary struct {
	CodeBatch
	ActiveCount   int
	UsedCount     int
	ExpiredCount  int
	CreatedByName string
}
