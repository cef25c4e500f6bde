package entity

import "time"

// Company representa una empresa cliente (tenant) que inscribe a sus empleados en un programa.
type Company struct {
	ID        string
	Name      string
	Address   string
	Industry  string
	Size      string // rango de empleados, ver constantes Size*
	CreatedAt time.Time
}

// Rangos de tamaño aceptados (deben coincidir con el CHECK de la tabla companies).
const (
	Size1To50     = "1-50"
	Size51To200   = "51-200"
	Size201To500  = "201-500"
	Size501To1000 = "501-1000"
	Size1001Plus  = "1001+"
)

// ValidSize informa si s es un rango conocido. Vacío se acepta (dato opcional).
func ValidSize(s string) bool {
	switch s {
	case "", Size1To50, Size51To200, Size201To500, Size501To1000, Size1001Plus:
		return true
	}
	return false
}

// ApproxEmployees convierte el rango de tamaño en un número aproximado de empleados
// para el tablero de métricas.
func (c *Company) ApproxEmployees() int {
	switch c.Size {
	case Size1To50:
		return 50
	case Size51To200:
		return 200
	case Size201To500:
		return 500
	case Size501To1000:
		return 1000
	case Size1001Plus:
		return 2000
	default:
		return 100
	}
}
