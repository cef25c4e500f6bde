package entity

// ProgramGLP1 es el código del programa por defecto.
const ProgramGLP1 = "GLP1"

// Program es la oferta de medicación a la que se inscriben los empleados (fila de referencia).
type Program struct {
	ID          string
	Code        string
	Name        string
	Description string
	Active      bool
}
