package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/employees"
	"github.com/jhoicas/emed-onboarding/internal/domain"
)

// EmployeeHandler listado, ficha, baja y tablero de empleados inscritos.
type EmployeeHandler struct {
	uc *employees.EmployeeUseCase
}

// NewEmployeeHandler construye el handler.
func NewEmployeeHandler(uc *employees.EmployeeUseCase) *EmployeeHandler {
	return &EmployeeHandler{uc: uc}
}

// List godoc
// @Summary      Listar empleados inscritos
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "active | inactive"
// @Param        search  query  string  false  "Nombre o email"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.EmployeeListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/employees [get]
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("status"), c.Query("search"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Detail godoc
// @Summary      Ficha del empleado con kits, revisiones y recetas
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  string  true  "ID del empleado"
// @Success      200     {object}  dto.EmployeeDetailResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/employees/{userId} [get]
func (h *EmployeeHandler) Detail(c *fiber.Ctx) error {
	userID, ok := pathUUID(c, "userId")
	if !ok {
		return writeError(c, domain.ErrNotFound)
	}
	out, err := h.uc.Detail(c.UserContext(), GetCompanyID(c), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar un empleado
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  string  true  "ID del empleado"
// @Success      200     {object}  dto.EmployeeResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/employees/{userId}/deactivate [put]
func (h *EmployeeHandler) Deactivate(c *fiber.Ctx) error {
	userID, ok := pathUUID(c, "userId")
	if !ok {
		return writeError(c, domain.ErrNotFound)
	}
	out, err := h.uc.Deactivate(c.UserContext(), GetCompanyID(c), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Metrics godoc
// @Summary      Tablero de la empresa
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MetricsResponse
// @Router       /api/metrics [get]
func (h *EmployeeHandler) Metrics(c *fiber.Ctx) error {
	out, err := h.uc.Metrics(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
