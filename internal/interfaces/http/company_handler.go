package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/provisioning"
)

// CompanyHandler aprovisionamiento de empresas cliente.
type CompanyHandler struct {
	uc *provisioning.ProvisionUseCase
}

// NewCompanyHandler construye el handler inyectando el caso de uso.
func NewCompanyHandler(uc *provisioning.ProvisionUseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// Provision godoc
// @Summary      Aprovisionar empresa y su admin inicial
// @Description  Crea la empresa y el admin con contraseña temporal en una sola transacción.
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProvisionRequest  true  "Empresa y admin"
// @Success      201   {object}  dto.ProvisionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/companies/provision [post]
func (h *CompanyHandler) Provision(c *fiber.Ctx) error {
	var in dto.ProvisionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Provision(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
