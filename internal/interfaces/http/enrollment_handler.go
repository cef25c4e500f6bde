package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/enrollment"
)

// EnrollmentHandler endpoints públicos del empleado.
type EnrollmentHandler struct {
	uc *enrollment.EnrollmentUseCase
}

// NewEnrollmentHandler construye el handler.
func NewEnrollmentHandler(uc *enrollment.EnrollmentUseCase) *EnrollmentHandler {
	return &EnrollmentHandler{uc: uc}
}

// Validate godoc
// @Summary      Validar un código de inscripción
// @Description  No modifica el código salvo para marcarlo vencido.
// @Tags         enrollment
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateCodeRequest  true  "code"
// @Success      200   {object}  dto.ValidateCodeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/codes/validate [post]
func (h *EnrollmentHandler) Validate(c *fiber.Ctx) error {
	var in dto.ValidateCodeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ValidateCode(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Enroll godoc
// @Summary      Canjear un código e inscribir al empleado
// @Tags         enrollment
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RedeemRequest  true  "código y datos del empleado"
// @Success      201   {object}  dto.RedeemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/enroll [post]
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	var in dto.RedeemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Redeem(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
