package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/webhooks"
)

// WebhookHandler callbacks de laboratorio, telemedicina y farmacia.
type WebhookHandler struct {
	uc *webhooks.WebhookUseCase
}

// NewWebhookHandler construye el handler.
func NewWebhookHandler(uc *webhooks.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{uc: uc}
}

// handle parsea el cuerpo en T y delega en fn.
func handle[T any](c *fiber.Ctx, fn func(*fiber.Ctx, T) (*dto.WebhookAck, error)) error {
	var in T
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := fn(c, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LabResults godoc
// @Summary      Resultado de laboratorio
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Webhook-Signature  header  string                 false  "HMAC-SHA256 hex del cuerpo"
// @Param        body                 body    dto.LabResultWebhook  true   "kit_identifier, result_data"
// @Success      200  {object}  dto.WebhookAck
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/webhooks/lab-results [post]
func (h *WebhookHandler) LabResults(c *fiber.Ctx) error {
	return handle(c, func(c *fiber.Ctx, in dto.LabResultWebhook) (*dto.WebhookAck, error) {
		return h.uc.LabResult(c.UserContext(), in)
	})
}

// LabKits godoc
// @Summary      Cambio de estado de un kit
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LabKitStatusWebhook  true  "kit_identifier, status"
// @Success      200  {object}  dto.WebhookAck
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/webhooks/lab-kits [post]
func (h *WebhookHandler) LabKits(c *fiber.Ctx) error {
	return handle(c, func(c *fiber.Ctx, in dto.LabKitStatusWebhook) (*dto.WebhookAck, error) {
		return h.uc.LabKitStatus(c.UserContext(), in)
	})
}

// Telehealth godoc
// @Summary      Decisión de telemedicina
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TelehealthWebhook  true  "revisión y receta opcional"
// @Success      200  {object}  dto.WebhookAck
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/webhooks/telehealth [post]
func (h *WebhookHandler) Telehealth(c *fiber.Ctx) error {
	return handle(c, func(c *fiber.Ctx, in dto.TelehealthWebhook) (*dto.WebhookAck, error) {
		return h.uc.TelehealthReview(c.UserContext(), in)
	})
}

// Pharmacy godoc
// @Summary      Actualización de farmacia
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PharmacyWebhook  true  "estado y envío"
// @Success      200  {object}  dto.WebhookAck
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/webhooks/pharmacy [post]
func (h *WebhookHandler) Pharmacy(c *fiber.Ctx) error {
	return handle(c, func(c *fiber.Ctx, in dto.PharmacyWebhook) (*dto.WebhookAck, error) {
		return h.uc.PharmacyUpdate(c.UserContext(), in)
	})
}
