package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/emed-onboarding/internal/application/codes"
	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

// CodeHandler emisión y consulta de códigos del portal.
type CodeHandler struct {
	uc *codes.CodeUseCase
}

// NewCodeHandler construye el handler.
func NewCodeHandler(uc *codes.CodeUseCase) *CodeHandler {
	return &CodeHandler{uc: uc}
}

// Generate godoc
// @Summary      Emitir un lote de códigos
// @Tags         codes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.IssueBatchRequest  true  "quantity, notes, expires_in_days"
// @Success      201   {object}  dto.IssueBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/codes/generate [post]
func (h *CodeHandler) Generate(c *fiber.Ctx) error {
	var in dto.IssueBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.IssueBatch(c.UserContext(), GetCompanyID(c), GetAdminID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar códigos de la empresa
// @Tags         codes
// @Produce      json
// @Security     BearerAuth
// @Param        batch_id  query  string  false  "Filtrar por lote"
// @Param        status    query  string  false  "active | used | expired"
// @Success      200       {array}   dto.EnrollmentCodeResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/codes [get]
func (h *CodeHandler) List(c *fiber.Ctx) error {
	f := repository.CodeFilter{BatchID: c.Query("batch_id"), Status: c.Query("status")}
	if f.BatchID != "" {
		if _, err := uuid.Parse(f.BatchID); err != nil {
			return writeError(c, domain.Invalid("batch_id", "uuid"))
		}
	}
	out, err := h.uc.ListCodes(c.UserContext(), GetCompanyID(c), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListBatches godoc
// @Summary      Listar lotes con conteos por estado
// @Tags         codes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.CodeBatchResponse
// @Router       /api/code-batches [get]
func (h *CodeHandler) ListBatches(c *fiber.Ctx) error {
	out, err := h.uc.ListBatches(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExportCSV godoc
// @Summary      Exportar los códigos de un lote en CSV
// @Tags         codes
// @Produce      text/csv
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/code-batches/{id}/codes.csv [get]
func (h *CodeHandler) ExportCSV(c *fiber.Ctx) error {
	batchID, ok := pathUUID(c, "id")
	if !ok {
		return writeError(c, domain.ErrNotFound)
	}
	out, err := h.uc.ExportCSV(c.UserContext(), GetCompanyID(c), batchID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="codes-%s.csv"`, batchID))
	return c.Send(out)
}

// ExportPDF godoc
// @Summary      Hoja imprimible de un lote con QR por código
// @Tags         codes
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/code-batches/{id}/codes.pdf [get]
func (h *CodeHandler) ExportPDF(c *fiber.Ctx) error {
	batchID, ok := pathUUID(c, "id")
	if !ok {
		return writeError(c, domain.ErrNotFound)
	}
	out, err := h.uc.ExportPDF(c.UserContext(), GetCompanyID(c), batchID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="codes-%s.pdf"`, batchID))
	return c.Send(out)
}

// pathUUID lee un parámetro de ruta; un valor que no es UUID no puede existir.
func pathUUID(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
