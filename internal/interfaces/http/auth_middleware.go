package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/pkg/jwt"
)

// Locals keys para el principal del JWT en Fiber.
const (
	LocalAdminID   = "admin_id"
	LocalCompanyID = "company_id"
	LocalRole      = "role"
)

// AuthMiddleware valida el Bearer Token JWT y extrae AdminID, CompanyID y Role a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		principal, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalAdminID, principal.AdminID)
		c.Locals(LocalCompanyID, principal.CompanyID)
		c.Locals(LocalRole, principal.Role)
		return c.Next()
	}
}

// adminVerifier lo implementa *auth.AuthUseCase.
type adminVerifier interface {
	VerifyActiveAdmin(ctx context.Context, adminID, companyID string) error
}

// RequireActiveAdmin exige rol admin en el token y confirma contra el store que el principal
// sigue siendo admin activo de su empresa. Debe usarse DESPUÉS de AuthMiddleware.
func RequireActiveAdmin(verifier adminVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, companyID := GetAdminID(c), GetCompanyID(c)
		if adminID == "" || companyID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "principal no encontrado en el token",
			})
		}
		if GetRole(c) != entity.RoleAdmin {
			return writeError(c, domain.ErrForbidden)
		}
		if err := verifier.VerifyActiveAdmin(c.UserContext(), adminID, companyID); err != nil {
			return writeError(c, err)
		}
		return c.Next()
	}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetAdminID devuelve el AdminID del contexto (después del middleware de auth).
func GetAdminID(c *fiber.Ctx) string { return localString(c, LocalAdminID) }

// GetCompanyID devuelve el CompanyID del contexto (después del middleware de auth).
func GetCompanyID(c *fiber.Ctx) string { return localString(c, LocalCompanyID) }

// GetRole devuelve el rol del contexto.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }
