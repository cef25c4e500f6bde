package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/ports"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
	"github.com/jhoicas/emed-onboarding/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación de administradores del portal.
type AuthUseCase struct {
	adminRepo   repository.AdminRepository
	companyRepo repository.CompanyRepository
	hasher      ports.PasswordHasher
	jwtCfg      JWTConfig
	now         func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	adminRepo repository.AdminRepository,
	companyRepo repository.CompanyRepository,
	hasher ports.PasswordHasher,
	jwtCfg JWTConfig,
) *AuthUseCase {
	return &AuthUseCase{
		adminRepo:   adminRepo,
		companyRepo: companyRepo,
		hasher:      hasher,
		jwtCfg:      jwtCfg,
		now:         time.Now,
	}
}

// Login verifica email/password de un admin activo, registra last_login y emite el JWT.
// Email desconocido y contraseña incorrecta devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	admin, err := uc.adminRepo.GetActiveByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("login: buscar admin: %w", err)
	}
	if admin == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := uc.hasher.Verify(admin.PasswordHash, in.Password); err != nil {
		return nil, domain.ErrUnauthorized
	}
	company, err := uc.companyRepo.GetByID(ctx, admin.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("login: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, domain.ErrForbidden
	}

	now := uc.now()
	if err := uc.adminRepo.TouchLastLogin(ctx, admin.ID, now); err != nil {
		return nil, fmt.Errorf("login: actualizar last_login: %w", err)
	}
	admin.LastLogin = &now

	token, err := jwt.Generate(uc.jwtCfg.Secret, admin.ID, admin.CompanyID, entity.RoleAdmin, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		Admin: dto.AdminResponse{
			ID:        admin.ID,
			CompanyID: admin.CompanyID,
			Name:      admin.Name,
			Email:     admin.Email,
			Title:     admin.Title,
			LastLogin: admin.LastLogin,
		},
		Company: dto.CompanyResponse{
			ID:        company.ID,
			Name:      company.Name,
			Address:   company.Address,
			Industry:  company.Industry,
			Size:      company.Size,
			CreatedAt: company.CreatedAt,
		},
	}, nil
}

// VerifyActiveAdmin comprueba que el principal del token sigue siendo admin activo de la empresa.
func (uc *AuthUseCase) VerifyActiveAdmin(ctx context.Context, adminID, companyID string) error {
	ok, err := uc.adminRepo.IsActiveAdmin(ctx, adminID, companyID)
	if err != nil {
		return fmt.Errorf("verificar admin: %w", err)
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}
