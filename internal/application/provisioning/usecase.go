package provisioning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/ports"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
	"github.com/jhoicas/emed-onboarding/pkg/identifier"
)

// Políticas ante un email de administrador ya registrado.
const (
	DuplicateEmailReject = "reject" // ErrEmailAlreadyExists
	DuplicateEmailSuffix = "suffix" // local+<unix>@dominio; el email reescrito se devuelve en las credenciales
)

// maxSuffixAttempts candidatos probados con la política suffix antes de rendirse.
const maxSuffixAttempts = 10

// Config parámetros del aprovisionamiento.
type Config struct {
	ProgramCode    string
	PortalBaseURL  string
	DuplicateEmail string

	// Clock reloj del caso de uso; nil = time.Now.
	Clock func() time.Time
}

// ProvisionUseCase crea una empresa y su primer administrador en una sola transacción.
type ProvisionUseCase struct {
	txRunner    TxRunner
	programRepo repository.ProgramRepository
	hasher      ports.PasswordHasher
	ids         *identifier.Generator
	metrics     ports.Metrics
	cfg         Config
	now         func() time.Time
}

// NewProvisionUseCase construye el caso de uso.
func NewProvisionUseCase(
	txRunner TxRunner,
	programRepo repository.ProgramRepository,
	hasher ports.PasswordHasher,
	ids *identifier.Generator,
	metrics ports.Metrics,
	cfg Config,
) *ProvisionUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if cfg.DuplicateEmail == "" {
		cfg.DuplicateEmail = DuplicateEmailReject
	}
	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}
	return &ProvisionUseCase{
		txRunner:    txRunner,
		programRepo: programRepo,
		hasher:      hasher,
		ids:         ids,
		metrics:     metrics,
		cfg:         cfg,
		now:         now,
	}
}

// Provision valida la entrada, exige que el programa exista y, dentro de la transacción,
// inserta Company y Admin con una contraseña temporal hasheada.
//
// Retorna:
//   - domain.ErrInvalidInput (ValidationError) si falta nombre de empresa o datos del admin.
//   - domain.ErrNotFound si el programa configurado no fue sembrado.
//   - domain.ErrEmailAlreadyExists con la política reject (o si el índice único salta igualmente).
func (uc *ProvisionUseCase) Provision(ctx context.Context, in dto.ProvisionRequest) (*dto.ProvisionResponse, error) {
	out, err := uc.provision(ctx, in)
	switch {
	case err == nil:
		uc.metrics.ProvisioningResult(ports.ResultOK)
	case domain.IsClientError(err):
		uc.metrics.ProvisioningResult(ports.ResultRejected)
	default:
		uc.metrics.ProvisioningResult(ports.ResultError)
	}
	return out, err
}

func (uc *ProvisionUseCase) provision(ctx context.Context, in dto.ProvisionRequest) (*dto.ProvisionResponse, error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.AdminUser.Name = strings.TrimSpace(in.AdminUser.Name)
	in.AdminUser.Email = strings.ToLower(strings.TrimSpace(in.AdminUser.Email))
	if err := dto.Validate(in); err != nil {
		return nil, err
	}

	program, err := uc.programRepo.GetByCode(ctx, uc.cfg.ProgramCode)
	if err != nil {
		return nil, fmt.Errorf("provision: obtener programa: %w", err)
	}
	if program == nil {
		return nil, domain.ErrNotFound
	}

	tempPassword, err := uc.ids.TempPassword()
	if err != nil {
		return nil, err
	}
	hash, err := uc.hasher.Hash(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("provision: hash de contraseña: %w", err)
	}

	now := uc.now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      in.CompanyName,
		Address:   in.Address,
		Industry:  in.Industry,
		Size:      in.Size,
		CreatedAt: now,
	}
	admin := &entity.Admin{
		ID:           uuid.New().String(),
		CompanyID:    company.ID,
		Name:         in.AdminUser.Name,
		Email:        in.AdminUser.Email,
		Title:        in.AdminUser.Title,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
	}

	err = uc.txRunner.RunProvisioning(ctx, func(
		companyRepo repository.CompanyRepository,
		adminRepo repository.AdminRepository,
	) error {
		if err := companyRepo.Create(ctx, company); err != nil {
			return err
		}
		exists, err := adminRepo.EmailExists(ctx, admin.Email)
		if err != nil {
			return err
		}
		if exists {
			if uc.cfg.DuplicateEmail != DuplicateEmailSuffix {
				return domain.ErrEmailAlreadyExists
			}
			email, err := uniqueSuffixedEmail(ctx, adminRepo, admin.Email, now)
			if err != nil {
				return err
			}
			admin.Email = email
		}
		return adminRepo.Create(ctx, admin)
	})
	if err != nil {
		return nil, err
	}

	return &dto.ProvisionResponse{
		Company: dto.CompanyResponse{
			ID:        company.ID,
			Name:      company.Name,
			Address:   company.Address,
			Industry:  company.Industry,
			Size:      company.Size,
			CreatedAt: company.CreatedAt,
		},
		Admin: dto.AdminResponse{
			ID:        admin.ID,
			CompanyID: admin.CompanyID,
			Name:      admin.Name,
			Email:     admin.Email,
			Title:     admin.Title,
		},
		Credentials: dto.CredentialsResponse{
			Email:        admin.Email,
			TempPassword: tempPassword,
		},
		PortalURL: PortalURL(uc.cfg.PortalBaseURL, company.Name),
	}, nil
}

// uniqueSuffixedEmail prueba SuffixEmail con intentos crecientes hasta dar con uno libre.
func uniqueSuffixedEmail(ctx context.Context, adminRepo repository.AdminRepository, email string, now time.Time) (string, error) {
	for attempt := 0; attempt < maxSuffixAttempts; attempt++ {
		candidate := SuffixEmail(email, now, attempt)
		exists, err := adminRepo.EmailExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", domain.ErrEmailAlreadyExists
}

// SuffixEmail agrega +<unix> a la parte local; desde el segundo intento, +<unix>-<n>.
// ana@acme.com -> ana+1700000000@acme.com, ana+1700000000-2@acme.com, ...
func SuffixEmail(email string, now time.Time, attempt int) string {
	tag := fmt.Sprintf("+%d", now.Unix())
	if attempt > 0 {
		tag = fmt.Sprintf("+%d-%d", now.Unix(), attempt+1)
	}
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return email + tag
	}
	return email[:at] + tag + email[at:]
}

// PortalURL arma la URL del portal a partir del nombre de la empresa.
func PortalURL(base, companyName string) string {
	return strings.TrimRight(base, "/") + "/" + identifier.Slug(companyName)
}
