package enrollment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/ports"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
	"github.com/jhoicas/emed-onboarding/pkg/identifier"
)

const dateLayout = "2006-01-02"

// errCodeExpired señal interna: la transacción se revierte y la marca de vencido
// se escribe después, fuera de ella.
var errCodeExpired = errors.New("enrollment: código vencido")

// EnrollmentUseCase validación pública de códigos y canje por parte del empleado.
type EnrollmentUseCase struct {
	txRunner    TxRunner
	codeRepo    repository.EnrollmentCodeRepository
	companyRepo repository.CompanyRepository
	programRepo repository.ProgramRepository
	ids         *identifier.Generator
	metrics     ports.Metrics
	now         func() time.Time
}

// NewEnrollmentUseCase construye el caso de uso.
func NewEnrollmentUseCase(
	txRunner TxRunner,
	codeRepo repository.EnrollmentCodeRepository,
	companyRepo repository.CompanyRepository,
	programRepo repository.ProgramRepository,
	ids *identifier.Generator,
	metrics ports.Metrics,
) *EnrollmentUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &EnrollmentUseCase{
		txRunner:    txRunner,
		codeRepo:    codeRepo,
		companyRepo: companyRepo,
		programRepo: programRepo,
		ids:         ids,
		metrics:     metrics,
		now:         time.Now,
	}
}

// ValidateCode informa si el código puede canjearse y devuelve empresa y programa.
// Código inexistente, usado o vencido responden igual (ErrInvalidOrExpiredCode) para
// no revelar cuál es el caso. Un código activo con expires_at pasado se marca expired.
func (uc *EnrollmentUseCase) ValidateCode(ctx context.Context, in dto.ValidateCodeRequest) (*dto.ValidateCodeResponse, error) {
	in.Code = normalizeCode(in.Code)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	code, err := uc.codeRepo.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, fmt.Errorf("validar código: %w", err)
	}
	if code == nil || !code.IsActive() {
		return nil, domain.ErrInvalidOrExpiredCode
	}
	if now := uc.now(); code.IsExpiredAt(now) {
		uc.markExpired(ctx, code.ID, now)
		return nil, domain.ErrInvalidOrExpiredCode
	}

	company, err := uc.companyRepo.GetByID(ctx, code.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("validar código: obtener empresa: %w", err)
	}
	program, err := uc.programRepo.GetByID(ctx, code.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("validar código: obtener programa: %w", err)
	}
	if company == nil || program == nil {
		return nil, domain.ErrInvalidOrExpiredCode
	}
	return &dto.ValidateCodeResponse{
		Valid: true,
		Company: dto.CompanyResponse{
			ID:        company.ID,
			Name:      company.Name,
			Address:   company.Address,
			Industry:  company.Industry,
			Size:      company.Size,
			CreatedAt: company.CreatedAt,
		},
		Program: dto.ProgramResponse{
			ID:          program.ID,
			Name:        program.Name,
			Description: program.Description,
		},
	}, nil
}

// Redeem canjea un código: con el código bloqueado crea el EnrolledUser, marca el código
// como usado y ordena el LabKit. Dos canjes concurrentes del mismo código terminan con
// exactamente un éxito; el otro recibe ErrInvalidOrExpiredCode.
func (uc *EnrollmentUseCase) Redeem(ctx context.Context, in dto.RedeemRequest) (*dto.RedeemResponse, error) {
	out, err := uc.redeem(ctx, in)
	switch {
	case err == nil:
		uc.metrics.EnrollmentResult(ports.ResultOK)
	case domain.IsClientError(err):
		uc.metrics.EnrollmentResult(ports.ResultRejected)
	default:
		uc.metrics.EnrollmentResult(ports.ResultError)
	}
	return out, err
}

func (uc *EnrollmentUseCase) redeem(ctx context.Context, in dto.RedeemRequest) (*dto.RedeemResponse, error) {
	in.Code = normalizeCode(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	var dob *time.Time
	if in.DateOfBirth != "" {
		t, err := time.Parse(dateLayout, in.DateOfBirth)
		if err != nil {
			return nil, domain.Invalid("dateOfBirth", "format=YYYY-MM-DD")
		}
		if t.After(uc.now()) {
			return nil, domain.Invalid("dateOfBirth", "future")
		}
		dob = &t
	}

	var (
		user *entity.EnrolledUser
		err  error
	)
	for attempt := 0; attempt < 2; attempt++ {
		user, err = uc.redeemOnce(ctx, in, dob)
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return &dto.RedeemResponse{
		UserID:         user.ID,
		Name:           user.Name,
		Email:          user.Email,
		EnrollmentDate: user.EnrollmentDate,
		EmedIdentifier: user.EmedIdentifier,
	}, nil
}

func (uc *EnrollmentUseCase) redeemOnce(ctx context.Context, in dto.RedeemRequest, dob *time.Time) (*entity.EnrolledUser, error) {
	now := uc.now()
	var (
		user        *entity.EnrolledUser
		expiredCode string
	)
	err := uc.txRunner.RunEnrollment(ctx, func(
		codeRepo repository.EnrollmentCodeRepository,
		userRepo repository.EnrolledUserRepository,
		kitRepo repository.LabKitRepository,
	) error {
		code, err := codeRepo.GetByCodeForUpdate(ctx, in.Code)
		if err != nil {
			return err
		}
		if code == nil || !code.IsActive() {
			return domain.ErrInvalidOrExpiredCode
		}
		if code.IsExpiredAt(now) {
			expiredCode = code.ID
			return errCodeExpired
		}

		emedID, err := uc.ids.EmedIdentifier(code.CompanyID)
		if err != nil {
			return err
		}
		user = &entity.EnrolledUser{
			ID:               uuid.New().String(),
			CompanyID:        code.CompanyID,
			ProgramID:        code.ProgramID,
			EnrollmentCodeID: code.ID,
			Name:             in.Name,
			Email:            in.Email,
			Phone:            strings.TrimSpace(in.Phone),
			DateOfBirth:      dob,
			Address:          strings.TrimSpace(in.Address),
			EmedIdentifier:   emedID,
			Status:           entity.UserStatusActive,
			EnrollmentDate:   now,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}

		ok, err := codeRepo.MarkUsed(ctx, code.ID, user.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidOrExpiredCode
		}

		kitID, err := uc.ids.KitIdentifier()
		if err != nil {
			return err
		}
		return kitRepo.Create(ctx, &entity.LabKit{
			ID:            uuid.New().String(),
			UserID:        user.ID,
			KitIdentifier: kitID,
			Status:        entity.KitStatusOrdered,
			OrderedAt:     now,
		})
	})
	if errors.Is(err, errCodeExpired) {
		uc.markExpired(ctx, expiredCode, now)
		return nil, domain.ErrInvalidOrExpiredCode
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// markExpired es best effort: el cliente ya recibe ErrInvalidOrExpiredCode igualmente.
func (uc *EnrollmentUseCase) markExpired(ctx context.Context, codeID string, now time.Time) {
	if _, err := uc.codeRepo.MarkExpired(ctx, codeID, now); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("code_id", codeID).Msg("no se pudo marcar el código como vencido")
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
