package employees

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/domain"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

// CareRepos repositorios del recorrido de atención (kits, telemedicina, farmacia).
type CareRepos struct {
	Kits          repository.LabKitRepository
	Results       repository.LabResultRepository
	Reviews       repository.TelehealthReviewRepository
	Prescriptions repository.PrescriptionRepository
	Shipments     repository.ShipmentRepository
}

// EmployeeUseCase listado y administración de empleados inscritos, y tablero de la empresa.
type EmployeeUseCase struct {
	companyRepo repository.CompanyRepository
	userRepo    repository.EnrolledUserRepository
	metricsRepo repository.MetricsRepository
	care        CareRepos
}

// NewEmployeeUseCase construye el caso de uso.
func NewEmployeeUseCase(
	companyRepo repository.CompanyRepository,
	userRepo repository.EnrolledUserRepository,
	metricsRepo repository.MetricsRepository,
	care CareRepos,
) *EmployeeUseCase {
	return &EmployeeUseCase{companyRepo: companyRepo, userRepo: userRepo, metricsRepo: metricsRepo, care: care}
}

// List devuelve los empleados de la empresa filtrados por estado y búsqueda libre (nombre o email).
func (uc *EmployeeUseCase) List(ctx context.Context, companyID, status, search string, page dto.PageRequest) (*dto.EmployeeListResponse, error) {
	if status != "" && !entity.ValidUserStatus(status) {
		return nil, domain.Invalid("status", "oneof=active inactive")
	}
	page.DefaultPage()
	if err := dto.Validate(page); err != nil {
		return nil, err
	}
	list, err := uc.userRepo.List(ctx, companyID, repository.UserFilter{
		Status: status,
		Search: strings.TrimSpace(search),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar empleados: %w", err)
	}
	items := make([]dto.EmployeeResponse, 0, len(list))
	for _, u := range list {
		items = append(items, toEmployeeResponse(u))
	}
	return &dto.EmployeeListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Deactivate marca al empleado como inactive. Un empleado de otra empresa es ErrNotFound.
func (uc *EmployeeUseCase) Deactivate(ctx context.Context, companyID, userID string) (*dto.EmployeeResponse, error) {
	u, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("obtener empleado: %w", err)
	}
	if u == nil || u.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if err := uc.userRepo.UpdateStatus(ctx, u.ID, entity.UserStatusInactive); err != nil {
		return nil, fmt.Errorf("desactivar empleado: %w", err)
	}
	u.Status = entity.UserStatusInactive
	out := toEmployeeResponse(u)
	return &out, nil
}

// Detail devuelve la ficha del empleado con kits (y resultados), revisiones y recetas (y envíos).
// Un empleado de otra empresa es ErrNotFound.
func (uc *EmployeeUseCase) Detail(ctx context.Context, companyID, userID string) (*dto.EmployeeDetailResponse, error) {
	u, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("obtener empleado: %w", err)
	}
	if u == nil || u.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	out := &dto.EmployeeDetailResponse{
		Employee:      toEmployeeResponse(u),
		Kits:          []dto.LabKitResponse{},
		Reviews:       []dto.TelehealthReviewResponse{},
		Prescriptions: []dto.PrescriptionResponse{},
	}

	kits, err := uc.care.Kits.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("detalle: kits: %w", err)
	}
	for _, k := range kits {
		results, err := uc.care.Results.ListByKit(ctx, k.ID)
		if err != nil {
			return nil, fmt.Errorf("detalle: resultados: %w", err)
		}
		kr := dto.LabKitResponse{
			KitIdentifier: k.KitIdentifier,
			Status:        k.Status,
			OrderedAt:     k.OrderedAt,
			ShippedAt:     k.ShippedAt,
			DeliveredAt:   k.DeliveredAt,
			ProcessedAt:   k.ProcessedAt,
			Results:       make([]dto.LabResultResponse, 0, len(results)),
		}
		for _, r := range results {
			kr.Results = append(kr.Results, dto.LabResultResponse{ID: r.ID, ResultData: r.ResultData, ReceivedAt: r.ReceivedAt})
		}
		out.Kits = append(out.Kits, kr)
	}

	reviews, err := uc.care.Reviews.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("detalle: revisiones: %w", err)
	}
	for _, r := range reviews {
		out.Reviews = append(out.Reviews, dto.TelehealthReviewResponse{
			ID:           r.ID,
			Decision:     r.Decision,
			ReviewerName: r.ReviewerName,
			Notes:        r.Notes,
			ReviewedAt:   r.ReviewedAt,
		})
	}

	rxs, err := uc.care.Prescriptions.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("detalle: recetas: %w", err)
	}
	for _, rx := range rxs {
		shipments, err := uc.care.Shipments.ListByPrescription(ctx, rx.ID)
		if err != nil {
			return nil, fmt.Errorf("detalle: envíos: %w", err)
		}
		pr := dto.PrescriptionResponse{
			RxIdentifier: rx.RxIdentifier,
			ReviewID:     rx.ReviewID,
			Medication:   rx.Medication,
			DosageMg:     rx.DosageMg,
			Frequency:    rx.Frequency,
			Instructions: rx.Instructions,
			Refills:      rx.Refills,
			Status:       rx.Status,
			CreatedAt:    rx.CreatedAt,
			UpdatedAt:    rx.UpdatedAt,
			Shipments:    make([]dto.ShipmentResponse, 0, len(shipments)),
		}
		for _, s := range shipments {
			pr.Shipments = append(pr.Shipments, dto.ShipmentResponse{
				ID:                s.ID,
				Carrier:           s.Carrier,
				TrackingNumber:    s.TrackingNumber,
				ShippedAt:         s.ShippedAt,
				EstimatedDelivery: s.EstimatedDelivery,
			})
		}
		out.Prescriptions = append(out.Prescriptions, pr)
	}
	return out, nil
}

// Metrics arma el tablero: total estimado por tamaño de empresa más los conteos reales.
func (uc *EmployeeUseCase) Metrics(ctx context.Context, companyID string) (*dto.MetricsResponse, error) {
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("métricas: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	m, err := uc.metricsRepo.GetEnrollmentMetrics(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("métricas: %w", err)
	}
	return &dto.MetricsResponse{
		CompanyID:          companyID,
		TotalEmployees:     company.ApproxEmployees(),
		TotalEnrolled:      m.TotalEnrolled,
		ActiveUsers:        m.ActiveUsers,
		KitsShipped:        m.KitsShipped,
		KitsProcessed:      m.KitsProcessed,
		TotalPrescriptions: m.TotalPrescriptions,
	}, nil
}

func toEmployeeResponse(u *entity.EnrolledUser) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		DateOfBirth:    u.DateOfBirth,
		Address:        u.Address,
		EmedIdentifier: u.EmedIdentifier,
		Status:         u.Status,
		EnrollmentDate: u.EnrollmentDate,
	}
}
