package provisioning

import (
	"context"

	"github.com/jhoicas/emed-onboarding/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con los repos de empresa y administrador
// atados a esa tx. Si fn devuelve error se hace Rollback y no persiste ninguna fila.
type TxRunner interface {
	RunProvisioning(ctx context.Context, fn func(
		companyRepo repository.CompanyRepository,
		adminRepo repository.AdminRepository,
	) error) error
}
