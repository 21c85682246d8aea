package repository

import (
	"context"

	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
)

// TenantRepository define el puerto de persistencia para Tenant (DIP).
// La implementación vive en infrastructure.
type TenantRepository interface {
	Create(ctx context.Context, tenant *entity.Tenant) error
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error)
	// List devuelve tenants con su conteo de usuarios, más recientes primero.
	List(ctx context.Context, limit, offset int) ([]*entity.TenantSummary, error)
	Count(ctx context.Context) (int, error)
}
