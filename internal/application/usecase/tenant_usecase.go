package usecase

import (
	"context"

	"github.com/jhoicas/pharmaops-api/internal/application/dto"
	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/internal/domain/repository"
)

// TenantUseCase consultas de organizaciones para el área de administración.
type TenantUseCase struct {
	repo repository.TenantRepository
}

// NewTenantUseCase construye el caso de uso con el puerto de persistencia.
func NewTenantUseCase(repo repository.TenantRepository) *TenantUseCase {
	return &TenantUseCase{repo: repo}
}

// List lista tenants con su cantidad de usuarios.
func (uc *TenantUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.TenantListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TenantResponse, 0, len(list))
	for _, t := range list {
		items = append(items, entityToTenantResponse(t))
	}
	return &dto.TenantListResponse{
		Items: items,
		Page:  page.Result(total),
	}, nil
}

func entityToTenantResponse(t *entity.TenantSummary) dto.TenantResponse {
	return dto.TenantResponse{
		ID:               t.ID,
		Name:             t.Name,
		Slug:             t.Slug,
		OrganizationType: t.OrganizationType,
		Status:           t.Status,
		UserCount:        t.UserCount,
		CreatedAt:        t.CreatedAt,
	}
}
