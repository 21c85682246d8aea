package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pharmaops-api/internal/domain"
	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implementación del puerto TenantRepository sobre PostgreSQL.
type TenantRepo struct {
	db Querier
}

// NewTenantRepository construye el adaptador de persistencia para tenants.
func NewTenantRepository(db Querier) *TenantRepo {
	return &TenantRepo{db: db}
}

const tenantColumns = `id, name, slug, organization_type, status, created_at, updated_at`

// Create persiste un tenant. Slug repetido -> domain.ErrDuplicate.
func (r *TenantRepo) Create(ctx context.Context, t *entity.Tenant) error {
	query := `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query,
		t.ID, t.Name, t.Slug, t.OrganizationType, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) && violatedConstraint(err) == uniqueTenantsSlug {
			return fmt.Errorf("%w: slug %q", domain.ErrDuplicate, t.Slug)
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

// GetByID obtiene un tenant por ID; nil si no existe.
func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	t, err := scanTenant(r.db.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

// GetBySlug obtiene un tenant por slug; nil si no existe.
func (r *TenantRepo) GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error) {
	t, err := scanTenant(r.db.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug))
	if err != nil {
		return nil, fmt.Errorf("get tenant by slug: %w", err)
	}
	return t, nil
}

// List tenants con conteo de usuarios, más recientes primero.
func (r *TenantRepo) List(ctx context.Context, limit, offset int) ([]*entity.TenantSummary, error) {
	query := `
		SELECT t.id, t.name, t.slug, t.organization_type, t.status, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM users u WHERE u.tenant_id = t.id) AS user_count
		FROM tenants t
		ORDER BY t.created_at DESC, t.id
		LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var list []*entity.TenantSummary
	for rows.Next() {
		var s entity.TenantSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.OrganizationType, &s.Status,
			&s.CreatedAt, &s.UpdatedAt, &s.UserCount); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Count total de tenants.
func (r *TenantRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tenants: %w", err)
	}
	return n, nil
}

func scanTenant(row rowScanner) (*entity.Tenant, error) {
	var t entity.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.OrganizationType, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
