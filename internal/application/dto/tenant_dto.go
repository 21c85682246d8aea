package dto

import "time"

// TenantResponse tenant en el listado de administración.
type TenantResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	OrganizationType string    `json:"organizationType"`
	Status           string    `json:"status"`
	UserCount        int       `json:"userCount"`
	CreatedAt        time.Time `json:"createdAt"`
}

// TenantListResponse página de tenants.
type TenantListResponse struct {
	Items []TenantResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
