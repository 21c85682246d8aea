package entity

import "time"

// Tipos de organización aceptados en el registro.
const (
	OrgTypePharmacy    = "pharmacy"
	OrgTypeHospital    = "hospital"
	OrgTypeSpecialty   = "specialty"
	OrgTypeCompounding = "compounding"
	OrgTypeOther       = "other"
)

// TenantStatusActive es el único estado que asigna el registro.
const TenantStatusActive = "active"

// Tenant representa una organización (farmacia) dueña de sus usuarios y transacciones.
// Se crea una sola vez en el registro y no se modifica después.
type Tenant struct {
	ID               string
	Name             string
	Slug             string // ver tenant.Slugify
	OrganizationType string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TenantSummary fila del listado de administración.
type TenantSummary struct {
	Tenant
	UserCount int
}
