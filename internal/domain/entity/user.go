package entity

import "time"

// Roles de plataforma (área /admin).
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
)

// Roles dentro de un tenant (farmacia).
const (
	RoleTenantAdmin = "TENANT_ADMIN"
	RolePharmacist  = "PHARMACIST"
	RoleTechnician  = "TECHNICIAN"
	RoleStaff       = "STAFF"
)

// Estados de usuario.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// User representa un usuario del sistema (pertenece a exactamente un Tenant).
type User struct {
	ID           string
	TenantID     string
	Name         string
	Email        string
	PasswordHash string // bcrypt, nunca en texto plano
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive indica si el usuario puede iniciar sesión.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
