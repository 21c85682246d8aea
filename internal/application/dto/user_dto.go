package dto

import "time"

// RegisterRequest entrada de POST /api/auth/register. Crea la organización y su primer usuario.
type RegisterRequest struct {
	Name             string `json:"name" validate:"required,max=200"`
	Email            string `json:"email" validate:"required,email,max=254"`
	Password         string `json:"password" validate:"required,min=8,max=72"`
	OrganizationName string `json:"organizationName" validate:"required,max=200"`
	OrganizationType string `json:"organizationType" validate:"omitempty,oneof=pharmacy hospital specialty compounding other"`
	Role             string `json:"role" validate:"omitempty,oneof=TENANT_ADMIN PHARMACIST TECHNICIAN STAFF"`
}

// RegisteredUser identificador mínimo devuelto tras el registro.
type RegisteredUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// RegisterResponse salida 201 del registro.
type RegisterResponse struct {
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

// LoginRequest entrada de POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResponse token JWT + usuario.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
