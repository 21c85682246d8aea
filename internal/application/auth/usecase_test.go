package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pharmaops-api/internal/application/auth"
	"github.com/jhoicas/pharmaops-api/internal/application/dto"
	"github.com/jhoicas/pharmaops-api/internal/domain"
	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/internal/infrastructure/memory"
	"github.com/jhoicas/pharmaops-api/pkg/jwt"
	"github.com/jhoicas/pharmaops-api/pkg/logger"
)

const testSecret = "test-secret-key-for-unit-tests"

func newAuth(t *testing.T) (*auth.AuthUseCase, *memory.Store, *jwt.Signer) {
	t.Helper()
	store := memory.NewStore()
	signer, err := jwt.NewSigner(testSecret, "pharmaops-test", 60)
	require.NoError(t, err)
	uc := auth.NewAuthUseCase(store.Users(), memory.NewTxRunner(store), signer, logger.NewNop()).
		WithPasswordCost(bcrypt.MinCost)
	return uc, store, signer
}

func validRegister() dto.RegisterRequest {
	return dto.RegisterRequest{
		Name:             "Ana Torres",
		Email:            "ana@mainstreet.com",
		Password:         "s3cret-pass",
		OrganizationName: "Main Street Pharmacy",
	}
}

func TestRegister_CreaTenantYUsuario(t *testing.T) {
	uc, store, _ := newAuth(t)
	ctx := context.Background()

	out, err := uc.Register(ctx, validRegister())
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "ana@mainstreet.com", out.Email)

	tenants, users, _ := store.Counts()
	assert.Equal(t, 1, tenants)
	assert.Equal(t, 1, users)

	user, err := store.Users().GetByID(ctx, out.ID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, entity.RoleTenantAdmin, user.Role)
	assert.Equal(t, entity.UserStatusActive, user.Status)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))

	tenant, err := store.Tenants().GetByID(ctx, user.TenantID)
	require.NoError(t, err)
	require.NotNil(t, tenant)
	assert.Equal(t, "main-street-pharmacy", tenant.Slug)
	assert.Equal(t, "Main Street Pharmacy", tenant.Name)
	assert.Equal(t, entity.OrgTypePharmacy, tenant.OrganizationType)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	uc, store, _ := newAuth(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, validRegister())
	require.NoError(t, err)

	again := validRegister()
	again.Email = "  ANA@MainStreet.com "
	again.OrganizationName = "Otra Farmacia"
	_, err = uc.Register(ctx, again)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	tenants, users, _ := store.Counts()
	assert.Equal(t, 1, tenants, "no debe quedar un segundo tenant")
	assert.Equal(t, 1, users)
}

func TestRegister_SlugDuplicado(t *testing.T) {
	uc, store, _ := newAuth(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, validRegister())
	require.NoError(t, err)

	other := validRegister()
	other.Email = "otro@mainstreet.com"
	other.OrganizationName = "main street   pharmacy!!"
	_, err = uc.Register(ctx, other)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	tenants, users, _ := store.Counts()
	assert.Equal(t, 1, tenants)
	assert.Equal(t, 1, users)
}

func TestRegister_FalloAlCrearUsuarioNoDejaTenant(t *testing.T) {
	uc, store, _ := newAuth(t)
	store.FailUserCreate = errors.New("conexión perdida")

	_, err := uc.Register(context.Background(), validRegister())
	require.Error(t, err)

	tenants, users, _ := store.Counts()
	assert.Zero(t, tenants)
	assert.Zero(t, users)
}

func TestRegister_EntradaInvalida(t *testing.T) {
	uc, _, _ := newAuth(t)

	tests := []struct {
		name   string
		mutate func(*dto.RegisterRequest)
	}{
		{"sin organización", func(r *dto.RegisterRequest) { r.OrganizationName = "   " }},
		{"email inválido", func(r *dto.RegisterRequest) { r.Email = "no-es-email" }},
		{"password corto", func(r *dto.RegisterRequest) { r.Password = "123" }},
		{"rol de plataforma", func(r *dto.RegisterRequest) { r.Role = entity.RoleSuperAdmin }},
		{"tipo de organización desconocido", func(r *dto.RegisterRequest) { r.OrganizationType = "veterinary" }},
		{"nombre sin caracteres útiles", func(r *dto.RegisterRequest) { r.OrganizationName = "!!! ???" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegister()
			tt.mutate(&in)
			_, err := uc.Register(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRegister_RolYTipoExplicitos(t *testing.T) {
	uc, store, _ := newAuth(t)
	ctx := context.Background()

	in := validRegister()
	in.Role = entity.RolePharmacist
	in.OrganizationType = entity.OrgTypeCompounding
	out, err := uc.Register(ctx, in)
	require.NoError(t, err)

	user, _ := store.Users().GetByID(ctx, out.ID)
	require.NotNil(t, user)
	assert.Equal(t, entity.RolePharmacist, user.Role)
	tenant, _ := store.Tenants().GetByID(ctx, user.TenantID)
	require.NotNil(t, tenant)
	assert.Equal(t, entity.OrgTypeCompounding, tenant.OrganizationType)
}

func TestRegister_CostoBcryptPorDefecto(t *testing.T) {
	store := memory.NewStore()
	signer, _ := jwt.NewSigner(testSecret, "", 60)
	uc := auth.NewAuthUseCase(store.Users(), memory.NewTxRunner(store), signer, logger.NewNop())

	out, err := uc.Register(context.Background(), validRegister())
	require.NoError(t, err)
	user, _ := store.Users().GetByID(context.Background(), out.ID)
	require.NotNil(t, user)

	cost, err := bcrypt.Cost([]byte(user.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, auth.PasswordCost, cost)
}

func TestLogin(t *testing.T) {
	uc, store, signer := newAuth(t)
	ctx := context.Background()
	reg, err := uc.Register(ctx, validRegister())
	require.NoError(t, err)

	t.Run("credenciales válidas", func(t *testing.T) {
		out, err := uc.Login(ctx, dto.LoginRequest{Email: "Ana@MainStreet.com", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Equal(t, reg.ID, out.User.ID)

		id, err := signer.Verify(out.Token)
		require.NoError(t, err)
		assert.Equal(t, reg.ID, id.UserID)
		assert.Equal(t, out.User.TenantID, id.TenantID)
		assert.Equal(t, entity.RoleTenantAdmin, id.Role)
	})

	t.Run("password incorrecto", func(t *testing.T) {
		_, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@mainstreet.com", Password: "otra-cosa"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("usuario inexistente", func(t *testing.T) {
		_, err := uc.Login(ctx, dto.LoginRequest{Email: "nadie@mainstreet.com", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("usuario suspendido", func(t *testing.T) {
		hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
		now := time.Now()
		require.NoError(t, store.Users().Create(ctx, &entity.User{
			ID: "00000000-0000-0000-0000-0000000000aa", TenantID: "t", Name: "Sus", Email: "sus@mainstreet.com",
			PasswordHash: string(hash), Role: entity.RoleStaff, Status: entity.UserStatusSuspended,
			CreatedAt: now, UpdatedAt: now,
		}))
		_, err := uc.Login(ctx, dto.LoginRequest{Email: "sus@mainstreet.com", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}
