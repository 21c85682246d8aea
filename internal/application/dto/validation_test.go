package dto_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmaops-api/internal/application/dto"
	"github.com/jhoicas/pharmaops-api/internal/domain"
)

func validRegister() dto.RegisterRequest {
	return dto.RegisterRequest{
		Name:             "Jane Doe",
		Email:            "jane@mainstreet.rx",
		Password:         "s3cret-pass",
		OrganizationName: "Main Street Pharmacy",
	}
}

func TestValidate_RegisterValido(t *testing.T) {
	require.NoError(t, dto.Validate(validRegister()))
}

func TestValidate_ReportaNombreJSON(t *testing.T) {
	in := validRegister()
	in.OrganizationName = ""

	err := dto.Validate(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "organizationName es requerido")
}

func TestValidate_RolDePlataformaRechazado(t *testing.T) {
	in := validRegister()
	in.Role = "SUPER_ADMIN"

	err := dto.Validate(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role debe ser uno de")
}

func TestValidate_CheckoutSinItems(t *testing.T) {
	in := dto.CheckoutRequest{
		PaymentMethod: "card",
		PatientID:     "pat_1",
		TenantID:      "7b0b2f3e-8a61-4a5b-9a77-2a3c1f0d9e10",
	}
	err := dto.Validate(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items")
}

func TestValidate_CheckoutItemCantidadCero(t *testing.T) {
	in := dto.CheckoutRequest{
		Items:         []dto.CheckoutItemRequest{{Name: "Ibuprofen 200mg", Quantity: 0}},
		PaymentMethod: "card",
		PatientID:     "pat_1",
		TenantID:      "7b0b2f3e-8a61-4a5b-9a77-2a3c1f0d9e10",
	}
	err := dto.Validate(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity debe ser al menos 1")
}

func TestDefaultPage(t *testing.T) {
	p := dto.PageRequest{}
	p.DefaultPage()
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = dto.PageRequest{Limit: 500, Offset: -3}
	p.DefaultPage()
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 0, p.Offset)
}
