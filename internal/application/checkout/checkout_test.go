package checkout_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmaops-api/internal/application/checkout"
	"github.com/jhoicas/pharmaops-api/internal/application/dto"
	"github.com/jhoicas/pharmaops-api/internal/domain"
	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/internal/infrastructure/memory"
	"github.com/jhoicas/pharmaops-api/pkg/logger"
)

const tenantID = "11111111-1111-4111-8111-111111111111"

// mockGateway PaymentGateway con testify/mock.
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreatePaymentIntent(ctx context.Context, in checkout.PaymentIntentInput) (*checkout.PaymentIntent, error) {
	args := m.Called(ctx, in)
	if pi, ok := args.Get(0).(*checkout.PaymentIntent); ok {
		return pi, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) ParseWebhookEvent(payload []byte, signature string) (*checkout.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if ev, ok := args.Get(0).(*checkout.WebhookEvent); ok {
		return ev, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) ChargeReceiptURL(ctx context.Context, chargeID string) (string, error) {
	args := m.Called(ctx, chargeID)
	return args.String(0), args.Error(1)
}

func seedTenant(t *testing.T, store *memory.Store, id string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, store.Tenants().Create(context.Background(), &entity.Tenant{
		ID: id, Name: "Main Street Pharmacy", Slug: "main-street-pharmacy-" + id[:4],
		OrganizationType: entity.OrgTypePharmacy, Status: entity.TenantStatusActive,
		CreatedAt: now, UpdatedAt: now,
	}))
}

func cart() dto.CheckoutRequest {
	return dto.CheckoutRequest{
		Items: []dto.CheckoutItemRequest{
			{Name: "Amoxicilina 500mg", Quantity: 2, UnitPrice: decimal.RequireFromString("25.00"), Total: decimal.RequireFromString("50.00")},
			{Name: "Ibuprofeno 400mg", Quantity: 1, UnitPrice: decimal.RequireFromString("50.00")},
		},
		Total:         decimal.RequireFromString("100.00"),
		PaymentMethod: "card",
		PatientID:     "patient-42",
		TenantID:      tenantID,
	}
}

func newCheckout(t *testing.T) (*checkout.CheckoutUseCase, *mockGateway, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	seedTenant(t, store, tenantID)
	gw := &mockGateway{}
	uc := checkout.NewCheckoutUseCase(gw, store.Tenants(), memory.NewTxRunner(store), logger.NewNop())
	return uc, gw, store
}

func TestCheckout_CreaTransaccionPendiente(t *testing.T) {
	uc, gw, store := newCheckout(t)
	ctx := context.Background()

	var sent checkout.PaymentIntentInput
	gw.On("CreatePaymentIntent", mock.Anything, mock.AnythingOfType("checkout.PaymentIntentInput")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(checkout.PaymentIntentInput) }).
		Return(&checkout.PaymentIntent{ID: "pi_100", ClientSecret: "pi_100_secret"}, nil).Once()

	out, err := uc.Checkout(ctx, cart())
	require.NoError(t, err)
	gw.AssertExpectations(t)

	assert.Equal(t, "pi_100_secret", out.ClientSecret)
	assert.Regexp(t, regexp.MustCompile(`^TXN-[0-9A-Z]+-[0-9A-F]{4}$`), out.TransactionNumber)

	// Stripe recibe el total completo y el mismo número que la fila.
	assert.True(t, sent.Amount.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, tenantID, sent.TenantID)
	assert.Equal(t, "patient-42", sent.PatientID)
	assert.Equal(t, out.TransactionNumber, sent.TransactionNumber)

	txn, err := store.Transactions().GetByID(ctx, out.TransactionID)
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, out.TransactionNumber, txn.TransactionNumber)
	assert.Equal(t, "100.00", txn.Total.StringFixed(2))
	assert.Equal(t, "6.25", txn.Tax.StringFixed(2))
	assert.Equal(t, "93.75", txn.Amount.StringFixed(2))
	assert.Equal(t, entity.PaymentStatusPending, txn.PaymentStatus)
	assert.Equal(t, entity.PaymentMethodCard, txn.PaymentMethod)
	assert.Equal(t, "pi_100", txn.StripePaymentID)
	assert.Nil(t, txn.StripeReceiptURL)

	require.Len(t, txn.Items, 2)
	assert.Equal(t, "Amoxicilina 500mg", txn.Items[0].Name)
	assert.Equal(t, "50.00", txn.Items[0].Total.StringFixed(2))
	assert.Equal(t, "Ibuprofeno 400mg", txn.Items[1].Name)
	assert.Equal(t, "50.00", txn.Items[1].Total.StringFixed(2), "total vacío se calcula como cantidad × precio")
}

func TestCheckout_MetodoDistintoDeCardEsEfectivo(t *testing.T) {
	for _, method := range []string{"cash", "CASH", "insurance"} {
		t.Run(method, func(t *testing.T) {
			uc, gw, store := newCheckout(t)
			gw.On("CreatePaymentIntent", mock.Anything, mock.Anything).
				Return(&checkout.PaymentIntent{ID: "pi_cash", ClientSecret: "s"}, nil)

			in := cart()
			in.PaymentMethod = method
			out, err := uc.Checkout(context.Background(), in)
			require.NoError(t, err)

			txn, _ := store.Transactions().GetByID(context.Background(), out.TransactionID)
			require.NotNil(t, txn)
			assert.Equal(t, entity.PaymentMethodCash, txn.PaymentMethod)
		})
	}
}

func TestCheckout_ErrorDelProcesadorNoPersiste(t *testing.T) {
	uc, gw, store := newCheckout(t)
	gw.On("CreatePaymentIntent", mock.Anything, mock.Anything).Return(nil, errors.New("stripe caído")).Once()

	_, err := uc.Checkout(context.Background(), cart())
	require.Error(t, err)

	_, _, txs := store.Counts()
	assert.Zero(t, txs)
}

func TestCheckout_TenantInexistente(t *testing.T) {
	uc, gw, _ := newCheckout(t)

	in := cart()
	in.TenantID = "22222222-2222-4222-8222-222222222222"
	_, err := uc.Checkout(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	gw.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
}

func TestCheckout_EntradaInvalida(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.CheckoutRequest)
	}{
		{"carrito vacío", func(r *dto.CheckoutRequest) { r.Items = nil }},
		{"total cero", func(r *dto.CheckoutRequest) { r.Total = decimal.Zero }},
		{"total negativo", func(r *dto.CheckoutRequest) { r.Total = decimal.RequireFromString("-1") }},
		{"total que redondea a cero", func(r *dto.CheckoutRequest) { r.Total = decimal.RequireFromString("0.004") }},
		{"total bajo el mínimo", func(r *dto.CheckoutRequest) { r.Total = decimal.RequireFromString("0.49") }},
		{"total fuera de NUMERIC(12,2)", func(r *dto.CheckoutRequest) { r.Total = decimal.New(1, 10) }},
		{"total que desborda int64", func(r *dto.CheckoutRequest) { r.Total = decimal.RequireFromString("1e20") }},
		{"cantidad cero", func(r *dto.CheckoutRequest) { r.Items[0].Quantity = 0 }},
		{"precio negativo", func(r *dto.CheckoutRequest) { r.Items[0].UnitPrice = decimal.RequireFromString("-5") }},
		{"sin paciente", func(r *dto.CheckoutRequest) { r.PatientID = "" }},
		{"tenant no uuid", func(r *dto.CheckoutRequest) { r.TenantID = "main-street" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, gw, _ := newCheckout(t)
			in := cart()
			tt.mutate(&in)
			_, err := uc.Checkout(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			gw.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckout_TotalRedondeadoEnElLimite(t *testing.T) {
	uc, gw, store := newCheckout(t)
	var sent checkout.PaymentIntentInput
	gw.On("CreatePaymentIntent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(checkout.PaymentIntentInput) }).
		Return(&checkout.PaymentIntent{ID: "pi_min", ClientSecret: "s"}, nil).Once()

	in := cart()
	in.Total = decimal.RequireFromString("0.495")
	out, err := uc.Checkout(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "0.50", sent.Amount.StringFixed(2))
	txn, _ := store.Transactions().GetByID(context.Background(), out.TransactionID)
	require.NotNil(t, txn)
	assert.Equal(t, "0.50", txn.Total.StringFixed(2))
}
