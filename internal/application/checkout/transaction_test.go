package checkout_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmaops-api/internal/application/checkout"
	"github.com/jhoicas/pharmaops-api/internal/application/dto"
	"github.com/jhoicas/pharmaops-api/internal/domain"
	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/internal/infrastructure/memory"
	"github.com/jhoicas/pharmaops-api/internal/infrastructure/pdf"
)

func seedHistory(t *testing.T, store *memory.Store, tenant string, statuses ...string) []string {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	ids := make([]string, 0, len(statuses))
	for i, st := range statuses {
		txn := &entity.Transaction{
			ID:                uuid.New().String(),
			TransactionNumber: "TXN-" + uuid.New().String()[:8],
			TenantID:          tenant,
			PatientID:         "patient-1",
			Amount:            decimal.RequireFromString("9.38"),
			Tax:               decimal.RequireFromString("0.63"),
			Total:             decimal.RequireFromString("10.01"),
			PaymentMethod:     entity.PaymentMethodCash,
			PaymentStatus:     st,
			StripePaymentID:   "pi_" + uuid.New().String()[:6],
			CreatedAt:         base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:         base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.Transactions().Create(ctx, txn))
		require.NoError(t, store.Transactions().CreateItem(ctx, &entity.TransactionItem{
			TransactionID: txn.ID, Position: 1, Name: "Paracetamol", Quantity: 1,
			UnitPrice: decimal.RequireFromString("10.01"), Total: decimal.RequireFromString("10.01"),
		}))
		ids = append(ids, txn.ID)
	}
	return ids
}

func newTransactions(t *testing.T) (*checkout.TransactionUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	seedTenant(t, store, tenantID)
	return checkout.NewTransactionUseCase(store.Transactions(), store.Tenants(), pdf.NewReceiptGenerator()), store
}

func TestTransactions_ListPaginaYFiltra(t *testing.T) {
	uc, store := newTransactions(t)
	ctx := context.Background()
	ids := seedHistory(t, store, tenantID,
		entity.PaymentStatusPending, entity.PaymentStatusCompleted, entity.PaymentStatusCompleted, entity.PaymentStatusFailed)
	seedHistory(t, store, "33333333-3333-4333-8333-333333333333", entity.PaymentStatusCompleted)

	out, err := uc.List(ctx, tenantID, dto.TransactionListRequest{PageRequest: dto.PageRequest{Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Page.Total)
	require.Len(t, out.Items, 2)
	assert.Equal(t, ids[3], out.Items[0].ID, "más reciente primero")

	out, err = uc.List(ctx, tenantID, dto.TransactionListRequest{Status: entity.PaymentStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Page.Total)
	assert.Equal(t, 20, out.Page.Limit)
	for _, it := range out.Items {
		assert.Equal(t, entity.PaymentStatusCompleted, it.PaymentStatus)
		assert.Equal(t, tenantID, it.TenantID)
	}

	_, err = uc.List(ctx, tenantID, dto.TransactionListRequest{Status: "REFUNDED"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransactions_GetByIDAcotadoAlTenant(t *testing.T) {
	uc, store := newTransactions(t)
	ctx := context.Background()
	ids := seedHistory(t, store, tenantID, entity.PaymentStatusPending)

	got, err := uc.GetByID(ctx, tenantID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "10.01", got.Total.StringFixed(2))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Paracetamol", got.Items[0].Name)

	_, err = uc.GetByID(ctx, "44444444-4444-4444-8444-444444444444", ids[0])
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.GetByID(ctx, tenantID, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactions_IDNoUUIDEsNoEncontrado(t *testing.T) {
	uc, _ := newTransactions(t)
	ctx := context.Background()

	for _, id := range []string{"abc", "TXN-LQ2-0001", "1", ""} {
		_, err := uc.GetByID(ctx, tenantID, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)

		_, _, err = uc.Receipt(ctx, tenantID, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
	}
}

func TestTransactions_Receipt(t *testing.T) {
	uc, store := newTransactions(t)
	ids := seedHistory(t, store, tenantID, entity.PaymentStatusCompleted)

	doc, filename, err := uc.Receipt(context.Background(), tenantID, ids[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
	assert.Regexp(t, `^TXN-.+\.pdf$`, filename)
}
