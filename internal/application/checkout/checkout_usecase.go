// Package checkout orquesta el cobro del POS: intención de pago, transacción local y
// conciliación por webhooks del procesador.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pharmaops-api/internal/application/dto"
	"github.com/jhoicas/pharmaops-api/internal/domain"
	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/internal/domain/pos"
	"github.com/jhoicas/pharmaops-api/internal/domain/repository"
	"github.com/jhoicas/pharmaops-api/pkg/logger"
)

// CheckoutUseCase inicia un cobro: crea la intención en el procesador y la transacción PENDING.
type CheckoutUseCase struct {
	gateway    PaymentGateway
	tenantRepo repository.TenantRepository
	txRunner   CheckoutTxRunner
	log        *logger.Logger
	now        func() time.Time
}

// NewCheckoutUseCase construye el caso de uso.
func NewCheckoutUseCase(gateway PaymentGateway, tenantRepo repository.TenantRepository, txRunner CheckoutTxRunner, log *logger.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{
		gateway:    gateway,
		tenantRepo: tenantRepo,
		txRunner:   txRunner,
		log:        log.Named("checkout"),
		now:        time.Now,
	}
}

// Checkout valida el carrito, pide la intención de pago por el total y persiste la venta.
// No hay reintentos: si el procesador falla no se crea ninguna transacción; si falla la
// persistencia después de crear la intención, esta queda huérfana y se registra en el log.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, in dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	// Se valida el total ya redondeado: es el que viaja al procesador y se persiste.
	total := in.Total.Round(2)
	if err := pos.CheckChargeTotal(total); err != nil {
		return nil, fmt.Errorf("%w: total %v", domain.ErrInvalidInput, err)
	}
	for i, it := range in.Items {
		if it.UnitPrice.IsNegative() || it.Total.IsNegative() {
			return nil, fmt.Errorf("%w: items[%d] tiene montos negativos", domain.ErrInvalidInput, i)
		}
	}

	tenant, err := uc.tenantRepo.GetByID(ctx, in.TenantID)
	if err != nil {
		uc.log.Error().Err(err).Str("tenant_id", in.TenantID).Msg("consulta de tenant en checkout")
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.now().UTC()
	amount, tax := pos.SplitTotal(total)
	number := pos.NewTransactionNumber(now)

	intent, err := uc.gateway.CreatePaymentIntent(ctx, PaymentIntentInput{
		Amount:            total,
		TenantID:          in.TenantID,
		PatientID:         in.PatientID,
		TransactionNumber: number,
	})
	if err != nil {
		uc.log.Error().Err(err).Str("transaction_number", number).Msg("no se pudo crear la intención de pago")
		return nil, fmt.Errorf("crear intención de pago: %w", err)
	}

	txn := &entity.Transaction{
		ID:                uuid.New().String(),
		TransactionNumber: number,
		TenantID:          in.TenantID,
		PatientID:         in.PatientID,
		Amount:            amount,
		Tax:               tax,
		Total:             total,
		PaymentMethod:     paymentMethod(in.PaymentMethod),
		PaymentStatus:     entity.PaymentStatusPending,
		StripePaymentID:   intent.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for i, it := range in.Items {
		lineTotal := it.Total.Round(2)
		if lineTotal.IsZero() {
			lineTotal = pos.LineTotal(it.Quantity, it.UnitPrice)
		}
		txn.Items = append(txn.Items, &entity.TransactionItem{
			ID:            uuid.New().String(),
			TransactionID: txn.ID,
			Position:      i + 1,
			Name:          strings.TrimSpace(it.Name),
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice.Round(2),
			Total:         lineTotal,
		})
	}

	err = uc.txRunner.RunCheckout(ctx, func(txs repository.TransactionRepository) error {
		if err := txs.Create(ctx, txn); err != nil {
			return err
		}
		for _, item := range txn.Items {
			if err := txs.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		uc.log.Error().Err(err).
			Str("payment_intent_id", intent.ID).
			Str("transaction_number", number).
			Msg("intención de pago creada sin transacción local; requiere conciliación manual")
		return nil, fmt.Errorf("guardar transacción: %w", err)
	}

	uc.log.Info().
		Str("transaction_id", txn.ID).
		Str("transaction_number", number).
		Str("payment_intent_id", intent.ID).
		Str("total", total.StringFixed(2)).
		Msg("checkout iniciado")

	return &dto.CheckoutResponse{
		ClientSecret:      intent.ClientSecret,
		TransactionID:     txn.ID,
		TransactionNumber: number,
	}, nil
}

// paymentMethod "card" (sin importar mayúsculas) es tarjeta; cualquier otro valor se registra como efectivo.
func paymentMethod(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "card") {
		return entity.PaymentMethodCard
	}
	return entity.PaymentMethodCash
}
