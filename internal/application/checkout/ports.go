package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/internal/domain/repository"
)

// Tipos de evento del procesador que cambian el estado de una transacción.
const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
)

// PaymentIntentInput datos para crear la intención de cobro.
type PaymentIntentInput struct {
	Amount            decimal.Decimal // total con impuesto, en unidades mayores
	TenantID          string
	PatientID         string
	TransactionNumber string // también se usa como llave de idempotencia
}

// PaymentIntent lo que devuelve el procesador al crear la intención.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// WebhookEvent evento ya verificado y decodificado.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string // vacío si el objeto no es un PaymentIntent
	LatestChargeID  string // vacío si no hay cargo asociado
}

// PaymentGateway puerto hacia el procesador de pagos (Stripe).
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (*PaymentIntent, error)
	// ParseWebhookEvent verifica la firma y decodifica el evento. Firma inválida ->
	// domain.ErrInvalidSignature.
	ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error)
	ChargeReceiptURL(ctx context.Context, chargeID string) (string, error)
}

// CheckoutTxRunner persiste cabecera y líneas en una sola transacción.
type CheckoutTxRunner interface {
	RunCheckout(ctx context.Context, fn func(txs repository.TransactionRepository) error) error
}

// EventLedger recuerda los eventos de webhook ya aplicados.
type EventLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Remember(ctx context.Context, eventID string) error
}

// ReceiptGenerator genera el comprobante PDF de una transacción.
type ReceiptGenerator interface {
	Generate(tx *entity.Transaction, tenant *entity.Tenant) ([]byte, error)
}
