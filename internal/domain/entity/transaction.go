package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago del POS.
const (
	PaymentMethodCard = "CARD"
	PaymentMethodCash = "CASH"
)

// Estados de pago. Solo existen las transiciones PENDING→COMPLETED y PENDING→FAILED,
// y únicamente a partir de webhooks verificados del procesador.
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
)

// Transaction cabecera de una venta del POS.
type Transaction struct {
	ID                string
	TransactionNumber string
	TenantID          string
	PatientID         string
	Amount            decimal.Decimal // total - tax
	Tax               decimal.Decimal
	Total             decimal.Decimal
	PaymentMethod     string
	PaymentStatus     string
	StripePaymentID   string  // id del PaymentIntent (pi_...)
	StripeReceiptURL  *string // nil hasta que llega payment_intent.succeeded con cargo
	Items             []*TransactionItem
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsTerminal indica si la transacción ya no admite cambios de estado.
func (t *Transaction) IsTerminal() bool {
	return t.PaymentStatus == PaymentStatusCompleted || t.PaymentStatus == PaymentStatusFailed
}

// TransactionItem línea de la venta (el orden se conserva con Position).
type TransactionItem struct {
	ID            string
	TransactionID string
	Position      int
	Name          string
	Quantity      int
	UnitPrice     decimal.Decimal
	Total         decimal.Decimal
}
