package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRequest body de POST /api/stripe/checkout.
// Total ya incluye impuesto; amount y tax se derivan en el caso de uso.
type CheckoutRequest struct {
	Items         []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
	Total         decimal.Decimal       `json:"total"`
	PaymentMethod string                `json:"paymentMethod" validate:"required"`
	PatientID     string                `json:"patientId" validate:"required,max=64"`
	TenantID      string                `json:"tenantId" validate:"required,uuid"`
}

// CheckoutItemRequest línea del carrito. Total vacío o cero se calcula como quantity × unitPrice.
type CheckoutItemRequest struct {
	Name      string          `json:"name" validate:"required,max=200"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

// CheckoutResponse lo que necesita el cliente para confirmar el pago con Stripe.js.
type CheckoutResponse struct {
	ClientSecret      string `json:"clientSecret"`
	TransactionID     string `json:"transactionId"`
	TransactionNumber string `json:"transactionNumber"`
}

// WebhookResponse acuse de recibo devuelto al procesador.
type WebhookResponse struct {
	Received bool `json:"received"`
}

// TransactionListRequest query de GET /api/transactions.
type TransactionListRequest struct {
	PageRequest
	Status string `query:"status" validate:"omitempty,oneof=PENDING COMPLETED FAILED"`
}

// TransactionItemResponse línea en respuestas.
type TransactionItemResponse struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

// TransactionResponse transacción completa.
type TransactionResponse struct {
	ID                string                    `json:"id"`
	TransactionNumber string                    `json:"transactionNumber"`
	TenantID          string                    `json:"tenantId"`
	PatientID         string                    `json:"patientId"`
	Amount            decimal.Decimal           `json:"amount"`
	Tax               decimal.Decimal           `json:"tax"`
	Total             decimal.Decimal           `json:"total"`
	PaymentMethod     string                    `json:"paymentMethod"`
	PaymentStatus     string                    `json:"paymentStatus"`
	StripePaymentID   string                    `json:"stripePaymentId"`
	StripeReceiptURL  *string                   `json:"stripeReceiptUrl"`
	Items             []TransactionItemResponse `json:"items"`
	CreatedAt         time.Time                 `json:"createdAt"`
	UpdatedAt         time.Time                 `json:"updatedAt"`
}

// TransactionListResponse página de transacciones.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
