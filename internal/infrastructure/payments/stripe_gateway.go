// Package payments adapta el procesador de pagos (Stripe) al puerto checkout.PaymentGateway.
package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/jhoicas/pharmaops-api/internal/application/checkout"
	"github.com/jhoicas/pharmaops-api/internal/domain"
	"github.com/jhoicas/pharmaops-api/internal/domain/pos"
	"github.com/jhoicas/pharmaops-api/pkg/config"
	"github.com/jhoicas/pharmaops-api/pkg/logger"
)

var _ checkout.PaymentGateway = (*StripeGateway)(nil)

// Claves de metadata en el PaymentIntent.
const (
	MetaTenantID          = "tenant_id"
	MetaPatientID         = "patient_id"
	MetaTransactionNumber = "transaction_number"
)

// StripeGateway cliente de Stripe con llave y backend propios (no usa el estado global del SDK).
type StripeGateway struct {
	api           *client.API
	currency      string
	webhookSecret string
	log           *logger.Logger
}

// NewStripeGateway construye el gateway contra la API real. El SDK no reintenta: un fallo
// transitorio al crear la intención llega tal cual al cliente.
func NewStripeGateway(cfg config.StripeConfig, log *logger.Logger) (*StripeGateway, error) {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	})
	return NewStripeGatewayWithBackends(cfg, &stripe.Backends{API: backend}, log)
}

// NewStripeGatewayWithBackends permite inyectar el backend HTTP (tests).
func NewStripeGatewayWithBackends(cfg config.StripeConfig, backends *stripe.Backends, log *logger.Logger) (*StripeGateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &StripeGateway{
		api:           client.New(cfg.SecretKey, backends),
		currency:      cfg.Currency,
		webhookSecret: cfg.WebhookSecret,
		log:           log.Named("stripe"),
	}, nil
}

// CreatePaymentIntent crea la intención por el total en centavos con métodos automáticos.
// El número de transacción viaja como metadata y como llave de idempotencia.
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, in checkout.PaymentIntentInput) (*checkout.PaymentIntent, error) {
	cents, err := pos.ToMinorUnits(in.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(cents),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey("checkout-" + in.TransactionNumber)
	params.AddMetadata(MetaTenantID, in.TenantID)
	params.AddMetadata(MetaPatientID, in.PatientID)
	params.AddMetadata(MetaTransactionNumber, in.TransactionNumber)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: crear payment intent: %w", err)
	}
	g.log.Debug().Str("payment_intent_id", pi.ID).Int64("amount", pi.Amount).Msg("payment intent creado")
	return &checkout.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ParseWebhookEvent verifica la firma (tolerancia por defecto del SDK) y extrae los datos del
// PaymentIntent cuando el objeto lo es.
func (g *StripeGateway) ParseWebhookEvent(payload []byte, signature string) (*checkout.WebhookEvent, error) {
	if signature == "" {
		return nil, domain.ErrMissingSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	out := &checkout.WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return out, nil
	}
	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: objeto del evento ilegible: %v", domain.ErrInvalidInput, err)
	}
	if obj.Object != "payment_intent" {
		return out, nil
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: payment intent ilegible: %v", domain.ErrInvalidInput, err)
	}
	out.PaymentIntentID = pi.ID
	if pi.LatestCharge != nil {
		out.LatestChargeID = pi.LatestCharge.ID
	}
	return out, nil
}

// ChargeReceiptURL URL pública del recibo del cargo.
func (g *StripeGateway) ChargeReceiptURL(ctx context.Context, chargeID string) (string, error) {
	params := &stripe.ChargeParams{}
	params.Context = ctx
	ch, err := g.api.Charges.Get(chargeID, params)
	if err != nil {
		return "", fmt.Errorf("stripe: consultar cargo: %w", err)
	}
	return ch.ReceiptURL, nil
}
