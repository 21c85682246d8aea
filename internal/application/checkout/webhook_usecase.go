package checkout

import (
	"context"
	"fmt"

	"github.com/jhoicas/pharmaops-api/internal/domain"
	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/internal/domain/repository"
	"github.com/jhoicas/pharmaops-api/pkg/logger"
)

// WebhookUseCase aplica los eventos verificados del procesador al estado de las transacciones.
type WebhookUseCase struct {
	gateway PaymentGateway
	txRepo  repository.TransactionRepository
	ledger  EventLedger
	log     *logger.Logger
}

// NewWebhookUseCase construye el caso de uso. ledger nil equivale a no recordar eventos.
func NewWebhookUseCase(gateway PaymentGateway, txRepo repository.TransactionRepository, ledger EventLedger, log *logger.Logger) *WebhookUseCase {
	if ledger == nil {
		ledger = NopLedger{}
	}
	return &WebhookUseCase{gateway: gateway, txRepo: txRepo, ledger: ledger, log: log.Named("webhook")}
}

// HandleWebhook verifica la firma y aplica el evento. Cualquier error debe responderse con 400
// para que el procesador reintente la entrega.
func (uc *WebhookUseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if signature == "" {
		return domain.ErrMissingSignature
	}
	event, err := uc.gateway.ParseWebhookEvent(payload, signature)
	if err != nil {
		uc.log.Warn().Err(err).Msg("webhook rechazado")
		return err
	}

	log := uc.log.Zerolog().With().Str("event_id", event.ID).Str("event_type", event.Type).Logger()

	seen, err := uc.ledger.Seen(ctx, event.ID)
	if err != nil {
		// Sin registro de eventos se sigue: el UPDATE condicional ya es idempotente.
		log.Warn().Err(err).Msg("no se pudo consultar el registro de eventos")
	}
	if seen {
		log.Debug().Msg("evento ya aplicado")
		return nil
	}

	switch event.Type {
	case EventPaymentIntentSucceeded:
		err = uc.applySucceeded(ctx, event)
	case EventPaymentIntentFailed:
		err = uc.applyStatus(ctx, event, entity.PaymentStatusFailed, nil)
	default:
		log.Debug().Msg("evento ignorado")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Str("payment_intent_id", event.PaymentIntentID).Msg("no se pudo aplicar el evento")
		return err
	}

	if err := uc.ledger.Remember(ctx, event.ID); err != nil {
		log.Warn().Err(err).Msg("no se pudo registrar el evento")
	}
	return nil
}

func (uc *WebhookUseCase) applySucceeded(ctx context.Context, event *WebhookEvent) error {
	var receiptURL *string
	if event.LatestChargeID != "" {
		url, err := uc.gateway.ChargeReceiptURL(ctx, event.LatestChargeID)
		if err != nil {
			return fmt.Errorf("consultar cargo %s: %w", event.LatestChargeID, err)
		}
		if url != "" {
			receiptURL = &url
		}
	}
	return uc.applyStatus(ctx, event, entity.PaymentStatusCompleted, receiptURL)
}

func (uc *WebhookUseCase) applyStatus(ctx context.Context, event *WebhookEvent, status string, receiptURL *string) error {
	if event.PaymentIntentID == "" {
		return fmt.Errorf("%w: evento %s sin payment intent", domain.ErrInvalidInput, event.ID)
	}
	n, err := uc.txRepo.UpdateStatusByPaymentIntent(ctx, event.PaymentIntentID, status, receiptURL)
	if err != nil {
		return err
	}
	ev := uc.log.Info()
	if n == 0 {
		// Intención desconocida o transacción ya en el estado terminal opuesto.
		ev = uc.log.Warn()
	}
	ev.Str("event_id", event.ID).
		Str("payment_intent_id", event.PaymentIntentID).
		Str("status", status).
		Int64("rows", n).
		Msg("estado de pago aplicado")
	return nil
}

// NopLedger registro de eventos que no recuerda nada.
type NopLedger struct{}

// Seen siempre false.
func (NopLedger) Seen(context.Context, string) (bool, error) { return false, nil }

// Remember no hace nada.
func (NopLedger) Remember(context.Context, string) error { return nil }
