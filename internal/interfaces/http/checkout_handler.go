package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmaops-api/internal/application/checkout"
	"github.com/jhoicas/pharmaops-api/internal/application/dto"
	"github.com/jhoicas/pharmaops-api/internal/domain"
	"github.com/jhoicas/pharmaops-api/pkg/logger"
)

// maxWebhookPayloadSize tope del cuerpo que acepta el webhook (64 KiB).
const maxWebhookPayloadSize = 64 << 10

// StripeHandler expone el inicio de cobro y el webhook del procesador.
type StripeHandler struct {
	checkout *checkout.CheckoutUseCase
	webhooks *checkout.WebhookUseCase
	log      *logger.Logger
}

// NewStripeHandler construye el handler de pagos.
func NewStripeHandler(co *checkout.CheckoutUseCase, wh *checkout.WebhookUseCase, log *logger.Logger) *StripeHandler {
	return &StripeHandler{checkout: co, webhooks: wh, log: log.Named("stripe_handler")}
}

// Checkout godoc
// @Summary      Iniciar cobro
// @Description  Crea la intención de pago y la transacción PENDING. El total ya incluye impuesto.
// @Tags         stripe
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "carrito"
// @Success      200   {object}  dto.CheckoutResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/stripe/checkout [post]
func (h *StripeHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.checkout.Checkout(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return errorJSON(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
		case errors.Is(err, domain.ErrNotFound):
			return errorJSON(c, fiber.StatusNotFound, "TENANT_NOT_FOUND", "el tenant no existe")
		}
		return internalError(c, h.log, err, "checkout fallido")
	}
	return c.JSON(out)
}

// Webhook godoc
// @Summary      Webhook de Stripe
// @Description  Verifica la firma y concilia el estado de la transacción. Un 400 hace que Stripe reintente.
// @Tags         stripe
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature  header  string  true  "firma del evento"
// @Success      200  {object}  dto.WebhookResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      413  {object}  dto.ErrorResponse
// @Router       /api/stripe/webhook [post]
func (h *StripeHandler) Webhook(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return errorJSON(c, fiber.StatusBadRequest, "MISSING_SIGNATURE", "falta el header Stripe-Signature")
	}
	body := c.Body()
	if len(body) > maxWebhookPayloadSize {
		return errorJSON(c, fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "payload demasiado grande")
	}
	// fasthttp reutiliza el buffer al terminar el request.
	payload := append([]byte(nil), body...)

	if err := h.webhooks.HandleWebhook(c.UserContext(), payload, signature); err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) || errors.Is(err, domain.ErrMissingSignature) {
			h.log.Warn().Err(err).Msg("webhook con firma inválida")
			return errorJSON(c, fiber.StatusBadRequest, "INVALID_SIGNATURE", "firma inválida")
		}
		h.log.Error().Err(err).Msg("webhook no procesado, Stripe reintentará")
		return errorJSON(c, fiber.StatusBadRequest, "WEBHOOK_ERROR", "no se pudo procesar el evento")
	}
	return c.JSON(dto.WebhookResponse{Received: true})
}
