package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmaops-api/internal/application/auth"
	"github.com/jhoicas/pharmaops-api/internal/application/checkout"
	"github.com/jhoicas/pharmaops-api/internal/application/usecase"
	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	UserUC        *usecase.UserUseCase
	TenantUC      *usecase.TenantUseCase
	CheckoutUC    *checkout.CheckoutUseCase
	WebhookUC     *checkout.WebhookUseCase
	TransactionUC *checkout.TransactionUseCase
	Tokens        TokenVerifier
	Logger        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.Tokens)

	// Auth (público salvo /me)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC, deps.Logger)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", requireAuth, authHandler.Me)

	// Stripe: el checkout lo llama el POS y el webhook lo llama Stripe con su firma.
	stripeHandler := NewStripeHandler(deps.CheckoutUC, deps.WebhookUC, deps.Logger)
	stripeGroup := api.Group("/stripe")
	stripeGroup.Post("/checkout", stripeHandler.Checkout)
	stripeGroup.Post("/webhook", stripeHandler.Webhook)

	// Transacciones (protegido, acotado al tenant del token)
	txHandler := NewTransactionHandler(deps.TransactionUC, deps.Logger)
	transactions := api.Group("/transactions", requireAuth)
	transactions.Get("/", txHandler.List)
	transactions.Get("/:id", txHandler.GetByID)
	transactions.Get("/:id/receipt", txHandler.Receipt)

	// Administración de plataforma
	adminHandler := NewAdminHandler(deps.TenantUC, deps.Logger)
	admin := api.Group("/admin", requireAuth, RequireRole(entity.RoleAdmin, entity.RoleSuperAdmin))
	admin.Get("/tenants", adminHandler.ListTenants)
}
