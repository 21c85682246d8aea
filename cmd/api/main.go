package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/pharmaops-api/docs"
	"github.com/jhoicas/pharmaops-api/internal/application/auth"
	"github.com/jhoicas/pharmaops-api/internal/application/checkout"
	"github.com/jhoicas/pharmaops-api/internal/application/usecase"
	"github.com/jhoicas/pharmaops-api/internal/domain/repository"
	"github.com/jhoicas/pharmaops-api/internal/infrastructure/cache"
	"github.com/jhoicas/pharmaops-api/internal/infrastructure/memory"
	"github.com/jhoicas/pharmaops-api/internal/infrastructure/payments"
	infrapdf "github.com/jhoicas/pharmaops-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pharmaops-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pharmaops-api/internal/interfaces/http"
	"github.com/jhoicas/pharmaops-api/pkg/config"
	"github.com/jhoicas/pharmaops-api/pkg/jwt"
	"github.com/jhoicas/pharmaops-api/pkg/logger"
)

type txRunner interface {
	auth.RegistrationTxRunner
	checkout.CheckoutTxRunner
}

// storage repositorios + transacciones del backend elegido con APP_STORAGE.
type storage struct {
	users        repository.UserRepository
	tenants      repository.TenantRepository
	transactions repository.TransactionRepository
	tx           txRunner
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.Storage == "memory" {
		log.Warn().Msg("APP_STORAGE=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storage{
			users:        store.Users(),
			tenants:      store.Tenants(),
			transactions: store.Transactions(),
			tx:           memory.NewTxRunner(store),
			close:        func() {},
		}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		users:        postgres.NewUserRepository(pool),
		tenants:      postgres.NewTenantRepository(pool),
		transactions: postgres.NewTransactionRepository(pool),
		tx:           postgres.NewTxRunner(pool),
		close:        pool.Close,
	}, nil
}

// openLedger usa Redis si REDIS_URL está definido; si no, un registro en memoria del proceso.
func openLedger(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (checkout.EventLedger, func()) {
	if cfg.URL == "" {
		return cache.NewMemoryEventLedger(cache.DefaultEventTTL), func() {}
	}
	ledger, err := cache.NewRedisEventLedger(ctx, cfg.URL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis no disponible, registro de eventos en memoria")
		return cache.NewMemoryEventLedger(cache.DefaultEventTTL), func() {}
	}
	return ledger, func() { _ = ledger.Close() }
}

// @title                      PharmaOps API
// @version                    1.0
// @description                API multi-tenant de farmacias: registro, cobro con Stripe y conciliación por webhook.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()

	signer, err := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		log.Fatal().Err(err).Msg("JWT_SECRET requerido")
	}
	gateway, err := payments.NewStripeGateway(cfg.Stripe, log)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de Stripe")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer store.close()

	ledger, closeLedger := openLedger(ctx, cfg.Redis, log)
	defer closeLedger()

	authUC := auth.NewAuthUseCase(store.users, store.tx, signer, log)
	checkoutUC := checkout.NewCheckoutUseCase(gateway, store.tenants, store.tx, log)
	webhookUC := checkout.NewWebhookUseCase(gateway, store.transactions, ledger, log)
	transactionUC := checkout.NewTransactionUseCase(store.transactions, store.tenants, infrapdf.NewReceiptGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 15,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI: http://localhost:<port>/docs
	docs.SwaggerInfo.Host = cfg.HTTP.Addr()
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "PharmaOps API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		UserUC:        usecase.NewUserUseCase(store.users),
		TenantUC:      usecase.NewTenantUseCase(store.tenants),
		CheckoutUC:    checkoutUC,
		WebhookUC:     webhookUC,
		TransactionUC: transactionUC,
		Tokens:        signer,
		Logger:        log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
