package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/pharmaops-api/internal/application/auth"
	"github.com/jhoicas/pharmaops-api/internal/application/checkout"
	"github.com/jhoicas/pharmaops-api/internal/domain/repository"
)

var (
	_ auth.RegistrationTxRunner = (*TxRunner)(nil)
	_ checkout.CheckoutTxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunRegistration crea tenant y usuario en la misma transacción: si falla el usuario no queda
// un tenant huérfano.
func (r *TxRunner) RunRegistration(ctx context.Context, fn func(
	tenants repository.TenantRepository,
	users repository.UserRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewTenantRepository(tx), NewUserRepository(tx))
	})
}

// RunCheckout persiste cabecera y líneas de la venta de forma atómica.
func (r *TxRunner) RunCheckout(ctx context.Context, fn func(txs repository.TransactionRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewTransactionRepository(tx))
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
