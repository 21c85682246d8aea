package repository

import (
	"context"

	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
)

// TransactionFilter filtros del listado de transacciones de un tenant.
type TransactionFilter struct {
	TenantID string
	Status   string // vacío = todos
	Limit    int
	Offset   int
}

// TransactionRepository define el puerto de persistencia para Transaction y sus líneas.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	CreateItem(ctx context.Context, item *entity.TransactionItem) error
	// GetByID devuelve la transacción con sus líneas en orden, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, int, error)
	// UpdateStatusByPaymentIntent aplica status a todas las transacciones con ese PaymentIntent
	// que estén en PENDING o ya en status (reaplicación idempotente). Es una única sentencia
	// condicional; nunca mueve una transacción de un estado terminal a otro.
	// receiptURL nil conserva el valor actual. Devuelve las filas afectadas.
	UpdateStatusByPaymentIntent(ctx context.Context, paymentIntentID, status string, receiptURL *string) (int64, error)
}
