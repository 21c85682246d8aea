package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/pharmaops-api/internal/domain"
	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación de TransactionRepository (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const transactionColumns = `id, transaction_number, tenant_id, patient_id, amount, tax, total,
	payment_method, payment_status, stripe_payment_id, stripe_receipt_url, created_at, updated_at`

// Create persiste la cabecera (sin líneas; ver CreateItem).
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TransactionNumber, t.TenantID, t.PatientID, t.Amount, t.Tax, t.Total,
		t.PaymentMethod, t.PaymentStatus, t.StripePaymentID, t.StripeReceiptURL,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) && violatedConstraint(err) == uniqueTransactionsNumber {
			return fmt.Errorf("%w: transaction_number %s", domain.ErrDuplicate, t.TransactionNumber)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de la venta.
func (r *TransactionRepo) CreateItem(ctx context.Context, item *entity.TransactionItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transaction_items (id, transaction_id, position, name, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.TransactionID, item.Position, item.Name, item.Quantity, item.UnitPrice, item.Total,
	)
	if err != nil {
		return fmt.Errorf("insert transaction item: %w", err)
	}
	return nil
}

// GetByID obtiene la transacción con sus líneas en orden; nil si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if t == nil {
		return nil, nil
	}
	items, err := r.itemsOf(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return t, nil
}

func (r *TransactionRepo) itemsOf(ctx context.Context, transactionID string) ([]*entity.TransactionItem, error) {
	query := `
		SELECT id, transaction_id, position, name, quantity, unit_price, total
		FROM transaction_items WHERE transaction_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()
	var list []*entity.TransactionItem
	for rows.Next() {
		var it entity.TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.Position, &it.Name, &it.Quantity, &it.UnitPrice, &it.Total); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// List página de transacciones de un tenant (sin líneas) y el total que cumple el filtro.
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	where := []string{"tenant_id = $1"}
	args := []any{f.TenantID}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		transactionColumns, cond, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

// UpdateStatusByPaymentIntent transición condicional en una sola sentencia: solo toca filas
// en PENDING o ya en el estado destino, de modo que un webhook repetido o fuera de orden
// nunca revierte un estado terminal.
func (r *TransactionRepo) UpdateStatusByPaymentIntent(ctx context.Context, paymentIntentID, status string, receiptURL *string) (int64, error) {
	query := `
		UPDATE transactions
		SET payment_status     = $2,
		    stripe_receipt_url = COALESCE($3, stripe_receipt_url),
		    updated_at         = NOW()
		WHERE stripe_payment_id = $1
		  AND payment_status IN ('PENDING', $2)`
	tag, err := r.q.Exec(ctx, query, paymentIntentID, status, receiptURL)
	if err != nil {
		return 0, fmt.Errorf("update transaction status: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanTransaction(row rowScanner) (*entity.Transaction, error) {
	var t entity.Transaction
	err := row.Scan(&t.ID, &t.TransactionNumber, &t.TenantID, &t.PatientID, &t.Amount, &t.Tax, &t.Total,
		&t.PaymentMethod, &t.PaymentStatus, &t.StripePaymentID, &t.StripeReceiptURL,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
