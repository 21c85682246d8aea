package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/pharmaops-api/internal/application/dto"
	"github.com/jhoicas/pharmaops-api/internal/domain"
	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/internal/domain/repository"
)

// TransactionUseCase consultas del historial del POS, siempre acotadas al tenant del usuario.
type TransactionUseCase struct {
	txRepo     repository.TransactionRepository
	tenantRepo repository.TenantRepository
	receipts   ReceiptGenerator
}

// NewTransactionUseCase construye el caso de uso.
func NewTransactionUseCase(txRepo repository.TransactionRepository, tenantRepo repository.TenantRepository, receipts ReceiptGenerator) *TransactionUseCase {
	return &TransactionUseCase{txRepo: txRepo, tenantRepo: tenantRepo, receipts: receipts}
}

// List página de transacciones del tenant.
func (uc *TransactionUseCase) List(ctx context.Context, tenantID string, in dto.TransactionListRequest) (*dto.TransactionListResponse, error) {
	in.DefaultPage()
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	list, total, err := uc.txRepo.List(ctx, repository.TransactionFilter{
		TenantID: tenantID,
		Status:   in.Status,
		Limit:    in.Limit,
		Offset:   in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.TransactionListResponse{
		Items: make([]dto.TransactionResponse, 0, len(list)),
		Page:  in.Result(total),
	}
	for _, t := range list {
		out.Items = append(out.Items, toTransactionResponse(t))
	}
	return out, nil
}

// GetByID transacción con sus líneas. De otro tenant -> domain.ErrForbidden.
func (uc *TransactionUseCase) GetByID(ctx context.Context, tenantID, id string) (*dto.TransactionResponse, error) {
	t, err := uc.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	out := toTransactionResponse(t)
	return &out, nil
}

// Receipt comprobante PDF de la transacción.
func (uc *TransactionUseCase) Receipt(ctx context.Context, tenantID, id string) ([]byte, string, error) {
	t, err := uc.load(ctx, tenantID, id)
	if err != nil {
		return nil, "", err
	}
	tenant, err := uc.tenantRepo.GetByID(ctx, t.TenantID)
	if err != nil {
		return nil, "", err
	}
	if tenant == nil {
		return nil, "", domain.ErrNotFound
	}
	pdf, err := uc.receipts.Generate(t, tenant)
	if err != nil {
		return nil, "", fmt.Errorf("generar comprobante: %w", err)
	}
	return pdf, t.TransactionNumber + ".pdf", nil
}

// load un id que no es UUID no puede existir; no llega a la columna UUID de PostgreSQL.
func (uc *TransactionUseCase) load(ctx context.Context, tenantID, id string) (*entity.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	t, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if t.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}
	return t, nil
}

func toTransactionResponse(t *entity.Transaction) dto.TransactionResponse {
	out := dto.TransactionResponse{
		ID:                t.ID,
		TransactionNumber: t.TransactionNumber,
		TenantID:          t.TenantID,
		PatientID:         t.PatientID,
		Amount:            t.Amount,
		Tax:               t.Tax,
		Total:             t.Total,
		PaymentMethod:     t.PaymentMethod,
		PaymentStatus:     t.PaymentStatus,
		StripePaymentID:   t.StripePaymentID,
		StripeReceiptURL:  t.StripeReceiptURL,
		Items:             make([]dto.TransactionItemResponse, 0, len(t.Items)),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, dto.TransactionItemResponse{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.Total,
		})
	}
	return out
}
