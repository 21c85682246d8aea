// Package memory implementa los puertos de persistencia en memoria. Se usa en tests de casos
// de uso y handlers, y con APP_STORAGE=memory para levantar la API sin PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pharmaops-api/internal/domain"
	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/internal/domain/repository"
)

type state struct {
	tenants map[string]entity.Tenant
	users   map[string]entity.User
	txs     map[string]entity.Transaction
	items   map[string][]entity.TransactionItem
}

func newState() *state {
	return &state{
		tenants: map[string]entity.Tenant{},
		users:   map[string]entity.User{},
		txs:     map[string]entity.Transaction{},
		items:   map[string][]entity.TransactionItem{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.tenants {
		c.tenants[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.txs {
		c.txs[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]entity.TransactionItem(nil), v...)
	}
	return c
}

// Store base compartida por todos los repos. Las transacciones trabajan sobre una copia que
// reemplaza al estado solo si el callback termina sin error.
type Store struct {
	mu sync.Mutex
	st *state

	// FailUserCreate, si no es nil, lo devuelve el siguiente Create de usuario (tests de atomicidad).
	FailUserCreate error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// view ejecuta fn con el estado protegido por el mutex.
func (s *Store) view(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Counts cantidad de tenants, usuarios y transacciones (aserciones en tests).
func (s *Store) Counts() (tenants, users, transactions int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.tenants), len(s.st.users), len(s.st.txs)
}

// Repos ----------------------------------------------------------------------

type scope struct {
	s  *Store
	tx *state // no nil dentro de TxRunner
}

func (sc scope) do(fn func(st *state) error) error {
	if sc.tx != nil {
		return fn(sc.tx)
	}
	return sc.s.view(fn)
}

// TenantRepo repositorio de tenants en memoria.
type TenantRepo struct{ scope }

// UserRepo repositorio de usuarios en memoria.
type UserRepo struct{ scope }

// TransactionRepo repositorio de transacciones en memoria.
type TransactionRepo struct{ scope }

var (
	_ repository.TenantRepository      = (*TenantRepo)(nil)
	_ repository.UserRepository        = (*UserRepo)(nil)
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
)

// Tenants repo fuera de transacción.
func (s *Store) Tenants() *TenantRepo { return &TenantRepo{scope{s: s}} }

// Users repo fuera de transacción.
func (s *Store) Users() *UserRepo { return &UserRepo{scope{s: s}} }

// Transactions repo fuera de transacción.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{scope{s: s}} }

// Create guarda el tenant; ErrDuplicate si el slug ya existe.
func (r *TenantRepo) Create(_ context.Context, t *entity.Tenant) error {
	return r.do(func(st *state) error {
		for _, existing := range st.tenants {
			if existing.Slug == t.Slug {
				return fmt.Errorf("%w: slug %q", domain.ErrDuplicate, t.Slug)
			}
		}
		st.tenants[t.ID] = *t
		return nil
	})
}

// GetByID tenant por ID; nil si no existe.
func (r *TenantRepo) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	var out *entity.Tenant
	err := r.do(func(st *state) error {
		if t, ok := st.tenants[id]; ok {
			out = &t
		}
		return nil
	})
	return out, err
}

// GetBySlug tenant por slug; nil si no existe.
func (r *TenantRepo) GetBySlug(_ context.Context, slug string) (*entity.Tenant, error) {
	var out *entity.Tenant
	err := r.do(func(st *state) error {
		for _, t := range st.tenants {
			if t.Slug == slug {
				t := t
				out = &t
				return nil
			}
		}
		return nil
	})
	return out, err
}

// List tenants con su cantidad de usuarios, más recientes primero.
func (r *TenantRepo) List(_ context.Context, limit, offset int) ([]*entity.TenantSummary, error) {
	var out []*entity.TenantSummary
	err := r.do(func(st *state) error {
		counts := map[string]int{}
		for _, u := range st.users {
			counts[u.TenantID]++
		}
		all := make([]*entity.TenantSummary, 0, len(st.tenants))
		for _, t := range st.tenants {
			all = append(all, &entity.TenantSummary{Tenant: t, UserCount: counts[t.ID]})
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.After(all[j].CreatedAt)
			}
			return all[i].ID < all[j].ID
		})
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}

// Count total de tenants.
func (r *TenantRepo) Count(_ context.Context) (int, error) {
	var n int
	err := r.do(func(st *state) error {
		n = len(st.tenants)
		return nil
	})
	return n, err
}

// Create guarda el usuario con email en minúsculas; ErrEmailAlreadyExists si el email ya existe.
func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.do(func(st *state) error {
		if err := r.s.FailUserCreate; err != nil {
			r.s.FailUserCreate = nil
			return err
		}
		email := strings.ToLower(u.Email)
		for _, existing := range st.users {
			if existing.Email == email {
				return domain.ErrEmailAlreadyExists
			}
		}
		cp := *u
		cp.Email = email
		st.users[u.ID] = cp
		return nil
	})
}

// GetByID usuario por ID; nil si no existe.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.do(func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

// GetByEmail búsqueda sin distinguir mayúsculas; nil si no existe.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(email)
	var out *entity.User
	err := r.do(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Create guarda la cabecera sin líneas; ErrDuplicate si el número ya existe.
func (r *TransactionRepo) Create(_ context.Context, t *entity.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return r.do(func(st *state) error {
		for _, existing := range st.txs {
			if existing.TransactionNumber == t.TransactionNumber {
				return fmt.Errorf("%w: transaction_number %s", domain.ErrDuplicate, t.TransactionNumber)
			}
		}
		cp := *t
		cp.Items = nil
		st.txs[t.ID] = cp
		return nil
	})
}

// CreateItem agrega una línea a una transacción existente.
func (r *TransactionRepo) CreateItem(_ context.Context, item *entity.TransactionItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	return r.do(func(st *state) error {
		if _, ok := st.txs[item.TransactionID]; !ok {
			return fmt.Errorf("insert transaction item: transacción %s no existe", item.TransactionID)
		}
		st.items[item.TransactionID] = append(st.items[item.TransactionID], *item)
		return nil
	})
}

// GetByID transacción con sus líneas ordenadas por posición; nil si no existe.
func (r *TransactionRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := r.do(func(st *state) error {
		t, ok := st.txs[id]
		if !ok {
			return nil
		}
		items := append([]entity.TransactionItem(nil), st.items[id]...)
		sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
		for i := range items {
			t.Items = append(t.Items, &items[i])
		}
		out = &t
		return nil
	})
	return out, err
}

// List página de transacciones del tenant (filtro opcional por estado) y el total sin paginar.
func (r *TransactionRepo) List(_ context.Context, f repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	var (
		out   []*entity.Transaction
		total int
	)
	err := r.do(func(st *state) error {
		var all []*entity.Transaction
		for _, t := range st.txs {
			if t.TenantID != f.TenantID || (f.Status != "" && t.PaymentStatus != f.Status) {
				continue
			}
			t := t
			all = append(all, &t)
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.After(all[j].CreatedAt)
			}
			return all[i].ID < all[j].ID
		})
		total = len(all)
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

// UpdateStatusByPaymentIntent mismas reglas que el UPDATE condicional de PostgreSQL.
func (r *TransactionRepo) UpdateStatusByPaymentIntent(_ context.Context, paymentIntentID, status string, receiptURL *string) (int64, error) {
	var n int64
	err := r.do(func(st *state) error {
		now := time.Now().UTC()
		for id, t := range st.txs {
			if t.StripePaymentID != paymentIntentID {
				continue
			}
			if t.PaymentStatus != entity.PaymentStatusPending && t.PaymentStatus != status {
				continue
			}
			t.PaymentStatus = status
			if receiptURL != nil {
				url := *receiptURL
				t.StripeReceiptURL = &url
			}
			t.UpdatedAt = now
			st.txs[id] = t
			n++
		}
		return nil
	})
	return n, err
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}

// TxRunner -------------------------------------------------------------------

// TxRunner ejecuta callbacks sobre una copia del estado; la copia se publica solo si no hay error.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

func (r *TxRunner) run(fn func(tx *state) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	work := r.s.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	r.s.st = work
	return nil
}

// RunRegistration tenant + usuario de forma atómica.
func (r *TxRunner) RunRegistration(ctx context.Context, fn func(
	tenants repository.TenantRepository,
	users repository.UserRepository,
) error) error {
	return r.run(func(tx *state) error {
		sc := scope{s: r.s, tx: tx}
		return fn(&TenantRepo{sc}, &UserRepo{sc})
	})
}

// RunCheckout cabecera + líneas de forma atómica.
func (r *TxRunner) RunCheckout(ctx context.Context, fn func(txs repository.TransactionRepository) error) error {
	return r.run(func(tx *state) error {
		return fn(&TransactionRepo{scope{s: r.s, tx: tx}})
	})
}
