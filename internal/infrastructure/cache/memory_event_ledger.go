package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/pharmaops-api/internal/application/checkout"
)

var _ checkout.EventLedger = (*MemoryEventLedger)(nil)

// MemoryEventLedger registro local de una sola instancia (sin REDIS_URL). Las entradas vencidas
// se descartan al consultarlas o al registrar nuevas.
type MemoryEventLedger struct {
	mu      sync.Mutex
	entries map[string]time.Time // eventID -> vencimiento
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryEventLedger crea el registro con el TTL dado (0 = DefaultEventTTL).
func NewMemoryEventLedger(ttl time.Duration) *MemoryEventLedger {
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}
	return &MemoryEventLedger{entries: map[string]time.Time{}, ttl: ttl, now: time.Now}
}

// Seen indica si el evento se registró y sigue vigente.
func (l *MemoryEventLedger) Seen(_ context.Context, eventID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.entries[eventID]
	if !ok {
		return false, nil
	}
	if l.now().After(exp) {
		delete(l.entries, eventID)
		return false, nil
	}
	return true, nil
}

// Remember registra el evento por el TTL; no renueva una entrada vigente.
func (l *MemoryEventLedger) Remember(_ context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for id, exp := range l.entries {
		if now.After(exp) {
			delete(l.entries, id)
		}
	}
	if _, ok := l.entries[eventID]; !ok {
		l.entries[eventID] = now.Add(l.ttl)
	}
	return nil
}

// Len entradas vigentes o pendientes de purga.
func (l *MemoryEventLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
