package memory

import (
	"context"
	"sync"
	"time"

	"momentum-scanner/internal/domain"
	"momentum-scanner/internal/storage"
)

// AlertStore is an in-memory implementation of storage.AlertStore,
// used in demo mode and tests.
type AlertStore struct {
	mu     sync.RWMutex
	alerts []*domain.Alert // ordered by insertion, oldest first
	nextID int64
}

// NewAlertStore creates a new in-memory alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{nextID: 1}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

// Insert persists a new alert and returns it with its assigned ID.
func (s *AlertStore) Insert(_ context.Context, a *domain.Alert) (*domain.Alert, error) {
	if a == nil || a.Symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutation.
	stored := *a
	stored.ID = s.nextID
	s.nextID++
	s.alerts = append(s.alerts, &stored)

	out := stored
	return &out, nil
}

// ExistsRecentAlert reports whether an alert for symbol was created within
// the given window.
func (s *AlertStore) ExistsRecentAlert(_ context.Context, symbol string, window time.Duration) (bool, error) {
	if symbol == "" {
		return false, storage.ErrInvalidInput
	}

	cutoff := time.Now().Add(-window)

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Newest entries sit at the tail; walk backwards and stop at the cutoff.
	for i := len(s.alerts) - 1; i >= 0; i-- {
		a := s.alerts[i]
		if a.CreatedAt.Before(cutoff) {
			break
		}
		if a.Symbol == symbol {
			return true, nil
		}
	}
	return false, nil
}

// ListRecent retrieves the most recent alerts, newest first.
func (s *AlertStore) ListRecent(_ context.Context, limit int) ([]*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.alerts)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*domain.Alert, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		a := *s.alerts[i]
		out = append(out, &a)
	}
	return out, nil
}
