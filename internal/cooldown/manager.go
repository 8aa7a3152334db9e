// Package cooldown deduplicates alerts per symbol across scan cycles.
//
// Two layers back the check: an in-memory expiry map answers the cheap
// first-gate question without I/O, and the alert store's recency query
// covers symbols alerted before the current process started.
package cooldown

import (
	"context"
	"log"
	"sync"
	"time"

	"momentum-scanner/internal/storage"
)

// Manager tracks per-symbol cooldown windows.
type Manager struct {
	mu       sync.Mutex
	expiries map[string]time.Time
	window   time.Duration
	store    storage.AlertStore
	logger   *log.Logger
	now      func() time.Time
}

// New creates a Manager with the given cooldown window.
func New(window time.Duration, store storage.AlertStore, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		expiries: make(map[string]time.Time),
		window:   window,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// IsInCooldown reports whether symbol has an unexpired in-memory cooldown
// entry. Expired entries are evicted lazily. This is the cheap first gate;
// it performs no I/O.
func (m *Manager) IsInCooldown(symbol string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.expiries[symbol]
	if !ok {
		return false
	}
	if !m.now().Before(expiry) {
		delete(m.expiries, symbol)
		return false
	}
	return true
}

// WasRecentlyAlerted consults the alert store for an alert created within
// the cooldown window. The in-memory map does not survive restarts, so this
// must be checked whenever IsInCooldown says no, before any expensive
// validation. A positive answer refreshes the in-memory entry so subsequent
// cycles take the cheap path. Store errors fail open: skipping here could
// permanently lose a genuine alert, while proceeding at worst duplicates one
// within the window.
func (m *Manager) WasRecentlyAlerted(ctx context.Context, symbol string) bool {
	exists, err := m.store.ExistsRecentAlert(ctx, symbol, m.window)
	if err != nil {
		m.logger.Printf("cooldown: recency check for %s failed, proceeding: %v", symbol, err)
		return false
	}
	if exists {
		m.Mark(symbol)
	}
	return exists
}

// Mark sets or refreshes the cooldown expiry for symbol to now + window.
func (m *Manager) Mark(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiries[symbol] = m.now().Add(m.window)
}
