// Package forwarder delivers fired alerts to downstream consumers.
package forwarder

import (
	"context"
	"log"
	"time"

	"momentum-scanner/internal/domain"
)

// sendTimeout bounds one delivery attempt.
const sendTimeout = 10 * time.Second

// Forwarder delivers one alert to a downstream consumer.
type Forwarder interface {
	Send(ctx context.Context, a *domain.Alert) error
}

// Fanout delivers each alert to every registered forwarder. Deliveries run
// asynchronously on a detached context and failures are logged; forwarding
// never blocks or fails the scan.
type Fanout struct {
	forwarders []Forwarder
	logger     *log.Logger
	onError    func() // metrics hook, may be nil
}

// NewFanout creates a Fanout over the given forwarders.
func NewFanout(logger *log.Logger, onError func(), forwarders ...Forwarder) *Fanout {
	if logger == nil {
		logger = log.Default()
	}
	return &Fanout{forwarders: forwarders, logger: logger, onError: onError}
}

// Send dispatches the alert to all forwarders and returns immediately.
func (f *Fanout) Send(_ context.Context, a *domain.Alert) error {
	for _, fw := range f.forwarders {
		go func(fw Forwarder) {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()
			if err := fw.Send(ctx, a); err != nil {
				f.logger.Printf("forwarder: send alert %s: %v", a.Symbol, err)
				if f.onError != nil {
					f.onError()
				}
			}
		}(fw)
	}
	return nil
}

var _ Forwarder = (*Fanout)(nil)
