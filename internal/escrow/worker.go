package escrow

import (
	"context"
	"time"

	"github.com/carevault/booking-platform/internal/pricing"
	"github.com/carevault/booking-platform/pkg/logging"
)

// ReleaseWorker releases held funds to doctors once a completed consultation
// has aged past the release delay without a dispute.
type ReleaseWorker struct {
	service  *Service
	delay    time.Duration
	interval time.Duration
	clock    pricing.Clock
	logger   *logging.Logger
}

// NewReleaseWorker creates the auto-release worker.
func NewReleaseWorker(service *Service, delay, interval time.Duration, clock pricing.Clock, logger *logging.Logger) *ReleaseWorker {
	if service == nil {
		panic("escrow: service required")
	}
	if delay <= 0 {
		delay = 24 * time.Hour
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if clock == nil {
		clock = pricing.SystemClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReleaseWorker{service: service, delay: delay, interval: interval, clock: clock, logger: logger}
}

// ProcessDue runs a single release sweep. Returns the number of escrows
// released.
func (w *ReleaseWorker) ProcessDue(ctx context.Context) (int, error) {
	cutoff := w.clock.Now().UTC().Add(-w.delay)
	released, err := w.service.ReleaseDue(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if released > 0 {
		w.logger.Info("escrow auto release sweep", "released", released)
	}
	return released, nil
}

// Run sweeps on a fixed interval until the context is cancelled.
func (w *ReleaseWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("escrow release worker started",
		"delay", w.delay.String(), "interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("escrow release worker stopped")
			return
		case <-ticker.C:
			if _, err := w.ProcessDue(ctx); err != nil {
				w.logger.Error("escrow release sweep failed", "error", err)
			}
		}
	}
}
