package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/biv3k224/ecommerce/internal/domain"
	"github.com/biv3k224/ecommerce/internal/events"
	"github.com/biv3k224/ecommerce/internal/observability/metrics"
)

// LowStockWorker periodically scans for available products whose stock
// fell below the threshold, keeps the gauge current and emits a low-stock
// event per affected product so feed subscribers can react.
type LowStockWorker struct {
	productRepo domain.ProductRepository
	broker      *events.Broker
	logger      *slog.Logger
	threshold   int
	interval    time.Duration

	// last scan's low products, to only emit events on transitions
	flagged map[string]bool
}

// NewLowStockWorker creates a new low stock worker. broker may be nil.
func NewLowStockWorker(
	productRepo domain.ProductRepository,
	broker *events.Broker,
	logger *slog.Logger,
	threshold int,
	interval time.Duration,
) *LowStockWorker {
	if logger == nil {
		logger = slog.Default()
	}

	return &LowStockWorker{
		productRepo: productRepo,
		broker:      broker,
		logger:      logger,
		threshold:   threshold,
		interval:    interval,
		flagged:     make(map[string]bool),
	}
}

// Start begins the monitor loop and blocks until the context is done.
func (w *LowStockWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("low stock worker started",
		slog.Int("threshold", w.threshold),
		slog.Duration("interval", w.interval),
	)

	// Prime the gauge on startup rather than waiting a full interval.
	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("low stock worker stopped")
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *LowStockWorker) scan(ctx context.Context) {
	products, err := w.productRepo.LowStock(ctx, w.threshold)
	if err != nil {
		w.logger.Error("low stock scan failed", slog.String("error", err.Error()))
		return
	}

	metrics.SetLowStock(len(products))

	current := make(map[string]bool, len(products))
	for _, p := range products {
		current[p.ID] = true
		if w.flagged[p.ID] {
			continue
		}

		w.logger.Warn("product stock low",
			slog.String("product_id", p.ID),
			slog.String("name", p.Name),
			slog.Int("quantity", p.Quantity),
		)
		if w.broker != nil {
			w.broker.Publish(events.Event{
				Type:      events.TypeLowStock,
				ProductID: p.ID,
				Name:      p.Name,
				Category:  p.Category,
				Quantity:  p.Quantity,
			})
		}
	}
	w.flagged = current
}
