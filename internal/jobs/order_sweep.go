// Package jobs holds scheduled background tasks.
package jobs

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/voltstore/storefront/internal/domain/order"
)

// OrderSweep periodically advances open orders whose ship or delivery time
// has passed. Advancement also happens when an owner lists their orders;
// the sweep keeps statuses current for orders nobody is looking at.
type OrderSweep struct {
	orders   *order.Service
	schedule string
	cron     *cron.Cron
	lg       *zap.Logger
}

// NewOrderSweep creates a sweep running on the given cron schedule
// (standard five-field syntax).
func NewOrderSweep(orders *order.Service, schedule string, lg *zap.Logger) *OrderSweep {
	return &OrderSweep{
		orders:   orders,
		schedule: schedule,
		cron:     cron.New(),
		lg:       lg.Named("order_sweep"),
	}
}

// Start registers the sweep and starts its scheduler.
func (s *OrderSweep) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		return errors.Wrapf(err, "parse schedule %q", s.schedule)
	}

	s.cron.Start()
	s.lg.Info("Started", zap.String("schedule", s.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *OrderSweep) Stop() {
	<-s.cron.Stop().Done()
	s.lg.Info("Stopped")
}

func (s *OrderSweep) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	advanced, err := s.orders.AdvanceAll(ctx)
	if err != nil {
		s.lg.Error("Sweep failed", zap.Error(err))
		return
	}

	if advanced > 0 {
		s.lg.Info("Sweep complete",
			zap.Int("advanced", advanced),
			zap.Duration("took", time.Since(start)),
		)
	}
}
