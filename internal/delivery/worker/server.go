// Package worker runs the background reminder sweep on a fixed schedule.
package worker

import (
	"context"
	"log/slog"
	"time"

	"farmlink/config"
	"farmlink/internal/delivery"
	"farmlink/internal/usecase"

	"go.uber.org/fx"
)

type reminderWorker struct {
	interval time.Duration
	logger   *slog.Logger
	uc       usecase.ReminderUsecase
	stop     chan struct{}
}

// ReminderParams holds dependencies for the reminder worker
type ReminderParams struct {
	fx.In

	Lc         fx.Lifecycle
	Cfg        *config.Config
	Logger     *slog.Logger
	ReminderUC usecase.ReminderUsecase
}

// NewReminderWorker creates the periodic unread-message reminder worker
func NewReminderWorker(params ReminderParams) delivery.Delivery {
	w := &reminderWorker{
		interval: params.Cfg.Chat.SweepInterval,
		logger:   params.Logger,
		uc:       params.ReminderUC,
		stop:     make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: w.stopHook,
	})

	return w
}

// Serve runs sweeps until the worker is stopped. A failed sweep is logged
// and retried on the next tick.
func (w *reminderWorker) Serve(ctx context.Context) error {
	w.logger.Info("Starting reminder worker", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stop:
			return nil
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *reminderWorker) runOnce(ctx context.Context) {
	result, err := w.uc.RunSweep(ctx)
	if err != nil {
		w.logger.Error("Reminder sweep failed", slog.Any("error", err))

		return
	}

	if result.Examined > 0 {
		w.logger.Info("Reminder sweep finished",
			slog.Int("examined", result.Examined),
			slog.Int("dispatched", result.Dispatched),
			slog.Int("failed", result.Failed),
		)
	}
}

func (w *reminderWorker) stopHook(ctx context.Context) error {
	w.logger.Info("Shutting down reminder worker")
	close(w.stop)

	return nil
}
