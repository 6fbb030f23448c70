package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/ports/repository"
	"course-marketplace/internal/usecase"
)

// OrderReconciler periodically scans for stale pending orders and re-polls
// their provider session through the idempotent completion path. This covers
// lost webhooks and users who paid but never returned to the success page.
type OrderReconciler struct {
	uc         usecase.PaymentUseCase
	orders     repository.OrderRepository
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending order must be to retry
	log        *zerolog.Logger
}

func NewOrderReconciler(uc usecase.PaymentUseCase, orders repository.OrderRepository, interval, staleAfter time.Duration, log *zerolog.Logger) *OrderReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	l := log.With().Str("component", "order_reconciler").Logger()
	return &OrderReconciler{uc: uc, orders: orders, interval: interval, staleAfter: staleAfter, log: &l}
}

func (w *OrderReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *OrderReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.orders.ListPendingOlderThan(ctx, nil, cutoff, 200)
	if err != nil {
		if err != domain.ErrNotFound {
			w.log.Error().Err(err).Msg("list pending orders failed")
		}
		return
	}
	for _, o := range pending {
		if o.PaymentIntentID == "" {
			continue
		}
		if err := w.uc.Reconcile(ctx, o); err != nil {
			w.log.Warn().Err(err).Str("order_id", o.ID).Str("session_id", o.PaymentIntentID).
				Msg("reconcile failed")
			continue
		}
	}
}
