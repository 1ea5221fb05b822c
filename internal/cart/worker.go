package cart

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ofcourt/storefront-backend/internal/auth"
	"github.com/ofcourt/storefront-backend/pkg/logger"
	"github.com/ofcourt/storefront-backend/pkg/metrics"
	"github.com/ofcourt/storefront-backend/pkg/types"
)

const syncJobName = "cart-sync"

// merger is the slice of the cart service the worker needs.
type merger interface {
	MergeGuestIntoUser(ctx context.Context, deviceID string, userID uuid.UUID) (types.CartItems, error)
}

// SyncWorker merges guest carts into user carts when sign-in events arrive
// on the auth stream.
type SyncWorker struct {
	stream  *auth.Stream
	carts   merger
	metrics *metrics.WorkerMetrics
	logg    *logger.Logger
}

// NewSyncWorker wires the worker. Metrics may be nil-safe zero metrics.
func NewSyncWorker(stream *auth.Stream, carts merger, workerMetrics *metrics.WorkerMetrics, logg *logger.Logger) *SyncWorker {
	return &SyncWorker{
		stream:  stream,
		carts:   carts,
		metrics: workerMetrics,
		logg:    logg,
	}
}

// Run consumes the auth stream until the context is canceled or the stream
// closes. Blocking; callers run it in its own goroutine.
func (w *SyncWorker) Run(ctx context.Context) {
	sub := w.stream.Subscribe()
	defer sub.Unsubscribe()

	w.logg.Info(ctx, "cart sync worker started")

	for {
		select {
		case <-ctx.Done():
			w.logg.Info(ctx, "cart sync worker stopping")
			return
		case ev, ok := <-sub.C():
			if !ok {
				w.logg.Info(ctx, "auth stream closed, cart sync worker stopping")
				return
			}
			w.handle(ctx, ev)
		}
	}
}

func (w *SyncWorker) handle(ctx context.Context, ev auth.Event) {
	if ev.Kind != auth.EventSignedIn || ev.DeviceID == "" {
		return
	}

	ctx = w.logg.WithFields(ctx, map[string]any{
		"user_id":   ev.UserID.String(),
		"device_id": ev.DeviceID,
	})

	started := time.Now()
	merged, err := w.carts.MergeGuestIntoUser(ctx, ev.DeviceID, ev.UserID)
	w.metrics.ObserveDuration(syncJobName, time.Since(started))
	if err != nil {
		w.metrics.IncFailure(syncJobName)
		w.logg.Error(ctx, "guest cart merge failed", err)
		return
	}

	w.metrics.IncSuccess(syncJobName)
	w.logg.Info(w.logg.WithField(ctx, "item_count", len(merged)), "guest cart merged")
}
