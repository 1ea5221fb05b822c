package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ofcourt/storefront-backend/internal/auth"
	"github.com/ofcourt/storefront-backend/pkg/logger"
	"github.com/ofcourt/storefront-backend/pkg/metrics"
	"github.com/ofcourt/storefront-backend/pkg/types"
)

type stubMerger struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

func newStubMerger() *stubMerger {
	return &stubMerger{done: make(chan struct{}, 8)}
}

func (m *stubMerger) MergeGuestIntoUser(_ context.Context, deviceID string, _ uuid.UUID) (types.CartItems, error) {
	m.mu.Lock()
	m.calls = append(m.calls, deviceID)
	m.mu.Unlock()
	m.done <- struct{}{}
	return types.CartItems{}, nil
}

func (m *stubMerger) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func startWorker(t *testing.T) (*auth.Stream, *stubMerger, context.CancelFunc, chan struct{}) {
	t.Helper()

	stream := auth.NewStream()
	merger := newStubMerger()
	worker := NewSyncWorker(stream, merger, metrics.NewWorkerMetrics(nil), logger.New(logger.Options{ServiceName: "test"}))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		worker.Run(ctx)
	}()

	// let the worker subscribe before events flow
	time.Sleep(10 * time.Millisecond)
	return stream, merger, cancel, stopped
}

func TestSyncWorkerMergesOnSignIn(t *testing.T) {
	t.Parallel()

	stream, merger, cancel, stopped := startWorker(t)
	defer cancel()

	stream.Publish(auth.Event{
		Kind:     auth.EventSignedIn,
		UserID:   uuid.New(),
		Email:    "player@example.com",
		DeviceID: "device-1",
	})

	select {
	case <-merger.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never merged")
	}
	if merger.calls[0] != "device-1" {
		t.Fatalf("expected merge for device-1, got %q", merger.calls[0])
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never stopped after cancel")
	}
}

func TestSyncWorkerIgnoresSignOutAndMissingDevice(t *testing.T) {
	t.Parallel()

	stream, merger, cancel, stopped := startWorker(t)
	defer cancel()

	stream.Publish(auth.Event{Kind: auth.EventSignedOut, UserID: uuid.New(), DeviceID: "device-1"})
	stream.Publish(auth.Event{Kind: auth.EventSignedIn, UserID: uuid.New()}) // no device id
	stream.Publish(auth.Event{Kind: auth.EventSignedIn, UserID: uuid.New(), DeviceID: "device-2"})

	select {
	case <-merger.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never merged")
	}
	if count := merger.callCount(); count != 1 {
		t.Fatalf("expected a single merge, got %d", count)
	}
	if merger.calls[0] != "device-2" {
		t.Fatalf("expected merge for device-2, got %q", merger.calls[0])
	}

	cancel()
	<-stopped
}

func TestSyncWorkerStopsWhenStreamCloses(t *testing.T) {
	t.Parallel()

	stream, _, cancel, stopped := startWorker(t)
	defer cancel()

	stream.Close()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never stopped after stream close")
	}
}
