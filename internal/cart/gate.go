package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// mergeGate serializes user-cart access behind an in-flight merge. While a
// merge holds the gate for a user, reads and saves for that user block until
// it settles, so a save can never land on pre-merge state and get lost.
type mergeGate struct {
	mu      sync.Mutex
	pending map[uuid.UUID]chan struct{}
}

func newMergeGate() *mergeGate {
	return &mergeGate{pending: make(map[uuid.UUID]chan struct{})}
}

// acquire takes the gate for the user, waiting out any merge already in
// flight. Returns the context error if the caller gives up first.
func (g *mergeGate) acquire(ctx context.Context, userID uuid.UUID) error {
	for {
		g.mu.Lock()
		ch, busy := g.pending[userID]
		if !busy {
			g.pending[userID] = make(chan struct{})
			g.mu.Unlock()
			return nil
		}
		g.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// release opens the gate and wakes all waiters.
func (g *mergeGate) release(userID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ch, ok := g.pending[userID]; ok {
		close(ch)
		delete(g.pending, userID)
	}
}

// wait blocks until no merge is in flight for the user.
func (g *mergeGate) wait(ctx context.Context, userID uuid.UUID) error {
	for {
		g.mu.Lock()
		ch, busy := g.pending[userID]
		g.mu.Unlock()
		if !busy {
			return nil
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
