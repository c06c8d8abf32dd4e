// Package idempotency guards pipeline runs so that each conference id has at
// most one run in flight inside this process.
//
// The held-set lives in memory. Running several scheduler replicas needs a
// distributed lock in its place; durable completion is still enforced by the
// persistence layer's processed flag.
package idempotency

import (
	"context"
	"sync"
)

// CompletionChecker reports the durable processed flag of a meeting
type CompletionChecker interface {
	IsProcessed(ctx context.Context, conferenceID string) (bool, error)
}

// Tracker is the single-flight guard shared by the scheduler and the manual
// trigger path.
type Tracker struct {
	mu        sync.Mutex
	held      map[string]struct{}
	completed CompletionChecker
}

// NewTracker creates a tracker that consults completed for is_completed checks
func NewTracker(completed CompletionChecker) *Tracker {
	return &Tracker{
		held:      make(map[string]struct{}),
		completed: completed,
	}
}

// TryAcquire marks conferenceID as held and returns true, or returns false
// without blocking when it is already held.
func (t *Tracker) TryAcquire(conferenceID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.held[conferenceID]; ok {
		return false
	}
	t.held[conferenceID] = struct{}{}
	return true
}

// Release clears the held mark. Releasing an id that is not held is a no-op.
func (t *Tracker) Release(conferenceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.held, conferenceID)
}

// IsCompleted delegates to the persistence layer. Callers check it before
// TryAcquire so finished meetings never occupy a slot.
func (t *Tracker) IsCompleted(ctx context.Context, conferenceID string) (bool, error) {
	return t.completed.IsProcessed(ctx, conferenceID)
}

// Reset drops every held mark. Durable processed flags are untouched.
func (t *Tracker) Reset() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.held)
	t.held = make(map[string]struct{})
	return n
}

// InFlight returns the number of currently held ids
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.held)
}

// IsHeld reports whether conferenceID currently has a run in flight
func (t *Tracker) IsHeld(conferenceID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.held[conferenceID]
	return ok
}
