package toggle

import (
	"context"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/VietCH57/What-to-watch/shared"
)

type System interface {
	Bind(itemID, itemKind, relation string, initial *bool) *Control
	Release(c *Control)
	Toggle(ctx context.Context, itemID, relation string) error
	SetConfirmed(itemID, itemKind, relation string, state bool)
	Controls(itemID, relation string) []*Control
}

// Control is one rendered toggle bound to a membership fact. A list view
// and a detail view may each hold a Control for the same (item, relation)
// pair; the ToggleSystem keeps them in lockstep. State only changes through
// the system, never by direct assignment. Views may poll the accessors from
// any goroutine while a mutation resolves.
type Control struct {
	ItemID   string
	ItemKind string
	Relation string

	mu      sync.Mutex
	current bool
	known   bool
	pending bool
}

// Current reports the last server-confirmed state. An uninitialised control
// reads as false; toggling is never blocked on an unresolved initial fetch.
func (c *Control) Current() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Pending reports whether a mutation for this control's key is in flight.
func (c *Control) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Known reports whether the state was ever confirmed by the server.
func (c *Control) Known() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.known
}

func (c *Control) confirm(state bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = state
	c.known = true
}

func (c *Control) setPending(pending bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = pending
}

// ControlKey derives a stable identity for an (item, relation) pair. It's
// deterministic so it doesn't matter how many times we compute it.
func ControlKey(itemID, relation string) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%s:%s", relation, itemID))
}

func addedMessage(relation string) string {
	if relation == shared.RELATION_WATCHLIST {
		return "Added to watchlist"
	}
	return "Added to favorites"
}

func removedMessage(relation string) string {
	if relation == shared.RELATION_WATCHLIST {
		return "Removed from watchlist"
	}
	return "Removed from favorites"
}

func errorMessage(relation string) string {
	if relation == shared.RELATION_WATCHLIST {
		return "Error updating watchlist"
	}
	return "Error updating favorites"
}
