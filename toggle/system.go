package toggle

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/r3labs/sse/v2"

	"github.com/VietCH57/What-to-watch/db"
	"github.com/VietCH57/What-to-watch/events"
	"github.com/VietCH57/What-to-watch/models"
	"github.com/VietCH57/What-to-watch/shared"
)

// relationClient is the slice of the backend API the toggle system needs.
type relationClient interface {
	SetFavorite(ctx context.Context, itemID, itemType string, add bool) error
	SetWatchlist(ctx context.Context, mediaID string, add bool) error
}

type notifier interface {
	Success(message string)
	Error(message string)
}

// ToggleSystem owns every live toggle control on the page and runs the
// add/remove state machine for membership facts.
//
// The strategy is confirmed, not optimistic: visuals stay untouched until
// the server answers, then every control bound to the same (item, relation)
// key flips together. While a mutation is in flight, re-activation of the
// same key is coalesced into a no-op so two overlapping mutations can never
// race for one fact.
type ToggleSystem struct {
	client relationClient
	store  db.Store
	toasts notifier

	m        sync.Mutex
	controls map[uint64][]*Control
	pending  map[uint64]bool
}

func NewToggleSystem(client relationClient, store db.Store, toasts notifier) *ToggleSystem {
	return &ToggleSystem{
		client:   client,
		store:    store,
		toasts:   toasts,
		controls: map[uint64][]*Control{},
		pending:  map[uint64]bool{},
	}
}

// Bind registers a control for a rendered item. When the render didn't
// carry a server-confirmed state, initial is nil and we fall back to the
// local cache; a miss there means unknown, which reads as false.
func (ts *ToggleSystem) Bind(itemID, itemKind, relation string, initial *bool) *Control {
	c := &Control{
		ItemID:   itemID,
		ItemKind: itemKind,
		Relation: relation,
	}

	if initial != nil {
		c.confirm(*initial)
	} else if rel, err := ts.store.GetRelation(itemID, relation); err == nil {
		c.confirm(rel.State)
	}

	key := ControlKey(itemID, relation)

	ts.m.Lock()
	defer ts.m.Unlock()
	ts.controls[key] = append(ts.controls[key], c)
	c.setPending(ts.pending[key])
	return c
}

// Release drops a control when its container leaves the page.
func (ts *ToggleSystem) Release(c *Control) {
	key := ControlKey(c.ItemID, c.Relation)

	ts.m.Lock()
	defer ts.m.Unlock()
	bound := ts.controls[key]
	for i, candidate := range bound {
		if candidate == c {
			ts.controls[key] = append(bound[:i], bound[i+1:]...)
			break
		}
	}
	if len(ts.controls[key]) == 0 {
		delete(ts.controls, key)
	}
}

// Controls returns every live control bound to the given key.
func (ts *ToggleSystem) Controls(itemID, relation string) []*Control {
	key := ControlKey(itemID, relation)

	ts.m.Lock()
	defer ts.m.Unlock()
	out := make([]*Control, len(ts.controls[key]))
	copy(out, ts.controls[key])
	return out
}

// Toggle runs one full gesture: read current state, issue the mutation,
// apply the confirmed result to every bound control or leave everything
// exactly as it was on failure. The error return is informational; failure
// reporting to the viewer already happened via toast.
func (ts *ToggleSystem) Toggle(ctx context.Context, itemID, relation string) error {
	key := ControlKey(itemID, relation)

	ts.m.Lock()
	if ts.pending[key] {
		ts.m.Unlock()
		slog.Debug("Ignoring re-activation while mutation is in flight",
			slog.String("item_id", itemID),
			slog.String("relation", relation))
		return nil
	}

	current := false
	itemKind := shared.KIND_MEDIA
	if bound := ts.controls[key]; len(bound) > 0 {
		current = bound[0].Current()
		if bound[0].ItemKind != "" {
			itemKind = bound[0].ItemKind
		}
	} else if rel, err := ts.store.GetRelation(itemID, relation); err == nil {
		current = rel.State
		if rel.ItemKind != "" {
			itemKind = rel.ItemKind
		}
	}

	target := !current
	ts.pending[key] = true
	for _, c := range ts.controls[key] {
		c.setPending(true)
	}
	ts.m.Unlock()

	err := ts.dispatch(ctx, itemID, itemKind, relation, target)

	ts.m.Lock()
	delete(ts.pending, key)
	for _, c := range ts.controls[key] {
		c.setPending(false)
		if err == nil {
			c.confirm(target)
		}
	}
	ts.m.Unlock()

	if err != nil {
		slog.Error("Failed to update relation",
			slog.String("item_id", itemID),
			slog.String("relation", relation),
			slog.String("stack", err.Error()))
		ts.toasts.Error(errorMessage(relation))
		return err
	}

	ts.persistAndBroadcast(itemID, itemKind, relation, target)

	if target {
		ts.toasts.Success(addedMessage(relation))
	} else {
		ts.toasts.Success(removedMessage(relation))
	}
	return nil
}

// SetConfirmed ingests a state the server already vouched for: an initial
// render, a background sync pass or a webhook push. Last write wins; a
// pending local mutation keeps its pending flag and will overwrite this
// when it resolves.
func (ts *ToggleSystem) SetConfirmed(itemID, itemKind, relation string, state bool) {
	key := ControlKey(itemID, relation)

	ts.m.Lock()
	for _, c := range ts.controls[key] {
		c.confirm(state)
	}
	ts.m.Unlock()

	ts.persistAndBroadcast(itemID, itemKind, relation, state)
}

func (ts *ToggleSystem) dispatch(ctx context.Context, itemID, itemKind, relation string, target bool) error {
	switch relation {
	case shared.RELATION_FAVORITE:
		return ts.client.SetFavorite(ctx, itemID, itemKind, target)
	case shared.RELATION_WATCHLIST:
		return ts.client.SetWatchlist(ctx, itemID, target)
	default:
		return errors.New("unknown relation")
	}
}

func (ts *ToggleSystem) persistAndBroadcast(itemID, itemKind, relation string, state bool) {
	rel := models.Relation{
		ItemID:    itemID,
		ItemKind:  itemKind,
		Relation:  relation,
		State:     state,
		UpdatedAt: time.Now(),
	}
	if err := ts.store.UpsertRelation(rel); err != nil {
		slog.Error("Failed to cache confirmed relation",
			slog.String("item_id", itemID),
			slog.String("relation", relation),
			slog.String("stack", err.Error()))
	}

	// Just enough for attached views to patch the matching controls in
	// place rather than re-rendering from scratch
	payload, err := json.Marshal(rel)
	if err != nil {
		return
	}
	events.Server.Publish("relations", &sse.Event{Data: payload})
}
