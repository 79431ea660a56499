package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"golang.org/x/exp/rand"

	"github.com/VietCH57/What-to-watch/api"
	"github.com/VietCH57/What-to-watch/db"
	"github.com/VietCH57/What-to-watch/models"
	"github.com/VietCH57/What-to-watch/shared"
)

// confirmer is the slice of the toggle system the sync jobs push through so
// every attached view hears about drift, not just the cache.
type confirmer interface {
	SetConfirmed(itemID, itemKind, relation string, state bool)
}

// Recommendations holds the most recently prefetched feed page so the first
// paint after startup doesn't block on the backend.
var Recommendations models.RecommendationsPage

// SetupInBackground wires the periodic jobs that keep the local cache
// honest. The scheduler is returned unstarted so the caller can decide
// whether syncing is enabled at all.
func SetupInBackground(client *api.Client, store db.Store, toggles confirmer, interval time.Duration) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)

	if interval < time.Second {
		interval = 5 * time.Minute
	}

	// A little jitter so a fleet of clients doesn't stampede the backend on
	// the same tick
	jitter := time.Duration(rand.Int63n(int64(interval / 10)))

	s.Every(interval + jitter).Do(SyncRelations, client, store, toggles)
	s.Every(interval * 3).Do(PrefetchRecommendations, client)

	slog.Info("Jobs scheduled. Scheduler not running yet.")

	return s
}

// SyncRelations walks the cached favorites and asks the backend whether
// each one still holds. Another device may have unfavorited something since
// we last looked; confirmed answers flow through the toggle system so bound
// controls and the cache move together.
func SyncRelations(client *api.Client, store db.Store, toggles confirmer) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	relations, err := store.ListRelations()
	if err != nil {
		slog.Error("Failed to list cached relations", slog.String("stack", err.Error()))
		return
	}

	for _, rel := range relations {
		if rel.Relation != shared.RELATION_FAVORITE {
			continue
		}

		state, err := client.CheckFavorite(ctx, rel.ItemID)
		if err != nil {
			slog.Debug("Skipping relation during sync",
				slog.String("item_id", rel.ItemID),
				slog.String("stack", err.Error()))
			continue
		}

		if state != rel.State {
			slog.Info("Reconciling drifted relation",
				slog.String("item_id", rel.ItemID),
				slog.Bool("server_state", state))
			toggles.SetConfirmed(rel.ItemID, rel.ItemKind, rel.Relation, state)
		}
	}
}

// PrefetchRecommendations warms the first feed page.
func PrefetchRecommendations(client *api.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page, err := client.Recommendations(ctx, models.RecommendationsRequest{Page: 1})
	if err != nil {
		slog.Debug("Failed to prefetch recommendations", slog.String("stack", err.Error()))
		return
	}
	Recommendations = *page
}
