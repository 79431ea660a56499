package search

import (
	"context"
	"log/slog"

	"github.com/VietCH57/What-to-watch/models"
)

type searchClient interface {
	SearchQuery(ctx context.Context, query, searchType, sort string) ([]models.Item, error)
}

type notifier interface {
	Error(message string)
}

// Searcher runs explicit-submit searches. No debounce here; the user
// pressed enter. Failures surface as a toast, never as a panic or a thrown
// error to the view.
type Searcher struct {
	client searchClient
	toasts notifier
}

func NewSearcher(client searchClient, toasts notifier) *Searcher {
	return &Searcher{client: client, toasts: toasts}
}

func (s *Searcher) Search(ctx context.Context, query, searchType, sort string) []models.Item {
	if len(query) < MinQueryLength {
		return nil
	}

	items, err := s.client.SearchQuery(ctx, query, searchType, sort)
	if err != nil {
		slog.Error("Search request failed",
			slog.String("query", query),
			slog.String("stack", err.Error()))
		s.toasts.Error("Error performing search")
		return nil
	}
	return items
}
