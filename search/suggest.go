package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/VietCH57/What-to-watch/models"
	"github.com/VietCH57/What-to-watch/utils"
)

// MinQueryLength is the shortest term worth asking the backend about.
const MinQueryLength = 2

type suggestClient interface {
	Suggestions(ctx context.Context, query, searchType string) ([]models.Suggestion, error)
}

// Suggester drives the autocomplete box: keystrokes are debounced so only
// the last one within the window reaches the network, and responses that
// arrive after a newer keystroke fired are dropped rather than flashing
// stale entries.
type Suggester struct {
	client   suggestClient
	debounce *utils.Debouncer
	seq      atomic.Uint64
}

func NewSuggester(client suggestClient, window time.Duration) *Suggester {
	return &Suggester{
		client:   client,
		debounce: utils.NewDebouncer(window),
	}
}

// Suggest schedules a fetch for the current term. deliver runs with the
// ordered entries once the quiescence window elapses and the response is
// still the freshest one.
func (s *Suggester) Suggest(ctx context.Context, term, searchType string, deliver func([]models.Suggestion)) {
	if len(strings.TrimSpace(term)) < MinQueryLength {
		return
	}

	s.debounce.Trigger(func() {
		token := s.seq.Add(1)

		entries, err := s.client.Suggestions(ctx, term, searchType)
		if err != nil {
			slog.Debug("Suggestion fetch failed",
				slog.String("term", term),
				slog.String("stack", err.Error()))
			return
		}

		// A newer keystroke fired while this was in flight
		if token != s.seq.Load() {
			return
		}

		OrderSuggestions(term, entries)
		deliver(entries)
	})
}

// OrderSuggestions sorts entries so values starting with the query
// (case-insensitive) come before values that merely contain it, with ties
// broken by locale-aware comparison.
func OrderSuggestions(term string, entries []models.Suggestion) {
	needle := strings.ToLower(term)
	coll := collate.New(language.English, collate.Loose)

	sort.SliceStable(entries, func(i, j int) bool {
		a := strings.HasPrefix(strings.ToLower(entries[i].Value), needle)
		b := strings.HasPrefix(strings.ToLower(entries[j].Value), needle)
		if a != b {
			return a
		}
		return coll.CompareString(entries[i].Value, entries[j].Value) < 0
	})
}
