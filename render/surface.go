package render

import (
	"sync"

	"github.com/VietCH57/What-to-watch/models"
	"github.com/VietCH57/What-to-watch/toggle"
)

// Card is one rendered item with its bound controls and display strings
// already resolved. Views consume cards as-is; nothing here requires
// recomputation on their side.
type Card struct {
	Item          models.Item
	PosterURL     string
	YearLabel     string
	RatingLabel   string
	GenresLabel   string
	PlotShort     string
	AccentColours []string
	Favorite      *toggle.Control
	Watchlist     *toggle.Control
	HTML          string
}

// Surface is the typed stand-in for the document: exactly the operations
// the renderer uses, so everything above it is testable without a browser.
type Surface interface {
	// ReplaceCards swaps the container's entire card set. Replacement, not
	// append, is what makes re-rendering idempotent.
	ReplaceCards(containerID string, cards []Card)
}

// MemorySurface keeps the last rendered card set per container. It backs
// the local API's view snapshot and doubles as the test surface.
type MemorySurface struct {
	m          sync.Mutex
	containers map[string][]Card
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{containers: map[string][]Card{}}
}

func (s *MemorySurface) ReplaceCards(containerID string, cards []Card) {
	s.m.Lock()
	defer s.m.Unlock()
	s.containers[containerID] = cards
}

func (s *MemorySurface) Cards(containerID string) []Card {
	s.m.Lock()
	defer s.m.Unlock()
	out := make([]Card, len(s.containers[containerID]))
	copy(out, s.containers[containerID])
	return out
}
