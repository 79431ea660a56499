package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"sync"

	"github.com/VietCH57/What-to-watch/api"
	"github.com/VietCH57/What-to-watch/models"
	"github.com/VietCH57/What-to-watch/shared"
	"github.com/VietCH57/What-to-watch/toggle"
)

const fallbackPoster = "/static/images/no-poster.png"

var cardTemplate = template.Must(template.New("card").Parse(`<div class="card" data-item-id="{{.Item.ID}}">
  <img class="card-img-top" src="{{.PosterURL}}" alt="{{.Item.Title}}">
  <h5 class="card-title" title="{{.Item.Title}}">{{.Item.Title}}</h5>
  <p class="year">Year: {{.YearLabel}}</p>
  <div class="rating">{{.RatingLabel}}</div>
  {{- if .GenresLabel}}
  <p class="genres">{{.GenresLabel}}</p>
  {{- end}}
  {{- if .PlotShort}}
  <p class="plot-short">{{.PlotShort}}</p>
  {{- end}}
  <button class="add-to-watchlist{{if .Watchlist.Current}} active{{end}}" data-item-id="{{.Item.ID}}"></button>
  <button class="add-to-history" data-item-id="{{.Item.ID}}"></button>
  <button class="toggle-favorite{{if .Favorite.Current}} active{{end}}" data-item-id="{{.Item.ID}}"></button>
</div>`))

type favoriteChecker interface {
	CheckFavorite(ctx context.Context, itemID string) (bool, error)
}

type historyClient interface {
	AddWatchHistory(ctx context.Context, mediaID string) error
}

type ratingClient interface {
	UpdateRating(ctx context.Context, mediaID string, rating int) error
}

type backendClient interface {
	favoriteChecker
	historyClient
	ratingClient
}

type notifier interface {
	Success(message string)
	Error(message string)
}

// ColourFunc resolves dominant accent colours for a poster URL. The default
// downloads the image; tests swap in something that doesn't touch the
// network.
type ColourFunc func(posterURL string) []string

// Renderer turns item sequences into cards with live toggle controls.
type Renderer struct {
	client  backendClient
	toggles toggle.System
	toasts  notifier
	colours ColourFunc

	m     sync.Mutex
	bound map[string][]*toggle.Control
}

func NewRenderer(client backendClient, toggles toggle.System, toasts notifier, colours ColourFunc) *Renderer {
	return &Renderer{
		client:  client,
		toggles: toggles,
		toasts:  toasts,
		colours: colours,
		bound:   map[string][]*toggle.Control{},
	}
}

// RenderList renders one card per item into the container. Calling it again
// with the same input replaces the prior content; controls bound by the
// previous render are released first so nothing accumulates. A single bad
// item never takes down the whole render.
func (r *Renderer) RenderList(ctx context.Context, surface Surface, containerID string, items []models.Item) {
	r.releaseContainer(containerID)

	cards := make([]Card, 0, len(items))
	var controls []*toggle.Control

	for _, item := range items {
		if item.ID == "" {
			slog.Warn("Skipping item without an id", slog.String("title", item.Title))
			continue
		}

		isFavorite := item.IsFavorite
		if isFavorite == nil {
			// The search endpoints don't always include membership facts,
			// so resolve them before binding. An error reads as false.
			state, err := r.client.CheckFavorite(ctx, item.ID)
			if err != nil {
				slog.Debug("Treating unresolved favorite state as false",
					slog.String("item_id", item.ID),
					slog.String("stack", err.Error()))
				state = false
			}
			isFavorite = &state
		}

		kind := item.Kind
		if kind == "" {
			kind = shared.KIND_MEDIA
		}

		favorite := r.toggles.Bind(item.ID, kind, shared.RELATION_FAVORITE, isFavorite)
		watchlist := r.toggles.Bind(item.ID, kind, shared.RELATION_WATCHLIST, item.InWatchlist)
		controls = append(controls, favorite, watchlist)

		card := r.buildCard(item, favorite, watchlist)
		cards = append(cards, card)
	}

	r.m.Lock()
	r.bound[containerID] = controls
	r.m.Unlock()

	surface.ReplaceCards(containerID, cards)
}

func (r *Renderer) buildCard(item models.Item, favorite, watchlist *toggle.Control) Card {
	card := Card{
		Item:      item,
		PosterURL: item.PosterURL,
		Favorite:  favorite,
		Watchlist: watchlist,
	}

	if card.PosterURL == "" {
		card.PosterURL = fallbackPoster
	} else if r.colours != nil {
		card.AccentColours = r.colours(card.PosterURL)
	}

	card.YearLabel = "N/A"
	if item.Year != 0 {
		card.YearLabel = fmt.Sprintf("%d", item.Year)
	}

	card.RatingLabel = "No ratings yet"
	if item.AverageRating != 0 {
		card.RatingLabel = fmt.Sprintf("%.1f", item.AverageRating)
		if item.NumVotes != 0 {
			card.RatingLabel = fmt.Sprintf("%.1f (%d votes)", item.AverageRating, item.NumVotes)
		}
	}

	card.GenresLabel = strings.Join(item.Genres, ", ")

	if item.Plot != "" {
		// Cut on rune boundaries so a multi-byte character never gets split
		plot := []rune(item.Plot)
		if len(plot) > 100 {
			card.PlotShort = string(plot[:100]) + "..."
		} else {
			card.PlotShort = item.Plot
		}
	}

	var buf bytes.Buffer
	if err := cardTemplate.Execute(&buf, card); err != nil {
		slog.Error("Failed to render card markup",
			slog.String("item_id", item.ID),
			slog.String("stack", err.Error()))
	} else {
		card.HTML = buf.String()
	}

	return card
}

// AddToHistory is fire and forget: no local state changes, only a toast
// either way.
func (r *Renderer) AddToHistory(ctx context.Context, mediaID string) {
	if err := r.client.AddWatchHistory(ctx, mediaID); err != nil {
		slog.Error("Failed to add to watch history",
			slog.String("media_id", mediaID),
			slog.String("stack", err.Error()))
		r.toasts.Error("Error adding to watch history")
		return
	}
	r.toasts.Success("Added to watch history")
}

// Rate submits a bounded 1-10 rating. Out-of-range input never reaches the
// network. The aggregate label is not touched here: a rating moves a
// server-side average we can't recompute safely, so the displayed value
// only changes when the next server-confirmed render arrives.
func (r *Renderer) Rate(ctx context.Context, mediaID string, rating int) {
	if err := r.client.UpdateRating(ctx, mediaID, rating); err != nil {
		var msg string
		if api.IsValidationError(err) {
			msg = "Rating must be between 1 and 10"
		} else {
			msg = "Error saving rating"
			slog.Error("Failed to save rating",
				slog.String("media_id", mediaID),
				slog.String("stack", err.Error()))
		}
		r.toasts.Error(msg)
		return
	}
	r.toasts.Success("Rating saved")
}

func (r *Renderer) releaseContainer(containerID string) {
	r.m.Lock()
	controls := r.bound[containerID]
	delete(r.bound, containerID)
	r.m.Unlock()

	for _, c := range controls {
		r.toggles.Release(c)
	}
}
