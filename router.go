package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	hmacext "github.com/alexellis/hmac/v2"
	"github.com/rs/cors"

	"github.com/VietCH57/What-to-watch/api"
	"github.com/VietCH57/What-to-watch/config"
	"github.com/VietCH57/What-to-watch/db"
	"github.com/VietCH57/What-to-watch/events"
	"github.com/VietCH57/What-to-watch/jobs"
	"github.com/VietCH57/What-to-watch/models"
	"github.com/VietCH57/What-to-watch/prefs"
	"github.com/VietCH57/What-to-watch/render"
	"github.com/VietCH57/What-to-watch/search"
	"github.com/VietCH57/What-to-watch/toggle"
)

const suggestWait = 2 * time.Second

// App bundles everything the local HTTP surface serves.
type App struct {
	Config    config.Config
	Store     db.Store
	Client    *api.Client
	Toggles   toggle.System
	Panel     *prefs.Panel
	Renderer  *render.Renderer
	Surface   *render.MemorySurface
	Searcher  *search.Searcher
	Suggester *search.Suggester
}

type togglePayload struct {
	ItemID   string `json:"item_id"`
	Relation string `json:"relation"`
}

type mediaPayload struct {
	MediaID string `json:"media_id"`
}

type ratePayload struct {
	MediaID string `json:"media_id"`
	Rating  int    `json:"rating"`
}

type genrePayload struct {
	GenreID string   `json:"genre_id"`
	Weight  *float64 `json:"weight,omitempty"`
}

type relationWebhook struct {
	ItemID   string `json:"item_id"`
	ItemKind string `json:"item_kind"`
	Relation string `json:"relation"`
	State    bool   `json:"state"`
}

// cardResponse flattens a rendered card for the wire: controls become their
// current state rather than live objects.
type cardResponse struct {
	Item          models.Item `json:"item"`
	HTML          string      `json:"html"`
	PosterURL     string      `json:"poster_url"`
	YearLabel     string      `json:"year_label"`
	RatingLabel   string      `json:"rating_label"`
	GenresLabel   string      `json:"genres_label,omitempty"`
	PlotShort     string      `json:"plot_short,omitempty"`
	AccentColours []string    `json:"accent_colours,omitempty"`
	Favorite      bool        `json:"favorite"`
	Watchlist     bool        `json:"watchlist"`
}

type pageResponse struct {
	Cards       []cardResponse `json:"cards"`
	CurrentPage int            `json:"current_page"`
	TotalPages  int            `json:"total_pages"`
}

func cardResponses(cards []render.Card) []cardResponse {
	out := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardResponse{
			Item:          c.Item,
			HTML:          c.HTML,
			PosterURL:     c.PosterURL,
			YearLabel:     c.YearLabel,
			RatingLabel:   c.RatingLabel,
			GenresLabel:   c.GenresLabel,
			PlotShort:     c.PlotShort,
			AccentColours: c.AccentColours,
			Favorite:      c.Favorite.Current(),
			Watchlist:     c.Watchlist.Current(),
		})
	}
	return out
}

func renderJSONMessage(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	res := map[string]string{"message": message}
	json.NewEncoder(w).Encode(res)
}

func RegisterRoutes(mux *http.ServeMux, app App) http.Handler {

	events.Server.CreateStream("relations")
	events.Server.CreateStream("toasts")

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "Welcome to What to Watch, your personal recommendation companion.\nYou can find the source code on <a href=\"https://github.com/VietCH57/What-to-watch\">Github</a>\n")
	})

	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		renderJSONMessage(w, "This is the base of the What to Watch client API")
	})

	mux.HandleFunc("/api/v1/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		relations, err := app.Store.ListRelations()
		if err != nil {
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		if len(relations) == 0 {
			json.NewEncoder(w).Encode([]models.Relation{})
			return
		}
		json.NewEncoder(w).Encode(relations)
	})

	mux.HandleFunc("/api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		items := app.Searcher.Search(r.Context(), q.Get("query"), q.Get("type"), q.Get("sort"))
		app.Renderer.RenderList(r.Context(), app.Surface, "results", items)
		json.NewEncoder(w).Encode(cardResponses(app.Surface.Cards("results")))
	})

	mux.HandleFunc("/api/v1/suggest", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		term := q.Get("query")

		if len(strings.TrimSpace(term)) < search.MinQueryLength {
			json.NewEncoder(w).Encode([]models.Suggestion{})
			return
		}

		delivered := make(chan []models.Suggestion, 1)
		app.Suggester.Suggest(r.Context(), term, q.Get("type"), func(entries []models.Suggestion) {
			select {
			case delivered <- entries:
			default:
			}
		})

		// A newer keystroke may supersede this request, in which case nothing
		// is ever delivered and the empty answer is the right one
		select {
		case entries := <-delivered:
			json.NewEncoder(w).Encode(entries)
		case <-time.After(suggestWait):
			json.NewEncoder(w).Encode([]models.Suggestion{})
		}
	})

	mux.HandleFunc("/api/v1/recommendations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		refresh := q.Get("refresh") == "true"
		sort := q.Get("sort")

		var result models.RecommendationsPage
		if page <= 1 && !refresh && sort == "" && len(jobs.Recommendations.Items) > 0 {
			// The background prefetch already has the first page warm
			result = jobs.Recommendations
		} else {
			fetched, err := app.Client.Recommendations(r.Context(), models.RecommendationsRequest{
				Refresh: refresh,
				Sort:    sort,
				Page:    page,
			})
			if err != nil {
				json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			result = *fetched
		}

		app.Renderer.RenderList(r.Context(), app.Surface, "recommendations", result.Items)
		json.NewEncoder(w).Encode(pageResponse{
			Cards:       cardResponses(app.Surface.Cards("recommendations")),
			CurrentPage: result.CurrentPage,
			TotalPages:  result.TotalPages,
		})
	})

	mux.HandleFunc("/api/v1/cards", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		container := r.URL.Query().Get("container")
		if container == "" {
			container = "results"
		}
		json.NewEncoder(w).Encode(cardResponses(app.Surface.Cards(container)))
	})

	mux.HandleFunc("/api/v1/history", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPost {
			renderJSONMessage(w, "That method is invalid for this endpoint")
			return
		}
		var payload mediaPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.MediaID == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "media_id is required"})
			return
		}
		app.Renderer.AddToHistory(r.Context(), payload.MediaID)
		renderJSONMessage(w, "Operation was successfully executed")
	})

	mux.HandleFunc("/api/v1/rate", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPost {
			renderJSONMessage(w, "That method is invalid for this endpoint")
			return
		}
		var payload ratePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.MediaID == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "media_id is required"})
			return
		}
		app.Renderer.Rate(r.Context(), payload.MediaID, payload.Rating)
		renderJSONMessage(w, "Operation was successfully executed")
	})

	mux.HandleFunc("/api/v1/genres", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method == http.MethodGet {
			prefsList, err := app.Store.ListGenrePreferences()
			if err != nil {
				json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			if len(prefsList) == 0 {
				json.NewEncoder(w).Encode([]models.GenrePreference{})
				return
			}
			json.NewEncoder(w).Encode(prefsList)
			return
		}

		if r.Method != http.MethodPost {
			renderJSONMessage(w, "That method is invalid for this endpoint")
			return
		}

		var payload genrePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.GenreID == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "genre_id is required"})
			return
		}

		// A weight-only update adjusts the slider; without one the checkbox
		// flips
		if payload.Weight != nil {
			app.Panel.SetGenreWeight(r.Context(), payload.GenreID, *payload.Weight)
		} else {
			app.Panel.ToggleGenre(r.Context(), payload.GenreID)
		}
		renderJSONMessage(w, "Operation was successfully executed")
	})

	mux.HandleFunc("/api/v1/settings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method == http.MethodPost {
			var settings models.Settings
			if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "failed to unmarshal request body"})
				return
			}
			if err := app.Panel.UpdateSettings(r.Context(), settings); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			renderJSONMessage(w, "Operation was successfully executed")
			return
		}

		settings, err := app.Store.GetSettings()
		if err != nil {
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(settings)
	})

	mux.HandleFunc("/api/v1/theme", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPost {
			renderJSONMessage(w, "That method is invalid for this endpoint")
			return
		}
		theme := app.Panel.ToggleTheme()
		json.NewEncoder(w).Encode(map[string]string{"theme": theme})
	})

	mux.HandleFunc("/api/v1/toggle", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPost {
			renderJSONMessage(w, "That method is invalid for this endpoint")
			return
		}

		var payload togglePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "failed to unmarshal request body"})
			return
		}
		if payload.ItemID == "" || payload.Relation == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "item_id and relation are required"})
			return
		}

		// Failure already reached the viewer as a toast; the HTTP answer only
		// says whether the gesture was accepted
		if err := app.Toggles.Toggle(r.Context(), payload.ItemID, payload.Relation); err != nil {
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"error": "the change was not accepted"})
			return
		}
		renderJSONMessage(w, "Operation was successfully executed")
	})

	mux.HandleFunc("/api/v1/webhooks/relations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if app.Config.Backend.WebhookSecret == "" {
			json.NewEncoder(w).Encode(map[string]string{"error": "this endpoint is not properly configured"})
			return
		}

		signature := r.Header.Get("X-Webhook-Signature")
		if signature == "" {
			json.NewEncoder(w).Encode(map[string]string{"error": "no signature was provided"})
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			json.NewEncoder(w).Encode(map[string]string{"error": "failed to read request body as part of signature validation"})
			return
		}

		if err := hmacext.Validate(body, fmt.Sprintf("sha256=%s", signature), app.Config.Backend.WebhookSecret); err != nil {
			slog.With(slog.Any("error", err)).Error("Failed signature validation")
			json.NewEncoder(w).Encode(map[string]string{"error": "signature failed validation"})
			return
		}

		var payload relationWebhook
		if err := json.Unmarshal(body, &payload); err != nil {
			json.NewEncoder(w).Encode(map[string]string{"error": "failed to unmarshal request body"})
			return
		}

		app.Toggles.SetConfirmed(payload.ItemID, payload.ItemKind, payload.Relation, payload.State)
		renderJSONMessage(w, "Operation was successfully executed")
	})

	mux.HandleFunc("/events", events.Server.ServeHTTP)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:1313", "http://localhost:8080", "http://localhost:3000"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Origin, Content-Type, Accept"},
	})

	handler := c.Handler(mux)

	return handler
}
