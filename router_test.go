package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VietCH57/What-to-watch/api"
	"github.com/VietCH57/What-to-watch/config"
	"github.com/VietCH57/What-to-watch/db"
	"github.com/VietCH57/What-to-watch/events"
	"github.com/VietCH57/What-to-watch/jobs"
	"github.com/VietCH57/What-to-watch/models"
	"github.com/VietCH57/What-to-watch/prefs"
	"github.com/VietCH57/What-to-watch/render"
	"github.com/VietCH57/What-to-watch/search"
	"github.com/VietCH57/What-to-watch/shared"
	"github.com/VietCH57/What-to-watch/toast"
	"github.com/VietCH57/What-to-watch/toggle"
)

// stubBackend stands in for the whole remote API so the local surface can
// be exercised end to end without network.
type stubBackend struct {
	m             sync.Mutex
	err           error
	searchItems   []models.Item
	suggestions   []models.Suggestion
	historyCalls  []string
	ratingCalls   []int
	settingsCalls int
}

func (s *stubBackend) SetFavorite(ctx context.Context, itemID, itemType string, add bool) error {
	return s.err
}

func (s *stubBackend) SetWatchlist(ctx context.Context, mediaID string, add bool) error {
	return s.err
}

func (s *stubBackend) CheckFavorite(ctx context.Context, itemID string) (bool, error) {
	return false, s.err
}

func (s *stubBackend) AddWatchHistory(ctx context.Context, mediaID string) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.historyCalls = append(s.historyCalls, mediaID)
	return s.err
}

func (s *stubBackend) UpdateRating(ctx context.Context, mediaID string, rating int) error {
	if rating < 1 || rating > 10 {
		return &api.ValidationError{Field: "rating", Reason: "must be between 1 and 10"}
	}
	s.m.Lock()
	defer s.m.Unlock()
	s.ratingCalls = append(s.ratingCalls, rating)
	return s.err
}

func (s *stubBackend) SearchQuery(ctx context.Context, query, searchType, sort string) ([]models.Item, error) {
	return s.searchItems, s.err
}

func (s *stubBackend) Suggestions(ctx context.Context, query, searchType string) ([]models.Suggestion, error) {
	return s.suggestions, s.err
}

func (s *stubBackend) SaveGenrePreference(ctx context.Context, genreID string, checked bool, weight float64) error {
	return s.err
}

func (s *stubBackend) SaveSettings(ctx context.Context, settings models.Settings) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.settingsCalls++
	return s.err
}

func setupRouter(t *testing.T, secret string) (http.Handler, *stubBackend, *db.MemoryStore) {
	t.Helper()

	events.Init()

	cfg := config.Config{}
	cfg.Backend.WebhookSecret = secret

	backend := &stubBackend{}
	store := db.NewMemoryStore()
	toasts := toast.NewNotifier(time.Minute)
	toggles := toggle.NewToggleSystem(backend, store, toasts)

	app := App{
		Config:    cfg,
		Store:     store,
		Client:    api.NewClient("http://127.0.0.1:1", &http.Client{}),
		Toggles:   toggles,
		Panel:     prefs.NewPanel(backend, store, toasts, 5*time.Millisecond),
		Renderer:  render.NewRenderer(backend, toggles, toasts, nil),
		Surface:   render.NewMemorySurface(),
		Searcher:  search.NewSearcher(backend, toasts),
		Suggester: search.NewSuggester(backend, 5*time.Millisecond),
	}

	return RegisterRoutes(http.NewServeMux(), app), backend, store
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func doJSON(t *testing.T, handler http.Handler, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_StateEndpoint(t *testing.T) {
	handler, _, store := setupRouter(t, "")

	require.NoError(t, store.UpsertRelation(models.Relation{
		ItemID:   "tt0050083",
		ItemKind: shared.KIND_MEDIA,
		Relation: shared.RELATION_FAVORITE,
		State:    true,
	}))

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/state", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var relations []models.Relation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &relations))
	require.Len(t, relations, 1)
	assert.Equal(t, "tt0050083", relations[0].ItemID)
}

func TestRouter_SearchEndpointReturnsRenderedCards(t *testing.T) {
	handler, backend, _ := setupRouter(t, "")

	backend.searchItems = []models.Item{
		{ID: "tt0034583", Kind: shared.KIND_MEDIA, Title: "Casablanca", Year: 1942},
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/search?query=casablanca&type=movie", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var cards []cardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "Casablanca", cards[0].Item.Title)
	assert.Equal(t, "1942", cards[0].YearLabel)
	assert.Contains(t, cards[0].HTML, "Casablanca")
	assert.Equal(t, false, cards[0].Favorite)

	// The render is reachable afterwards via the cards endpoint
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/cards?container=results", nil)
	cards = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	assert.Len(t, cards, 1)
}

func TestRouter_SuggestEndpoint(t *testing.T) {
	handler, backend, _ := setupRouter(t, "")

	backend.suggestions = []models.Suggestion{
		{Value: "Combat Zone"},
		{Value: "Batman"},
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/suggest?query=bat&type=movie", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var entries []models.Suggestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Batman", entries[0].Value)

	// Short terms answer immediately with nothing
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/suggest?query=b", nil)
	entries = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 0)
}

func TestRouter_RecommendationsServedFromPrefetch(t *testing.T) {
	handler, _, _ := setupRouter(t, "")

	jobs.Recommendations = models.RecommendationsPage{
		Items:       []models.Item{{ID: "tt0050083", Kind: shared.KIND_MEDIA, Title: "12 Angry Men"}},
		CurrentPage: 1,
		TotalPages:  4,
	}
	t.Cleanup(func() {
		jobs.Recommendations = models.RecommendationsPage{}
	})

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/recommendations", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var page pageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Cards, 1)
	assert.Equal(t, "12 Angry Men", page.Cards[0].Item.Title)
	assert.Equal(t, 4, page.TotalPages)
}

func TestRouter_HistoryEndpoint(t *testing.T) {
	handler, backend, _ := setupRouter(t, "")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/history", map[string]string{"media_id": "tt0012349"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"tt0012349"}, backend.historyCalls)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/history", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RateEndpoint(t *testing.T) {
	handler, backend, _ := setupRouter(t, "")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/rate", map[string]interface{}{
		"media_id": "tt0012349",
		"rating":   7,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{7}, backend.ratingCalls)

	// Out-of-range input surfaces as a toast, never a saved rating
	doJSON(t, handler, http.MethodPost, "/api/v1/rate", map[string]interface{}{
		"media_id": "tt0012349",
		"rating":   11,
	})
	assert.Equal(t, []int{7}, backend.ratingCalls)
}

func TestRouter_GenreEndpoint(t *testing.T) {
	handler, _, store := setupRouter(t, "")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/genres", map[string]string{"genre_id": "horror"})
	assert.Equal(t, http.StatusOK, rec.Code)

	prefsList, err := store.ListGenrePreferences()
	require.NoError(t, err)
	require.Len(t, prefsList, 1)
	assert.Equal(t, true, prefsList[0].Checked)

	weight := 2.5
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/genres", map[string]interface{}{
		"genre_id": "horror",
		"weight":   weight,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/genres", nil)
	prefsList = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prefsList))
	require.Len(t, prefsList, 1)
	assert.Equal(t, weight, prefsList[0].Weight)
}

func TestRouter_SettingsEndpoint(t *testing.T) {
	handler, backend, _ := setupRouter(t, "")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/settings", models.Settings{
		MinRating:     6,
		YearFrom:      1990,
		YearTo:        2020,
		IncludeMovies: true,
		IncludeSeries: true,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Eventually(t, func() bool {
		backend.m.Lock()
		defer backend.m.Unlock()
		return backend.settingsCalls == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Invalid input is rejected up front and nothing more goes out
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/settings", models.Settings{
		MinRating:     6,
		YearFrom:      2020,
		YearTo:        1990,
		IncludeMovies: true,
		IncludeSeries: true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ToggleEndpoint(t *testing.T) {
	handler, _, store := setupRouter(t, "")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/toggle", map[string]string{
		"item_id":  "tt0050083",
		"relation": shared.RELATION_FAVORITE,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rel, err := store.GetRelation("tt0050083", shared.RELATION_FAVORITE)
	assert.NoError(t, err)
	assert.Equal(t, true, rel.State)
}

func TestRouter_ToggleEndpointRejectsMissingFields(t *testing.T) {
	handler, _, _ := setupRouter(t, "")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/toggle", map[string]string{"item_id": "tt0050083"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ThemeEndpoint(t *testing.T) {
	handler, _, store := setupRouter(t, "")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/theme", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var res map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, shared.THEME_DARK, res["theme"])

	theme, err := store.GetTheme()
	assert.NoError(t, err)
	assert.Equal(t, shared.THEME_DARK, theme)
}

func TestRouter_RelationWebhook(t *testing.T) {
	handler, _, store := setupRouter(t, "super-secret")

	body, _ := json.Marshal(map[string]interface{}{
		"item_id":   "tt0012349",
		"item_kind": shared.KIND_MEDIA,
		"relation":  shared.RELATION_WATCHLIST,
		"state":     true,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/relations", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Signature", sign(body, "super-secret"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	rel, err := store.GetRelation("tt0012349", shared.RELATION_WATCHLIST)
	assert.NoError(t, err)
	assert.Equal(t, true, rel.State)
}

func TestRouter_RelationWebhookRejectsBadSignature(t *testing.T) {
	handler, _, store := setupRouter(t, "super-secret")

	body, _ := json.Marshal(map[string]interface{}{
		"item_id":   "tt0012349",
		"item_kind": shared.KIND_MEDIA,
		"relation":  shared.RELATION_WATCHLIST,
		"state":     true,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/relations", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Signature", sign(body, "wrong-secret"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var res map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "signature failed validation", res["error"])

	_, err := store.GetRelation("tt0012349", shared.RELATION_WATCHLIST)
	assert.ErrorIs(t, err, db.ErrNotFound)
}
