package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"

	"github.com/VietCH57/What-to-watch/models"
)

const testBackend = "http://backend.example"

func testClient() *Client {
	return NewClient(testBackend, &http.Client{})
}

func TestClient_SetFavorite_AddIsPost(t *testing.T) {
	defer gock.Off()

	gock.New(testBackend).
		Post("/api/favorites").
		JSON(map[string]string{"item_id": "tt0050083", "item_type": "media"}).
		Reply(200).
		JSON(map[string]string{"status": "ok"})

	err := testClient().SetFavorite(context.Background(), "tt0050083", "media", true)
	assert.NoError(t, err)
	assert.True(t, gock.IsDone())
}

func TestClient_SetFavorite_RemoveIsDelete(t *testing.T) {
	defer gock.Off()

	gock.New(testBackend).
		Delete("/api/favorites").
		Reply(200).
		JSON(map[string]string{"status": "ok"})

	err := testClient().SetFavorite(context.Background(), "tt0050083", "media", false)
	assert.NoError(t, err)
	assert.True(t, gock.IsDone())
}

func TestClient_Mutate_ServerError(t *testing.T) {
	defer gock.Off()

	gock.New(testBackend).
		Post("/api/watchlist").
		Reply(500).
		BodyString("internal server error")

	err := testClient().SetWatchlist(context.Background(), "tt0050083", true)
	assert.Error(t, err)
	assert.True(t, IsServerError(err))

	var se *ServerError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, 500, se.Status)
	assert.Equal(t, "internal server error", se.Body)
}

func TestClient_Mutate_NetworkError(t *testing.T) {
	// Nothing is listening on this port
	client := NewClient("http://127.0.0.1:1", &http.Client{})

	err := client.SetWatchlist(context.Background(), "tt0050083", true)
	assert.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.False(t, IsServerError(err))
}

func TestClient_SaveFavorite_RejectsUnknownAction(t *testing.T) {
	defer gock.Off()

	// No mock registered: a request going out would fail loudly
	err := testClient().SaveFavorite(context.Background(), "tt0050083", "media", "toggle")
	assert.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestClient_UpdateRating_RejectsOutOfRangeWithoutRequest(t *testing.T) {
	defer gock.Off()

	for _, rating := range []int{0, -1, 11, 100} {
		err := testClient().UpdateRating(context.Background(), "tt0050083", rating)
		assert.Error(t, err)
		assert.True(t, IsValidationError(err))
	}
}

func TestClient_UpdateRating_SendsValueVerbatim(t *testing.T) {
	defer gock.Off()

	gock.New(testBackend).
		Post("/api/update-rating").
		JSON(map[string]interface{}{"media_id": "tt0050083", "rating": 7}).
		Reply(200).
		JSON(map[string]string{"status": "ok"})

	err := testClient().UpdateRating(context.Background(), "tt0050083", 7)
	assert.NoError(t, err)
	assert.True(t, gock.IsDone())
}

func TestClient_CheckFavorite(t *testing.T) {
	defer gock.Off()

	gock.New(testBackend).
		Get("/api/check-favorite/tt0050083").
		Reply(200).
		JSON(map[string]bool{"is_favorite": true})

	state, err := testClient().CheckFavorite(context.Background(), "tt0050083")
	assert.NoError(t, err)
	assert.Equal(t, true, state)
}

func TestClient_SearchQuery_DefaultsSortToRelevance(t *testing.T) {
	defer gock.Off()

	gock.New(testBackend).
		Get("/api/search_query").
		MatchParam("query", "casablanca").
		MatchParam("type", "movie").
		MatchParam("sort", "relevance").
		Reply(200).
		JSON([]map[string]string{{"id": "tt0034583", "title": "Casablanca"}})

	items, err := testClient().SearchQuery(context.Background(), "casablanca", "movie", "")
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "Casablanca", items[0].Title)
}

func TestClient_Recommendations_ClampsPage(t *testing.T) {
	defer gock.Off()

	gock.New(testBackend).
		Get("/api/recommendations").
		MatchParam("page", "1").
		Reply(200).
		JSON(map[string]interface{}{
			"items":        []map[string]string{{"id": "tt0050083", "title": "12 Angry Men"}},
			"current_page": 1,
			"total_pages":  3,
		})

	page, err := testClient().Recommendations(context.Background(), models.RecommendationsRequest{})
	assert.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 1)
}
