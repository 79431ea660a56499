package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/VietCH57/What-to-watch/models"
)

// SearchQuery is the explicit-submit search. Not debounced; the caller
// reports failures through the toast notifier rather than propagating.
func (c *Client) SearchQuery(ctx context.Context, query, searchType, sort string) ([]models.Item, error) {
	if sort == "" {
		sort = "relevance"
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("type", searchType)
	q.Set("sort", sort)

	var items []models.Item
	if err := c.getJSON(ctx, "/api/search_query", q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Suggestions fetches raw autocomplete entries. Ordering is applied by the
// search package, not here.
func (c *Client) Suggestions(ctx context.Context, query, searchType string) ([]models.Suggestion, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("type", searchType)

	var suggestions []models.Suggestion
	if err := c.getJSON(ctx, "/api/suggestions", q, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (c *Client) SearchMovies(ctx context.Context, query string) ([]models.Item, error) {
	return c.searchItems(ctx, "/api/search/movies", query)
}

func (c *Client) SearchMedia(ctx context.Context, query string) ([]models.Item, error) {
	return c.searchItems(ctx, "/api/search/media", query)
}

func (c *Client) SearchPeople(ctx context.Context, query string) ([]models.Person, error) {
	q := url.Values{}
	q.Set("q", query)

	var people []models.Person
	if err := c.getJSON(ctx, "/api/search/people", q, &people); err != nil {
		return nil, err
	}
	return people, nil
}

func (c *Client) searchItems(ctx context.Context, path, query string) ([]models.Item, error) {
	q := url.Values{}
	q.Set("q", query)

	var items []models.Item
	if err := c.getJSON(ctx, path, q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Recommendations fetches one page of the viewer's recommendation feed.
func (c *Client) Recommendations(ctx context.Context, req models.RecommendationsRequest) (*models.RecommendationsPage, error) {
	q := url.Values{}
	if req.Refresh {
		q.Set("refresh", "true")
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))

	var res models.RecommendationsPage
	if err := c.getJSON(ctx, "/api/recommendations", q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
