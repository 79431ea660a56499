package api

import (
	"context"
	"net/http"

	"github.com/VietCH57/What-to-watch/models"
)

type genrePreferencePayload struct {
	GenreID string  `json:"genre_id"`
	Checked bool    `json:"checked"`
	Weight  float64 `json:"weight"`
}

func (c *Client) SaveGenrePreference(ctx context.Context, genreID string, checked bool, weight float64) error {
	return c.Mutate(ctx, "/api/save-genre-preference", http.MethodPost, genrePreferencePayload{
		GenreID: genreID,
		Checked: checked,
		Weight:  weight,
	})
}

// SaveSettings pushes the whole settings panel in one payload. Input
// validation happens in the prefs package before this is called.
func (c *Client) SaveSettings(ctx context.Context, settings models.Settings) error {
	return c.Mutate(ctx, "/api/save-settings", http.MethodPost, settings)
}
