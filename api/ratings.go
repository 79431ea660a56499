package api

import (
	"context"
	"net/http"
)

type ratingPayload struct {
	MediaID string `json:"media_id"`
	Rating  int    `json:"rating"`
}

// UpdateRating submits a 1-10 rating. Out-of-range values are rejected
// before any request is sent. The displayed aggregate is never recomputed
// locally; callers wait for server-confirmed data to refresh it.
func (c *Client) UpdateRating(ctx context.Context, mediaID string, rating int) error {
	if rating < 1 || rating > 10 {
		return &ValidationError{Field: "rating", Reason: "must be between 1 and 10"}
	}
	return c.Mutate(ctx, "/api/update-rating", http.MethodPost, ratingPayload{
		MediaID: mediaID,
		Rating:  rating,
	})
}
