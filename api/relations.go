package api

import (
	"context"
	"fmt"
	"net/http"
)

type favoritePayload struct {
	ItemID   string `json:"item_id"`
	ItemType string `json:"item_type"`
}

type saveFavoritePayload struct {
	ItemID   string `json:"item_id"`
	ItemType string `json:"item_type"`
	Action   string `json:"action"` // add | remove
}

type watchlistPayload struct {
	MediaID string `json:"media_id"`
}

type checkFavoriteResponse struct {
	IsFavorite bool `json:"is_favorite"`
}

// SetFavorite adds or removes a favorite against the shared resource
// endpoint. Add is POST, remove is DELETE, same payload either way.
func (c *Client) SetFavorite(ctx context.Context, itemID, itemType string, add bool) error {
	method := http.MethodDelete
	if add {
		method = http.MethodPost
	}
	return c.Mutate(ctx, "/api/favorites", method, favoritePayload{
		ItemID:   itemID,
		ItemType: itemType,
	})
}

// SaveFavorite is the preference panel variant which carries an explicit
// action field instead of switching HTTP methods.
func (c *Client) SaveFavorite(ctx context.Context, itemID, itemType, action string) error {
	if action != "add" && action != "remove" {
		return &ValidationError{Field: "action", Reason: "must be add or remove"}
	}
	return c.Mutate(ctx, "/api/save-favorite", http.MethodPost, saveFavoritePayload{
		ItemID:   itemID,
		ItemType: itemType,
		Action:   action,
	})
}

func (c *Client) SetWatchlist(ctx context.Context, mediaID string, add bool) error {
	method := http.MethodDelete
	if add {
		method = http.MethodPost
	}
	return c.Mutate(ctx, "/api/watchlist", method, watchlistPayload{MediaID: mediaID})
}

// AddWatchHistory is fire and forget from the caller's point of view;
// there is no local history state to keep in sync.
func (c *Client) AddWatchHistory(ctx context.Context, mediaID string) error {
	return c.Mutate(ctx, "/api/watch-history", http.MethodPost, watchlistPayload{MediaID: mediaID})
}

func (c *Client) RemoveWatchHistory(ctx context.Context, mediaID string) error {
	return c.Mutate(ctx, "/api/watch-history", http.MethodDelete, watchlistPayload{MediaID: mediaID})
}

// CheckFavorite resolves the server-confirmed favorite state for an item.
// Callers rendering an item with unknown state treat an error as false
// rather than blocking the render.
func (c *Client) CheckFavorite(ctx context.Context, itemID string) (bool, error) {
	var res checkFavoriteResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/api/check-favorite/%s", itemID), nil, &res); err != nil {
		return false, err
	}
	return res.IsFavorite, nil
}
