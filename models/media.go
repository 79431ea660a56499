package models

// Item is a media or person record as returned by the backend's search and
// recommendation endpoints. Membership facts (IsFavorite, InWatchlist) are
// whatever the server last confirmed. They may go briefly stale while a
// mutation is in flight but are never guessed at locally.
type Item struct {
	ID            string   `json:"id"`
	Kind          string   `json:"kind"` // media | person
	Title         string   `json:"title"`
	Year          int      `json:"year,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	PosterURL     string   `json:"poster_url,omitempty"`
	Plot          string   `json:"plot,omitempty"`
	AverageRating float64  `json:"average_rating,omitempty"`
	NumVotes      int      `json:"num_votes,omitempty"`

	IsFavorite  *bool `json:"is_favorite,omitempty"`
	InWatchlist *bool `json:"in_watchlist,omitempty"`
	UserRating  int   `json:"user_rating,omitempty"`
}

// Person is returned by the people search endpoint.
type Person struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
}

// Suggestion is a single autocomplete entry.
type Suggestion struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// RecommendationsPage mirrors the paginated recommendations response.
type RecommendationsPage struct {
	Items       []Item `json:"items"`
	CurrentPage int    `json:"current_page"`
	TotalPages  int    `json:"total_pages"`
}

// RecommendationsRequest carries the optional query knobs for a
// recommendations fetch.
type RecommendationsRequest struct {
	Refresh bool
	Sort    string
	Page    int
}
