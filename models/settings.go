package models

// Settings is the viewer's recommendation filter panel. The JSON field names
// match the backend's save-settings payload exactly.
type Settings struct {
	MinRating     float64 `json:"min_rating" db:"min_rating"`
	YearFrom      int     `json:"year_from" db:"year_from"`
	YearTo        int     `json:"year_to" db:"year_to"`
	IncludeMovies bool    `json:"include_movies" db:"include_movies"`
	IncludeSeries bool    `json:"include_series" db:"include_series"`
}

// GenrePreference is one genre's tuning state. Weight only matters while
// the genre is checked.
type GenrePreference struct {
	GenreID string  `json:"genre_id" db:"genre_id"`
	Checked bool    `json:"checked" db:"checked"`
	Weight  float64 `json:"weight" db:"weight"`
}
