package db

import (
	"errors"

	"github.com/VietCH57/What-to-watch/models"
)

// ErrNotFound is returned when a requested row does not exist. An unknown
// relation is not an error worth surfacing to the viewer; callers treat it
// as "state unknown" and fall back to false.
var ErrNotFound = errors.New("not found")

// Store caches server-confirmed state locally: membership facts, the
// settings panel, genre weights and the active theme. It is a cache, not a
// source of truth; the backend always wins.
type Store interface {
	GetRelation(itemID, relation string) (models.Relation, error)
	UpsertRelation(rel models.Relation) error
	ListRelations() ([]models.Relation, error)

	GetSettings() (models.Settings, error)
	SaveSettings(settings models.Settings) error

	ListGenrePreferences() ([]models.GenrePreference, error)
	UpsertGenrePreference(pref models.GenrePreference) error

	GetTheme() (string, error)
	SetTheme(theme string) error
}
