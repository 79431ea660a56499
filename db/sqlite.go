package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/VietCH57/What-to-watch/models"
	"github.com/VietCH57/What-to-watch/shared"
)

type SqliteStore struct {
	db *sqlx.DB
}

func NewSqliteStore(db *sqlx.DB) *SqliteStore {
	return &SqliteStore{db: db}
}

func (s *SqliteStore) GetRelation(itemID, relation string) (models.Relation, error) {
	var rel models.Relation
	err := s.db.Get(&rel, `
	  SELECT item_id, item_kind, relation, state, updated_at
	  FROM relations
	  WHERE item_id = ? AND relation = ?`,
		itemID, relation)
	if errors.Is(err, sql.ErrNoRows) {
		return rel, ErrNotFound
	}
	return rel, err
}

func (s *SqliteStore) UpsertRelation(rel models.Relation) error {
	if rel.UpdatedAt.IsZero() {
		rel.UpdatedAt = time.Now()
	}
	_, err := s.db.NamedExec(`
	  INSERT INTO relations (item_id, item_kind, relation, state, updated_at)
	  VALUES (:item_id, :item_kind, :relation, :state, :updated_at)
	  ON CONFLICT (item_id, relation) DO UPDATE
	  SET state = :state, item_kind = :item_kind, updated_at = :updated_at`,
		rel)
	return err
}

func (s *SqliteStore) ListRelations() ([]models.Relation, error) {
	var rels []models.Relation
	err := s.db.Select(&rels, `
	  SELECT item_id, item_kind, relation, state, updated_at
	  FROM relations
	  ORDER BY updated_at DESC`)
	return rels, err
}

func (s *SqliteStore) GetSettings() (models.Settings, error) {
	var settings models.Settings
	err := s.db.Get(&settings, `
	  SELECT min_rating, year_from, year_to, include_movies, include_series
	  FROM settings WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return settings, ErrNotFound
	}
	return settings, err
}

func (s *SqliteStore) SaveSettings(settings models.Settings) error {
	_, err := s.db.NamedExec(`
	  UPDATE settings
	  SET min_rating = :min_rating, year_from = :year_from, year_to = :year_to,
	      include_movies = :include_movies, include_series = :include_series
	  WHERE id = 1`,
		settings)
	return err
}

func (s *SqliteStore) ListGenrePreferences() ([]models.GenrePreference, error) {
	var prefs []models.GenrePreference
	err := s.db.Select(&prefs, `
	  SELECT genre_id, checked, weight
	  FROM genre_preferences
	  ORDER BY genre_id`)
	return prefs, err
}

func (s *SqliteStore) UpsertGenrePreference(pref models.GenrePreference) error {
	_, err := s.db.NamedExec(`
	  INSERT INTO genre_preferences (genre_id, checked, weight)
	  VALUES (:genre_id, :checked, :weight)
	  ON CONFLICT (genre_id) DO UPDATE
	  SET checked = :checked, weight = :weight`,
		pref)
	return err
}

func (s *SqliteStore) GetTheme() (string, error) {
	var theme string
	err := s.db.Get(&theme, `SELECT theme FROM settings WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return shared.THEME_LIGHT, nil
	}
	return theme, err
}

func (s *SqliteStore) SetTheme(theme string) error {
	_, err := s.db.Exec(`UPDATE settings SET theme = ? WHERE id = 1`, theme)
	return err
}
