package db

import (
	"sync"
	"time"

	"github.com/VietCH57/What-to-watch/models"
	"github.com/VietCH57/What-to-watch/shared"
)

type relationKey struct {
	itemID   string
	relation string
}

// MemoryStore keeps everything in maps. Handy for tests and for running
// without a database file on disk.
type MemoryStore struct {
	m         sync.Mutex
	relations map[relationKey]models.Relation
	prefs     map[string]models.GenrePreference
	settings  models.Settings
	hasConfig bool
	theme     string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		relations: map[relationKey]models.Relation{},
		prefs:     map[string]models.GenrePreference{},
		theme:     shared.THEME_LIGHT,
	}
}

func (ms *MemoryStore) GetRelation(itemID, relation string) (models.Relation, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	rel, ok := ms.relations[relationKey{itemID, relation}]
	if !ok {
		return models.Relation{}, ErrNotFound
	}
	return rel, nil
}

func (ms *MemoryStore) UpsertRelation(rel models.Relation) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	if rel.UpdatedAt.IsZero() {
		rel.UpdatedAt = time.Now()
	}
	ms.relations[relationKey{rel.ItemID, rel.Relation}] = rel
	return nil
}

func (ms *MemoryStore) ListRelations() ([]models.Relation, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	out := make([]models.Relation, 0, len(ms.relations))
	for _, rel := range ms.relations {
		out = append(out, rel)
	}
	return out, nil
}

func (ms *MemoryStore) GetSettings() (models.Settings, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	if !ms.hasConfig {
		return models.Settings{}, ErrNotFound
	}
	return ms.settings, nil
}

func (ms *MemoryStore) SaveSettings(settings models.Settings) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	ms.settings = settings
	ms.hasConfig = true
	return nil
}

func (ms *MemoryStore) ListGenrePreferences() ([]models.GenrePreference, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	out := make([]models.GenrePreference, 0, len(ms.prefs))
	for _, pref := range ms.prefs {
		out = append(out, pref)
	}
	return out, nil
}

func (ms *MemoryStore) UpsertGenrePreference(pref models.GenrePreference) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	ms.prefs[pref.GenreID] = pref
	return nil
}

func (ms *MemoryStore) GetTheme() (string, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	return ms.theme, nil
}

func (ms *MemoryStore) SetTheme(theme string) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	ms.theme = theme
	return nil
}
