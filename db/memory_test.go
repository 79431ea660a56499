package db

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/VietCH57/What-to-watch/models"
	"github.com/VietCH57/What-to-watch/shared"
)

func TestMemoryStore_RelationRoundtrip(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	_, err := s.GetRelation("tt0111161", shared.RELATION_WATCHLIST)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}

	want := models.Relation{
		ItemID:   "tt0111161",
		ItemKind: shared.KIND_MEDIA,
		Relation: shared.RELATION_WATCHLIST,
		State:    true,
	}
	if err := s.UpsertRelation(want); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	got, err := s.GetRelation("tt0111161", shared.RELATION_WATCHLIST)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set on upsert")
	}
	want.UpdatedAt = got.UpdatedAt
	if !cmp.Equal(want, got) {
		t.Error(cmp.Diff(want, got))
	}
}

func TestMemoryStore_ThemeDefaultsToLight(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	theme, err := s.GetTheme()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if theme != shared.THEME_LIGHT {
		t.Error(cmp.Diff(shared.THEME_LIGHT, theme))
	}
}
