package prefs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/VietCH57/What-to-watch/api"
	"github.com/VietCH57/What-to-watch/db"
	"github.com/VietCH57/What-to-watch/models"
	"github.com/VietCH57/What-to-watch/shared"
	"github.com/VietCH57/What-to-watch/utils"
)

type prefsClient interface {
	SaveGenrePreference(ctx context.Context, genreID string, checked bool, weight float64) error
	SaveSettings(ctx context.Context, settings models.Settings) error
}

type notifier interface {
	Success(message string)
	Error(message string)
}

// Panel is the preference screen: genre tuning, the settings filters with
// debounced auto-save, and the theme switch.
type Panel struct {
	client   prefsClient
	store    db.Store
	toasts   notifier
	debounce *utils.Debouncer
}

func NewPanel(client prefsClient, store db.Store, toasts notifier, window time.Duration) *Panel {
	return &Panel{
		client:   client,
		store:    store,
		toasts:   toasts,
		debounce: utils.NewDebouncer(window),
	}
}

// ToggleGenre flips a genre's checked state. This is the one optimistic
// surface of the app: the local state flips immediately and flips back if
// the save fails.
func (p *Panel) ToggleGenre(ctx context.Context, genreID string) {
	pref := p.genrePref(genreID)
	previous := pref.Checked
	pref.Checked = !previous

	if err := p.store.UpsertGenrePreference(pref); err != nil {
		slog.Error("Failed to store genre preference",
			slog.String("genre_id", genreID),
			slog.String("stack", err.Error()))
	}

	if err := p.client.SaveGenrePreference(ctx, genreID, pref.Checked, pref.Weight); err != nil {
		pref.Checked = previous
		if err := p.store.UpsertGenrePreference(pref); err != nil {
			slog.Error("Failed to revert genre preference",
				slog.String("genre_id", genreID),
				slog.String("stack", err.Error()))
		}
		slog.Error("Failed to save genre preference",
			slog.String("genre_id", genreID),
			slog.String("stack", err.Error()))
		p.toasts.Error("Error saving preference")
		return
	}

	p.toasts.Success("Preference saved")
}

// SetGenreWeight persists a new weight. Weight changes only matter while
// the genre is checked; for unchecked genres the value is stored locally
// and sent along with the next toggle.
func (p *Panel) SetGenreWeight(ctx context.Context, genreID string, weight float64) {
	pref := p.genrePref(genreID)
	pref.Weight = weight

	if err := p.store.UpsertGenrePreference(pref); err != nil {
		slog.Error("Failed to store genre weight",
			slog.String("genre_id", genreID),
			slog.String("stack", err.Error()))
	}

	if !pref.Checked {
		return
	}

	if err := p.client.SaveGenrePreference(ctx, genreID, true, weight); err != nil {
		slog.Error("Failed to save genre weight",
			slog.String("genre_id", genreID),
			slog.String("stack", err.Error()))
		p.toasts.Error("Error saving preference")
	}
}

// UpdateSettings validates and schedules a debounced auto-save. Invalid
// input blocks the request entirely; nothing is sent and nothing is stored.
func (p *Panel) UpdateSettings(ctx context.Context, settings models.Settings) error {
	if err := ValidateSettings(settings); err != nil {
		p.toasts.Error(settingsErrorMessage(err))
		return err
	}

	// The save fires after the triggering request has come and gone, so it
	// must not die with the request's context
	ctx = context.WithoutCancel(ctx)
	p.debounce.Trigger(func() {
		p.saveSettings(ctx, settings)
	})
	return nil
}

func settingsErrorMessage(err error) string {
	var ve *api.ValidationError
	if errors.As(err, &ve) && ve.Field == "min_rating" {
		return "Invalid minimum rating"
	}
	return "Invalid year range"
}

func (p *Panel) saveSettings(ctx context.Context, settings models.Settings) {
	if err := p.client.SaveSettings(ctx, settings); err != nil {
		slog.Error("Failed to save settings", slog.String("stack", err.Error()))
		p.toasts.Error("Error saving settings")
		return
	}

	if err := p.store.SaveSettings(settings); err != nil {
		slog.Error("Failed to cache settings locally", slog.String("stack", err.Error()))
	}

	p.toasts.Success("Settings saved")
}

// ToggleTheme flips between light and dark and persists the choice so it
// survives restarts.
func (p *Panel) ToggleTheme() string {
	theme, err := p.store.GetTheme()
	if err != nil {
		slog.Error("Failed to read theme", slog.String("stack", err.Error()))
		theme = shared.THEME_LIGHT
	}

	next := shared.THEME_DARK
	if theme == shared.THEME_DARK {
		next = shared.THEME_LIGHT
	}

	if err := p.store.SetTheme(next); err != nil {
		slog.Error("Failed to persist theme", slog.String("stack", err.Error()))
	}
	return next
}

// ValidateSettings applies the client-side bounds: years within 1900-2024,
// a coherent range and a 0-10 minimum rating.
func ValidateSettings(settings models.Settings) error {
	if settings.YearFrom < 1900 || settings.YearFrom > 2024 {
		return &api.ValidationError{Field: "year_from", Reason: "must be between 1900 and 2024"}
	}
	if settings.YearTo < 1900 || settings.YearTo > 2024 {
		return &api.ValidationError{Field: "year_to", Reason: "must be between 1900 and 2024"}
	}
	if settings.YearTo < settings.YearFrom {
		return &api.ValidationError{Field: "year_to", Reason: "must be greater than start year"}
	}
	if settings.MinRating < 0 || settings.MinRating > 10 {
		return &api.ValidationError{Field: "min_rating", Reason: "must be between 0 and 10"}
	}
	return nil
}

func (p *Panel) genrePref(genreID string) models.GenrePreference {
	prefsList, err := p.store.ListGenrePreferences()
	if err != nil {
		slog.Error("Failed to list genre preferences", slog.String("stack", err.Error()))
	}
	for _, pref := range prefsList {
		if pref.GenreID == genreID {
			return pref
		}
	}
	return models.GenrePreference{GenreID: genreID, Weight: 1.0}
}
