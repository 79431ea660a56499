package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/VietCH57/What-to-watch/api"
	"github.com/VietCH57/What-to-watch/config"
	"github.com/VietCH57/What-to-watch/db"
	"github.com/VietCH57/What-to-watch/events"
	"github.com/VietCH57/What-to-watch/jobs"
	"github.com/VietCH57/What-to-watch/migrations"
	"github.com/VietCH57/What-to-watch/prefs"
	"github.com/VietCH57/What-to-watch/render"
	"github.com/VietCH57/What-to-watch/search"
	"github.com/VietCH57/What-to-watch/toast"
	"github.com/VietCH57/What-to-watch/toggle"
	"github.com/VietCH57/What-to-watch/utils"
)

// posterColours resolves accent colours by downloading the poster. Cards
// just skip the accents when the image can't be fetched.
func posterColours(posterURL string) []string {
	_, _, colours, err := utils.ExtractImageContent(posterURL)
	if err != nil {
		slog.Debug("Failed to extract poster colours",
			slog.String("poster_url", posterURL),
			slog.String("stack", err.Error()))
		return nil
	}
	return colours
}

func main() {

	if err := godotenv.Load(); err != nil {
		fmt.Println(err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.GetLogLevel(),
	}))
	slog.SetDefault(logger)

	if utils.GetEnv("RESET_DB", "0") == "1" {
		err := os.Remove(cfg.Client.DbPath)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	database := db.Initialize(cfg.Client.DbPath)

	goose.SetBaseFS(migrations.GetMigrations())

	if err := goose.SetDialect("sqlite3"); err != nil {
		panic(err)
	}

	if err := goose.Up(database.DB, "."); err != nil {
		panic(err)
	}

	store := db.NewSqliteStore(database)

	events.Init()

	toasts := toast.NewNotifier(time.Duration(cfg.Client.ToastDurationMs) * time.Millisecond)
	toasts.AddSink(&toast.SSESink{Server: events.Server, Stream: "toasts"})
	if cfg.Pushover.Token != "" && cfg.Pushover.Recipient != "" {
		toasts.AddSink(toast.NewPushoverSink(cfg.Pushover.Token, cfg.Pushover.Recipient))
	}

	client := api.NewClient(cfg.Backend.URL, nil)
	toggles := toggle.NewToggleSystem(client, store, toasts)

	debounce := time.Duration(cfg.Client.SuggestDebounceMs) * time.Millisecond
	panel := prefs.NewPanel(client, store, toasts, debounce)
	renderer := render.NewRenderer(client, toggles, toasts, posterColours)
	surface := render.NewMemorySurface()
	searcher := search.NewSearcher(client, toasts)
	suggester := search.NewSuggester(client, debounce)

	jobScheduler := jobs.SetupInBackground(client, store, toggles, time.Duration(cfg.Client.SyncIntervalSec)*time.Second)

	if cfg.Client.SyncEnabled {
		jobScheduler.StartAsync()
		fmt.Println("Background sync has started up in the background.")
	} else {
		fmt.Println("Background sync is disabled.")
	}

	router := RegisterRoutes(http.NewServeMux(), App{
		Config:    cfg,
		Store:     store,
		Client:    client,
		Toggles:   toggles,
		Panel:     panel,
		Renderer:  renderer,
		Surface:   surface,
		Searcher:  searcher,
		Suggester: suggester,
	})

	fmt.Printf("What to Watch is running at http://localhost%s\n", cfg.Client.ListenAddr)

	if err := http.ListenAndServe(cfg.Client.ListenAddr, router); err != nil {
		fmt.Println(err)
		jobScheduler.Stop()
		os.Exit(1)
	}
}
