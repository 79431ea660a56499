package db

import (
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func Initialize(dbPath string) *sqlx.DB {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		panic(err)
	}
	slog.Info("Initialised DB connection", slog.String("path", dbPath))
	return db
}
