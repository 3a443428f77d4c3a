// Command seed imports categories and resources from a JSON file into the
// database. Running it twice with the same file is safe.
//
//	seed -file catalog.json -db-path data/resources.db
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"

	"github.com/sakif/code-resources/internal/config"
	sqliteRepo "github.com/sakif/code-resources/internal/repository/sqlite"
	"github.com/sakif/code-resources/internal/seed"
)

type options struct {
	File     string `env:"SEED_FILE" flag:"file" default:"data/catalog.json" usage:"seed file to import"`
	DBPath   string `env:"DB_PATH" flag:"db-path" default:"data/resources.db" usage:"SQLite database file"`
	LogLevel string `env:"LOG_LEVEL" flag:"log-level" default:"info" usage:"debug, info, warn or error"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	loader := aconfig.LoaderFor(&opts, aconfig.Config{
		EnvPrefix: config.EnvPrefix,
		SkipFiles: true,
	})
	if err := loader.Load(); err != nil {
		return err
	}

	level, err := config.ParseLevel(opts.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	f, err := os.Open(opts.File)
	if err != nil {
		return err
	}
	defer f.Close()

	file, err := seed.Decode(f)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(opts.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sqliteRepo.New(opts.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	_, err = seed.Apply(ctx, db, file, logger)
	return err
}
