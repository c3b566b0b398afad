package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"huddle/infrastructure/storage"

	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH"`
	// INSPECT_COLOURS toggles coloured roster checks
	Colours  bool   `envconfig:"INSPECT_COLOURS" default:"true"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"WARN"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	defaultPath := cfg.BadgerFilepath
	if defaultPath == "" {
		defaultPath = database.DefaultPath
	}
	dbPath := flag.String("db", defaultPath, "Path to badger DB")
	flag.Parse()

	log := logs.GetLoggerFromString(cfg.LogLevel)
	store, err := storage.OpenBadger(*dbPath, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rows, err := Collect(store, time.Now())
	if err != nil {
		return err
	}
	Render(os.Stdout, rows, cfg.Colours)
	log.Debug("Inspection done", "rooms", len(rows))
	return nil
}
