// Command migrate creates (or, with -drop, removes) the database schema.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flowmesh/flowmesh/internal/config"
	"github.com/flowmesh/flowmesh/internal/infrastructure/storage"
)

func main() {
	drop := flag.Bool("drop", false, "drop the schema instead of creating it")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()
	db := storage.NewDB(cfg.Database)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *drop {
		if err := storage.Drop(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to drop schema")
		}
		log.Info().Msg("schema dropped")
		return
	}

	if err := storage.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}
	log.Info().Msg("schema applied")
}
