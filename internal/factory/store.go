// Package factory selects concrete adapters from configuration.
package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tendjournal/tend/internal/config"
	"github.com/tendjournal/tend/internal/store"
	"github.com/tendjournal/tend/internal/store/postgres"
	"github.com/tendjournal/tend/internal/store/sqlite"
)

// NewStore builds the store adapter named by cfg.DBDriver.
func NewStore(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		log.Info().Msg("using postgres store")
		return postgres.New(cfg.PostgresDSN)
	case "sqlite":
		log.Info().Str("path", cfg.SQLitePath).Msg("using sqlite store")
		return sqlite.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}
