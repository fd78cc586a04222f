package config

import (
	"fmt"
	"os"

	"github.com/audiotarky/xrplpers/internal/log"
	"github.com/audiotarky/xrplpers/internal/storage"
)

// OpenDB opens the configured storage backend, creating its directory.
func OpenDB(cfg *Config) (storage.DB, error) {
	switch cfg.Storage.Backend {
	case BackendMemory:
		return storage.NewMemory(), nil
	case BackendBadger, BackendLevelDB:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	dir := cfg.StorageDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	if cfg.Storage.Backend == BackendBadger {
		db, err := storage.NewBadger(dir)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	db, err := storage.NewLevelDB(dir)
	if err != nil {
		return nil, err
	}
	log.Config.Debug().Str("backend", BackendLevelDB).Str("path", db.Path()).Msg("storage opened")
	return db, nil
}
