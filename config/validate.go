package config

import (
	"fmt"

	"github.com/audiotarky/xrplpers/internal/log"
)

// Validate checks the config for operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	switch cfg.Network {
	case Mainnet, Testnet, Devnet:
	default:
		return fmt.Errorf("network must be %q, %q or %q", Mainnet, Testnet, Devnet)
	}
	if cfg.DataDir == "" && cfg.Storage.Backend != BackendMemory {
		return fmt.Errorf("datadir is required for the %s backend", cfg.Storage.Backend)
	}
	switch cfg.Storage.Backend {
	case BackendMemory, BackendBadger, BackendLevelDB:
	default:
		return fmt.Errorf("storage.backend must be %s, %s or %s",
			BackendMemory, BackendBadger, BackendLevelDB)
	}
	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := cfg.OwnerAccount(); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	return nil
}
