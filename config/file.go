package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/audiotarky/xrplpers/internal/log"
	"github.com/caarlos0/env/v11"
)

// LoadFile decodes a TOML file over cfg. Keys the file sets replace the
// current values; unknown keys are an error.
func LoadFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overlays XRPLPERS_* environment variables on cfg.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load builds the effective config for network.
//
// The file is chosen by precedence: explicit, then $XRPLPERS_CONFIG, then
// <datadir>/xrplpers.toml. A missing explicit or $XRPLPERS_CONFIG file is an
// error; a missing default file is not. Environment overrides are applied
// last and the result is validated.
func Load(network NetworkType, explicit string) (*Config, error) {
	cfg := Default(network)
	// The datadir may itself come from the environment.
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	path, required := explicit, true
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path == "" {
		path, required = cfg.ConfigFile(), false
	}

	switch _, err := os.Stat(path); {
	case err == nil:
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
		log.Config.Debug().Str("path", path).Msg("loaded config file")
	case errors.Is(err, fs.ErrNotExist) && !required:
		log.Config.Debug().Str("path", path).Msg("no config file, using defaults")
	default:
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitLogging configures the global logger from cfg.Log.
func (c *Config) InitLogging() error {
	return log.Init(c.Log.Level, c.Log.JSON, c.Log.File)
}
