// Package config handles xrplpers runtime configuration.
//
// Settings come from three layers, later ones winning: built-in defaults,
// a TOML file, and XRPLPERS_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/audiotarky/xrplpers/pkg/types"
)

// NetworkType identifies the ledger network whose history is tracked.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
	Devnet  NetworkType = "devnet"
)

// Storage backends accepted by OpenDB.
const (
	BackendMemory  = "memory"
	BackendBadger  = "badger"
	BackendLevelDB = "leveldb"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "XRPLPERS_"

// EnvConfigFile names the environment variable holding a config file path.
const EnvConfigFile = EnvPrefix + "CONFIG"

// ConfigFileName is the config file looked up in the data directory.
const ConfigFileName = "xrplpers.toml"

// Config holds runtime configuration.
type Config struct {
	Network NetworkType `toml:"network" env:"NETWORK"`
	DataDir string      `toml:"datadir" env:"DATADIR"`

	// Owner is the r-address whose tokens are tracked. Empty tracks into
	// an unscoped store.
	Owner string `toml:"owner" env:"OWNER"`

	Storage StorageConfig `toml:"storage" envPrefix:"STORAGE_"`
	Log     LogConfig     `toml:"log" envPrefix:"LOG_"`
}

// StorageConfig selects and locates the key-value backend.
type StorageConfig struct {
	Backend string `toml:"backend" env:"BACKEND"`
	// Path overrides the backend directory. Defaults to
	// <datadir>/<network>/<backend>.
	Path string `toml:"path" env:"PATH"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" env:"LEVEL"`
	File  string `toml:"file" env:"FILE"`
	JSON  bool   `toml:"json" env:"JSON"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.xrplpers
//	macOS:   ~/Library/Application Support/xrplpers
//	Windows: %APPDATA%\xrplpers
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".xrplpers"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "xrplpers")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "xrplpers")
		}
		return filepath.Join(home, "AppData", "Roaming", "xrplpers")
	default:
		return filepath.Join(home, ".xrplpers")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// StorageDir returns the directory of the configured backend.
func (c *Config) StorageDir() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(c.NetworkDataDir(), c.Storage.Backend)
}

// ConfigFile returns the default config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, ConfigFileName)
}

// OwnerAccount parses Owner. The zero account means no owner is set.
func (c *Config) OwnerAccount() (types.AccountID, error) {
	if c.Owner == "" {
		return types.AccountID{}, nil
	}
	return types.ParseAccountID(c.Owner)
}
