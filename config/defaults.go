package config

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Storage: StorageConfig{
			Backend: BackendBadger,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	cfg := DefaultMainnet()
	switch network {
	case Testnet, Devnet:
		cfg.Network = network
	}
	return cfg
}
