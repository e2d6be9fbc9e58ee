// Package config loads the counter client's configuration.
//
// Values come from a YAML file (cmd/counter/config.yml, config/config.yml or
// ./config.yml), then a .env file, then the process environment. Environment
// keys may carry the CHAINCOUNTER_ prefix, and underscores map onto nested
// keys, so CHAINCOUNTER_WALLET_TARGET_FLAG sets wallet.target_flag.
//
//	var cfg config.AppConfig
//	if err := config.LoadConfig("counter", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
package config
