package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/chaincounter/config"
)

const commandName = "counter"

type rootOptions struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           commandName,
		Short:         "Wallet-backed client for the on-chain counter contract",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: first of cmd/counter/config.yml, config/config.yml, config.yml)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", ".env file loaded before environment binding")

	root.AddCommand(
		serveCmd(opts),
		statusCmd(opts),
		actionCmd(opts, "increment", "Add one to the counter"),
		actionCmd(opts, "decrement", "Subtract one from the counter"),
		actionCmd(opts, "reset", "Set the counter to zero (contract owner only)"),
		versionCmd(),
	)
	return root
}

// loadConfig reads, defaults and validates the application config.
func (o *rootOptions) loadConfig() (*config.AppConfig, error) {
	var loaderOpts []config.LoaderOption
	if o.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(o.envFile))
	}

	var cfg config.AppConfig
	if err := config.LoadConfig(commandName, &cfg, loaderOpts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
