package config

import (
	"fmt"
	"time"

	"github.com/kbukum/chaincounter/chain"
	"github.com/kbukum/chaincounter/contract"
	"github.com/kbukum/chaincounter/observability"
	"github.com/kbukum/chaincounter/rpc"
	"github.com/kbukum/chaincounter/server"
	"github.com/kbukum/chaincounter/validation"
)

// AppConfig is the complete configuration of the counter client.
type AppConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Chain     chain.Descriptor     `yaml:"chain" mapstructure:"chain"`
	Contract  ContractConfig       `yaml:"contract" mapstructure:"contract"`
	Wallet    WalletConfig         `yaml:"wallet" mapstructure:"wallet"`
	Executor  ExecutorConfig       `yaml:"executor" mapstructure:"executor"`
	Server    server.Config        `yaml:"server" mapstructure:"server"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ContractConfig locates the counter contract and its interface.
type ContractConfig struct {
	Address string `yaml:"address" mapstructure:"address" validate:"required,eth_addr"`
	// ABIFile overrides the bundled interface when set.
	ABIFile string               `yaml:"abi_file" mapstructure:"abi_file"`
	Methods contract.MethodNames `yaml:"methods" mapstructure:"methods"`
}

// WalletConfig configures provider discovery.
type WalletConfig struct {
	Endpoints []rpc.Endpoint `yaml:"endpoints" mapstructure:"endpoints" validate:"min=1,dive"`
	// TargetFlag is the capability flag that identifies the supported wallet
	// when several providers are installed.
	TargetFlag     string        `yaml:"target_flag" mapstructure:"target_flag" validate:"required"`
	DetectTimeout  time.Duration `yaml:"detect_timeout" mapstructure:"detect_timeout"`
	ProbeInterval  time.Duration `yaml:"probe_interval" mapstructure:"probe_interval"`
	WatchInterval  time.Duration `yaml:"watch_interval" mapstructure:"watch_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// ExecutorConfig tunes action execution and status refresh.
type ExecutorConfig struct {
	NotificationTTL     time.Duration `yaml:"notification_ttl" mapstructure:"notification_ttl"`
	ConfirmPollInterval time.Duration `yaml:"confirm_poll_interval" mapstructure:"confirm_poll_interval"`
	RefreshInterval     time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`
	// ActionTimeout bounds one bridge-triggered action, approval and
	// confirmation included.
	ActionTimeout time.Duration `yaml:"action_timeout" mapstructure:"action_timeout"`
}

// Default timings.
const (
	DefaultDetectTimeout       = 1500 * time.Millisecond
	DefaultProbeInterval       = 100 * time.Millisecond
	DefaultWatchInterval       = 2 * time.Second
	DefaultRequestTimeout      = 2 * time.Minute
	DefaultNotificationTTL     = 5 * time.Second
	DefaultConfirmPollInterval = time.Second
	DefaultRefreshInterval     = 15 * time.Second
	DefaultActionTimeout       = 5 * time.Minute
	DefaultTargetFlag          = "isMetaMask"
)

// ApplyDefaults fills every unset field.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()

	if c.Chain.ID == 0 {
		c.Chain = chain.Sepolia()
	}
	c.Contract.Methods.ApplyDefaults()

	if len(c.Wallet.Endpoints) == 0 {
		c.Wallet.Endpoints = []rpc.Endpoint{{
			Name:  "local",
			URL:   "http://127.0.0.1:8545",
			Flags: []string{DefaultTargetFlag},
		}}
	}
	if c.Wallet.TargetFlag == "" {
		c.Wallet.TargetFlag = DefaultTargetFlag
	}
	if c.Wallet.DetectTimeout <= 0 {
		c.Wallet.DetectTimeout = DefaultDetectTimeout
	}
	if c.Wallet.ProbeInterval <= 0 {
		c.Wallet.ProbeInterval = DefaultProbeInterval
	}
	if c.Wallet.WatchInterval <= 0 {
		c.Wallet.WatchInterval = DefaultWatchInterval
	}
	if c.Wallet.RequestTimeout <= 0 {
		c.Wallet.RequestTimeout = DefaultRequestTimeout
	}

	if c.Executor.NotificationTTL <= 0 {
		c.Executor.NotificationTTL = DefaultNotificationTTL
	}
	if c.Executor.ConfirmPollInterval <= 0 {
		c.Executor.ConfirmPollInterval = DefaultConfirmPollInterval
	}
	if c.Executor.RefreshInterval <= 0 {
		c.Executor.RefreshInterval = DefaultRefreshInterval
	}
	if c.Executor.ActionTimeout <= 0 {
		c.Executor.ActionTimeout = DefaultActionTimeout
	}

	c.Server.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate checks the whole configuration. Call ApplyDefaults first.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c.Chain); err != nil {
		return fmt.Errorf("config.chain: %w", err)
	}
	if err := validation.Validate(c.Contract); err != nil {
		return fmt.Errorf("config.contract: %w", err)
	}
	if err := validation.Validate(c.Wallet); err != nil {
		return fmt.Errorf("config.wallet: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c.Telemetry); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	return nil
}
