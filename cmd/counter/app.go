package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/chaincounter/bootstrap"
	"github.com/kbukum/chaincounter/chain"
	"github.com/kbukum/chaincounter/config"
	"github.com/kbukum/chaincounter/contract"
	"github.com/kbukum/chaincounter/executor"
	"github.com/kbukum/chaincounter/ledger"
	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/network"
	"github.com/kbukum/chaincounter/observability"
	"github.com/kbukum/chaincounter/provider"
	"github.com/kbukum/chaincounter/rpc"
	"github.com/kbukum/chaincounter/session"
	"github.com/kbukum/chaincounter/version"
)

// app holds the wired core shared by every command.
type app struct {
	*bootstrap.App
	cfg      *config.AppConfig
	log      *logger.Logger
	host     *rpc.Host
	sessions *session.Manager
	exec     *executor.Executor
}

func newApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	logger.Init(&cfg.Logging)
	log := logger.Get(commandName)

	shutdown, err := observability.Init(ctx, cfg.Telemetry, cfg.Name, version.Short(), cfg.Environment)
	if err != nil {
		return nil, err
	}
	a := &app{
		App: bootstrap.New(cfg.Name, version.Short(), bootstrap.WithLogger(log)),
		cfg: cfg,
		log: log,
	}
	// Registered first so it is stopped last and flushes what the others recorded.
	if err := a.RegisterComponent(&telemetry{enabled: cfg.Telemetry.Enabled, shutdown: shutdown}); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	if err := a.wire(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	a.OnStop(func(context.Context) error {
		a.sessions.Disconnect()
		return nil
	})
	return a, nil
}

func (a *app) wire() error {
	cfg := a.cfg

	metrics, err := observability.NewMetrics(observability.Meter("github.com/kbukum/chaincounter"))
	if err != nil {
		return err
	}

	abi := contract.DefaultABI()
	if cfg.Contract.ABIFile != "" {
		data, err := os.ReadFile(cfg.Contract.ABIFile)
		if err != nil {
			return fmt.Errorf("read contract abi: %w", err)
		}
		if abi, err = contract.ParseABI(data); err != nil {
			return err
		}
	}
	address, err := chain.ParseAddress(cfg.Contract.Address)
	if err != nil {
		return err
	}

	a.host = rpc.NewHost(cfg.Wallet.Endpoints,
		rpc.WithProbeInterval(cfg.Wallet.ProbeInterval),
		rpc.WithWatchInterval(cfg.Wallet.WatchInterval),
		rpc.WithClientOptions(rpc.WithTimeout(cfg.Wallet.RequestTimeout)),
	)
	locator := provider.NewLocator(a.host,
		provider.WithDetectTimeout(cfg.Wallet.DetectTimeout),
		provider.WithTargetFlag(cfg.Wallet.TargetFlag),
	)
	enforcer, err := network.NewEnforcer(cfg.Chain)
	if err != nil {
		return err
	}

	middleware := provider.Chain(
		provider.WithLogging(logger.Get("provider")),
		provider.WithTracing(),
		provider.WithMetrics(metrics),
		provider.WithResilience(provider.DefaultResilienceConfig("wallet-rpc")),
	)
	a.sessions, err = session.NewManager(locator, enforcer, session.Config{
		Chain:           cfg.Chain,
		ContractAddress: address,
		ABI:             abi,
		Methods:         cfg.Contract.Methods,
	},
		session.WithMiddleware(middleware),
		session.WithConfirmPollInterval(cfg.Executor.ConfirmPollInterval),
	)
	if err != nil {
		return err
	}

	a.exec = executor.New(a.sessions, ledger.New(),
		executor.WithNotifier(executor.NewNotifier(cfg.Executor.NotificationTTL)),
		executor.WithMetrics(metrics),
	)

	return a.RegisterComponent(a.host)
}

// connect establishes a session and seeds the ledger.
func (a *app) connect(ctx context.Context) error {
	sess, err := a.sessions.Connect(ctx)
	if err != nil {
		return err
	}
	a.log.Info("connected", logger.Fields(
		logger.FieldAccount, string(sess.Account),
		logger.FieldChainID, sess.ChainID,
		logger.FieldProvider, sess.Provider,
	))
	if err := a.exec.Seed(ctx); err != nil {
		a.log.Warn("ledger not seeded", logger.ErrorFields("seed-ledger", err))
	}
	return nil
}
