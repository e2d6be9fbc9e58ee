package bootstrap

import (
	"time"

	"github.com/kbukum/chaincounter/logger"
)

// Option configures the App during creation.
type Option func(*App)

// WithLogger sets a custom logger for the application.
func WithLogger(l *logger.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.Logger = l
		}
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.gracefulTimeout = d
		}
	}
}
