package component

import (
	"context"

	"github.com/kbukum/chaincounter/observability"
)

// Component represents a lifecycle-managed part of the process.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start starts the component. It must not block.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) observability.Health
}
