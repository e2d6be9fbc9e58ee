package main

import (
	"context"
	"strconv"

	"github.com/kbukum/chaincounter/observability"
)

// telemetry flushes and closes the exporters on stop.
type telemetry struct {
	enabled  bool
	shutdown observability.ShutdownFunc
}

func (t *telemetry) Name() string { return "telemetry" }

func (t *telemetry) Start(context.Context) error { return nil }

func (t *telemetry) Stop(ctx context.Context) error { return t.shutdown(ctx) }

func (t *telemetry) Health(context.Context) observability.Health {
	return observability.Health{
		Name:    t.Name(),
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"enabled": strconv.FormatBool(t.enabled)},
	}
}
