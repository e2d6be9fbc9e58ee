// Package observability wires OpenTelemetry tracing and metrics for the
// counter client.
//
// Setup:
//
//	shutdown, err := observability.Init(ctx, cfg.Telemetry, "chaincounter", version.Version)
//	defer shutdown(context.Background())
//
// Instruments:
//
//	metrics, err := observability.NewMetrics(observability.Meter("chaincounter"))
//	metrics.RecordRPC(ctx, "wallet", "eth_call", "ok", elapsed)
//	metrics.RecordAction(ctx, "increment", "ok", elapsed)
//
// A nil *Metrics is valid and records nothing.
package observability
