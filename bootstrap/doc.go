// Package bootstrap runs the process lifecycle around a component registry.
//
// An App starts its components in registration order, runs hooks, then
// either blocks until a shutdown signal (Run) or executes a finite task
// (RunTask), and finally stops everything in reverse order within a
// graceful timeout.
//
//	app := bootstrap.New("chaincounter", version.Short())
//	_ = app.RegisterComponent(host)
//	app.OnReady(func(ctx context.Context) error { return connect(ctx) })
//	err := app.Run(ctx)
package bootstrap
