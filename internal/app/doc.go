// Package app wires the COVID Pulse web service: configuration, telemetry,
// services, handlers and the HTTP server.
//
// # Lifecycle
//
//	a, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// Run starts the server and loads the dataset in the background, reloading
// it every server.reload_interval when that is set. Each load outcome is
// pushed to WebSocket clients on /ws. Cancelling ctx shuts the
// server down within server.shutdown_timeout and flushes telemetry. The app
// never calls os.Exit; main decides the exit code.
package app
