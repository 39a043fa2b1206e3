// Package httpserver runs an http.Handler with graceful shutdown driven by a
// context and exposes liveness and readiness handlers.
//
// Run binds the listener, serves until the context is cancelled and then
// shuts down within the configured timeout. The binary cancels that context
// on SIGINT or SIGTERM:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// Listen failures are wrapped with ErrStart and shutdown failures with
// ErrShutdown.
package httpserver
