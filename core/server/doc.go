// Package server runs an http.Handler with graceful shutdown.
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	// Blocks until ctx is cancelled, then drains in-flight requests.
//	return srv.Run(ctx, router)
//
// Settings come from SERVER_* environment variables through Config.
package server
