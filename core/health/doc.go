// Package health provides probe handlers.
//
//	r.Get("/health/live", health.Liveness[*app.Context])
//	r.Get("/health", health.Readiness[*app.Context](log, health.Check{
//		Name: "redis",
//		Fn:   redis.Healthcheck(client),
//	}))
//
// A check is a func(context.Context) error.
package health
