package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/authscreens/core/handler"
	"github.com/dmitrymomot/authscreens/core/logger"
	"github.com/dmitrymomot/authscreens/core/response"
)

// DefaultTimeout bounds each readiness check.
const DefaultTimeout = 2 * time.Second

// Check is a named dependency probe.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// Liveness always answers "ALIVE".
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}

// Readiness answers "READY" when every check passes and 503 otherwise.
// Checks run in order; the first failure stops the probe.
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(ctx C) handler.Response {
		for _, c := range checks {
			if c.Fn == nil {
				continue
			}
			if err := run(ctx, c.Fn); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component("health"),
					logger.Key("check", c.Name),
					logger.Error(err),
				)
				return response.Error(response.ErrServiceUnavailable)
			}
		}
		return response.String("READY")
	}
}

func run(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()
	return fn(ctx)
}
