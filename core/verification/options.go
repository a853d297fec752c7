package verification

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/authscreens/pkg/timers"
)

// Defaults for controller options.
const (
	DefaultNavigationDelay = 1200 * time.Millisecond
	DefaultMessageTTL      = 3000 * time.Millisecond
	DefaultRequestTimeout  = 10 * time.Second
)

// Option configures a Controller.
type Option func(*options)

type options struct {
	duration       time.Duration
	navDelay       time.Duration
	messageTTL     time.Duration
	requestTimeout time.Duration
	clock          timers.Clock
	logger         *slog.Logger
	onVerified     func(email string)
}

func defaultOptions() options {
	return options{
		duration:       DefaultDuration,
		navDelay:       DefaultNavigationDelay,
		messageTTL:     DefaultMessageTTL,
		requestTimeout: DefaultRequestTimeout,
		logger:         slog.New(slog.DiscardHandler),
	}
}

// WithDuration sets how long a code stays valid.
func WithDuration(d time.Duration) Option {
	return func(o *options) {
		if d >= time.Second {
			o.duration = d
		}
	}
}

// WithNavigationDelay sets the delay between a successful verification and
// the OnVerified callback.
func WithNavigationDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.navDelay = d
		}
	}
}

// WithMessageTTL sets how long messages stay visible. Zero keeps them until
// replaced.
func WithMessageTTL(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.messageTTL = d
		}
	}
}

// WithRequestTimeout bounds each verifier call. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.requestTimeout = d
		}
	}
}

// WithClock sets the clock for the countdown and delayed callbacks.
func WithClock(clock timers.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithOnVerified registers fn to run after the navigation delay once the
// code is verified.
func WithOnVerified(fn func(email string)) Option {
	return func(o *options) {
		o.onVerified = fn
	}
}
