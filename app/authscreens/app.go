package authscreens

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authscreens/app/authscreens/views"
	"github.com/dmitrymomot/authscreens/core/cache"
	"github.com/dmitrymomot/authscreens/core/cookie"
	"github.com/dmitrymomot/authscreens/core/form"
	"github.com/dmitrymomot/authscreens/core/health"
	"github.com/dmitrymomot/authscreens/core/logger"
	"github.com/dmitrymomot/authscreens/core/response"
	"github.com/dmitrymomot/authscreens/core/router"
	"github.com/dmitrymomot/authscreens/core/server"
	"github.com/dmitrymomot/authscreens/core/session"
	"github.com/dmitrymomot/authscreens/core/sessiontransport"
	"github.com/dmitrymomot/authscreens/core/verification"
	"github.com/dmitrymomot/authscreens/integration/backend"
	"github.com/dmitrymomot/authscreens/integration/database/redis"
	"github.com/dmitrymomot/authscreens/middleware"
	"github.com/dmitrymomot/authscreens/pkg/async"
	"github.com/dmitrymomot/authscreens/pkg/ratelimiter"
	"github.com/dmitrymomot/authscreens/pkg/timers"
)

var (
	ErrUnknownStore = errors.New("authscreens: unknown session store")
	ErrNilOption    = errors.New("authscreens: option value cannot be nil")
)

// App wires the screens to their collaborators.
type App struct {
	cfg   Config
	log   *slog.Logger
	site  views.Site
	clock timers.Clock

	backend    *backend.Client
	profiles   map[string]form.Profile
	validators map[string]*form.Validator

	cookies   *cookie.Manager
	sessions  *session.Manager[SessionData]
	transport *sessiontransport.Cookie[SessionData]
	flows     *verification.Registry
	users     *cache.Cache[string, backend.User]

	redis       goredis.UniversalClient
	ownsRedis   bool
	bucketStore *ratelimiter.MemoryStore
	limits      limiters
	checks      []health.Check

	router router.Router[*Context]
}

type limiters struct {
	login  ratelimiter.RateLimiter
	verify ratelimiter.RateLimiter
	resend ratelimiter.RateLimiter
}

// Option customizes App construction.
type Option func(*App) error

// WithLogger replaces the logger built from Config.Logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) error {
		if l == nil {
			return fmt.Errorf("%w: logger", ErrNilOption)
		}
		a.log = l
		return nil
	}
}

// WithBackend replaces the backend client built from Config.Backend.
func WithBackend(c *backend.Client) Option {
	return func(a *App) error {
		if c == nil {
			return fmt.Errorf("%w: backend", ErrNilOption)
		}
		a.backend = c
		return nil
	}
}

// WithClock drives verification countdowns from clock.
func WithClock(c timers.Clock) Option {
	return func(a *App) error {
		if c == nil {
			return fmt.Errorf("%w: clock", ErrNilOption)
		}
		a.clock = c
		return nil
	}
}

// WithRedis uses an existing client when the Redis store is selected.
// The caller keeps ownership of the client.
func WithRedis(client goredis.UniversalClient) Option {
	return func(a *App) error {
		if client == nil {
			return fmt.Errorf("%w: redis", ErrNilOption)
		}
		a.redis = client
		return nil
	}
}

// New builds the application. With the Redis store it connects before returning.
func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	a := &App{
		cfg:   cfg,
		site:  views.Site{Name: cfg.AppName, HTMXSrc: cfg.HTMXSrc},
		clock: timers.RealClock(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if a.log == nil {
		a.log = newLogger(cfg)
	}

	profiles, err := loadProfiles(cfg.ProfilesFile)
	if err != nil {
		return nil, err
	}
	a.profiles = profiles
	a.validators = make(map[string]*form.Validator, len(profiles))
	for name, p := range profiles {
		a.validators[name] = p.Validator()
	}

	if a.backend == nil {
		client, err := backend.New(cfg.Backend, backend.WithLogger(a.log))
		if err != nil {
			return nil, err
		}
		a.backend = client
	}

	if a.cookies, err = a.newCookies(); err != nil {
		return nil, err
	}

	sessionStore, bucketStore, err := a.newStores(ctx)
	if err != nil {
		return nil, err
	}
	a.sessions = session.NewManagerFromConfig(sessionStore, cfg.Session)
	a.transport = sessiontransport.NewCookieFromConfig(cfg.Transport, a.sessions, a.cookies)

	if a.limits, err = newLimiters(bucketStore, cfg.Limits); err != nil {
		a.closeRedis()
		return nil, err
	}

	if a.users, err = cache.New[string, backend.User](cfg.UserCache); err != nil {
		a.closeRedis()
		return nil, err
	}
	a.flows = verification.NewRegistry(a.clock, cfg.VerificationIdle)

	a.router = router.New(
		router.WithContextFactory(newContext),
		router.WithErrorHandler(response.PageErrorHandler[*Context](a.log, a.errorPage)),
		router.WithLogger[*Context](a.log),
	)
	a.routes(a.router)

	a.log.Info("application ready",
		logger.Component("app"),
		logger.Key("store", cfg.SessionStore),
		logger.Count("profiles", len(a.profiles)),
	)
	return a, nil
}

func newLogger(cfg Config) *slog.Logger {
	opts := []logger.Option{
		logger.WithContextExtractors(middleware.RequestIDExtractor),
	}
	if cfg.IsDevelopment() {
		opts = append(opts, logger.WithDevelopment(cfg.Logger.Service))
	}
	return logger.NewFromConfig(cfg.Logger, opts...)
}

// newCookies generates a throwaway secret in development when none is set.
// Sessions then do not survive a restart.
func (a *App) newCookies() (*cookie.Manager, error) {
	cfg := a.cfg.Cookie
	if cfg.Secrets == "" && a.cfg.IsDevelopment() {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		cfg.Secrets = hex.EncodeToString(secret)
		a.log.Warn("COOKIE_SECRETS not set, using a random secret", logger.Component("app"))
	}
	return cookie.NewFromConfig(cfg)
}

func (a *App) newStores(ctx context.Context) (session.Store[SessionData], ratelimiter.Store, error) {
	switch a.cfg.SessionStore {
	case StoreMemory, "":
		a.bucketStore = ratelimiter.NewMemoryStore(ratelimiter.WithMemoryStoreLogger(a.log))
		return session.NewMemoryStore[SessionData](), a.bucketStore, nil

	case StoreRedis:
		if a.redis == nil {
			client, err := redis.Connect(ctx, a.cfg.Redis)
			if err != nil {
				return nil, nil, err
			}
			a.redis = client
			a.ownsRedis = true
		}
		a.checks = append(a.checks, health.Check{Name: "redis", Fn: redis.Healthcheck(a.redis)})
		prefix := redis.WithKeyPrefix(a.cfg.Redis.KeyPrefix)
		return redis.NewSessionStore[SessionData](a.redis, prefix), redis.NewRateLimitStore(a.redis, prefix), nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStore, a.cfg.SessionStore)
	}
}

func newLimiters(store ratelimiter.Store, cfg LimitsConfig) (limiters, error) {
	var (
		l   limiters
		err error
	)
	if l.login, err = ratelimiter.NewBucket(store, perMinute(cfg.Login)); err != nil {
		return l, err
	}
	if l.verify, err = ratelimiter.NewBucket(store, perMinute(cfg.Verify)); err != nil {
		return l, err
	}
	if l.resend, err = ratelimiter.NewBucket(store, perMinute(cfg.Resend)); err != nil {
		return l, err
	}
	return l, nil
}

// Handler returns the application's HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP on Config.Server.Addr until ctx is cancelled, together
// with the store cleanup loops.
func (a *App) Run(ctx context.Context) error {
	srv, err := server.NewFromConfig(a.cfg.Server, server.WithLogger(a.log))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := a.background(ctx)
	err = srv.Run(ctx, a.Handler())
	cancel()
	if jobErr := async.ExecAll(jobs...); jobErr != nil && !errors.Is(jobErr, context.Canceled) {
		a.log.Error("background job failed", logger.Component("app"), logger.Error(jobErr))
	}
	return err
}

func (a *App) background(ctx context.Context) []*async.ExecFuture {
	var jobs []*async.ExecFuture
	if a.bucketStore != nil {
		jobs = append(jobs, async.Exec(ctx, a.bucketStore, func(ctx context.Context, s *ratelimiter.MemoryStore) error {
			return s.Start(ctx)
		}))
	}
	if a.bucketStore != nil && a.cfg.CleanupInterval > 0 {
		jobs = append(jobs, async.Exec(ctx, a.sessions, a.cleanupSessions))
	}
	return jobs
}

func (a *App) cleanupSessions(ctx context.Context, m *session.Manager[SessionData]) error {
	ticker := time.NewTicker(a.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := m.CleanupExpired(ctx)
			if err != nil {
				a.log.WarnContext(ctx, "session cleanup failed", logger.Component("session"), logger.Error(err))
				continue
			}
			if n > 0 {
				a.log.DebugContext(ctx, "expired sessions removed", logger.Component("session"), logger.Count("count", int(n)))
			}
		}
	}
}

// Close stops verification flows and releases the cache and the Redis
// connection the app opened.
func (a *App) Close() error {
	a.flows.Close()
	a.users.Close()
	return a.closeRedis()
}

func (a *App) closeRedis() error {
	if a.ownsRedis && a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func loadProfiles(path string) (map[string]form.Profile, error) {
	profiles := form.Profiles()
	if path == "" {
		return profiles, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open form profiles: %w", err)
	}
	defer f.Close()

	custom, err := form.LoadProfiles(f)
	if err != nil {
		return nil, fmt.Errorf("load form profiles %s: %w", path, err)
	}
	for name, p := range custom {
		profiles[name] = p
	}
	return profiles, nil
}

func (a *App) errorPage(err response.HTTPError) templ.Component {
	return views.ErrorPage(a.site, err.Status, err.Message)
}
