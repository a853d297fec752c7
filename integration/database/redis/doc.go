// Package redis connects to Redis and provides Redis-backed stores for
// sessions and rate limiting.
//
// Connect parses REDIS_URL, retries the initial ping and returns a ready
// client. Healthcheck adapts the client to a health probe.
//
//	client, err := redis.Connect(ctx, cfg)
//	sessions := redis.NewSessionStore[Data](client, redis.WithKeyPrefix(cfg.KeyPrefix))
//	limits := redis.NewRateLimitStore(client, redis.WithKeyPrefix(cfg.KeyPrefix))
//
// SessionStore keeps each session as JSON under "session:id:<uuid>" with a
// "session:token:<token>" index. Both keys expire with the session, so
// DeleteExpired has nothing to do.
//
// RateLimitStore implements the token bucket in a Lua script so concurrent
// instances share one bucket per key.
package redis
