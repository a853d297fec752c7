package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authscreens/pkg/ratelimiter"
)

// consumeScript refills and consumes a token bucket stored as a hash
// {tokens, last_refill_ms}. A request that cannot be served takes nothing
// and gets back a negative remaining count.
var consumeScript = redis.NewScript(`
local key        = KEYS[1]
local capacity   = tonumber(ARGV[1])
local rate       = tonumber(ARGV[2])
local interval   = tonumber(ARGV[3])
local requested  = tonumber(ARGV[4])
local now        = tonumber(ARGV[5])

local state  = redis.call("HMGET", key, "tokens", "last_refill")
local tokens = tonumber(state[1])
local last   = tonumber(state[2])
if tokens == nil then
  tokens = capacity
  last = now
end

local intervals = math.floor((now - last) / interval)
if intervals > 0 then
  tokens = math.min(capacity, tokens + intervals * rate)
  last = now
end

local remaining = tokens - requested
if remaining >= 0 then
  tokens = remaining
end

redis.call("HSET", key, "tokens", tokens, "last_refill", last)
local full_in = math.ceil((capacity - tokens) / rate) * interval
redis.call("PEXPIRE", key, math.max(full_in, interval))

return {remaining, last + interval}
`)

// RateLimitStore implements ratelimiter.Store on Redis.
type RateLimitStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRateLimitStore creates a rate limit store.
func NewRateLimitStore(client redis.UniversalClient, opts ...StoreOption) *RateLimitStore {
	o := applyStoreOptions(opts)
	return &RateLimitStore{client: client, prefix: o.prefix, now: o.now}
}

func (s *RateLimitStore) key(k string) string {
	return s.prefix + "ratelimit:" + k
}

// ConsumeTokens implements ratelimiter.Store.
func (s *RateLimitStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg ratelimiter.Config) (int, time.Time, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.key(key)},
		cfg.Capacity,
		cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(),
		tokens,
		s.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("consume tokens: %w", err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("consume tokens: unexpected reply %v", res)
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

// Reset implements ratelimiter.Store.
func (s *RateLimitStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("reset bucket: %w", err)
	}
	return nil
}
