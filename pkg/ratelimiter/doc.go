// Package ratelimiter provides token bucket rate limiting with pluggable storage.
//
// A Bucket grants tokens per key from a Store. Each bucket holds up to
// Capacity tokens and gains RefillRate tokens every RefillInterval. A request
// that cannot be served consumes nothing and reports a negative Remaining.
//
//	store := ratelimiter.NewMemoryStore()
//	go store.Start(ctx)
//
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: 12 * time.Second,
//	})
//
//	res, err := limiter.Allow(ctx, "resend:"+ip)
//	if !res.Allowed() {
//		// retry after res.RetryAfter()
//	}
package ratelimiter
