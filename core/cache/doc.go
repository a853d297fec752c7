// Package cache provides a generic in-process cache with per-item TTL,
// backed by ristretto.
//
//	users, err := cache.New[string, backend.User](cache.Config{MaxItems: 1000, TTL: 30 * time.Second})
//	defer users.Close()
//
//	user, err := users.GetOrLoad(ctx, key, func(ctx context.Context) (backend.User, error) {
//		return fetchUser(ctx)
//	})
//
// Writes are applied before Set returns, so a following Get observes them.
// The cache admits items by frequency once it is full; a value that was
// never admitted simply misses on the next Get.
package cache
