// Package session keeps per-browser session state for the auth screens.
//
// A session starts anonymous. After a successful login the backend bearer
// token is attached with Manager.Authenticate, which rotates the session token
// and caps the session lifetime at the token's exp claim. Manager.Logout
// removes the stored session and hands back a fresh anonymous one.
//
// Persistence is pluggable through Store. MemoryStore serves single-instance
// deployments and tests; integration/database/redis provides a shared store.
//
//	store := session.NewMemoryStore[AppData]()
//	mgr := session.NewManager(store, session.WithTTL(24*time.Hour))
//
//	sess, _ := mgr.New(ctx, session.NewSessionParams{IP: ip})
//	sess, err := mgr.Authenticate(ctx, sess, reply.Token, email)
//
// Sessions are values: handlers mutate a copy and hand it back to
// Manager.Store, which persists only modified sessions.
package session
