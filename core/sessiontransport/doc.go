// Package sessiontransport moves sessions between HTTP requests and a
// session.Manager.
//
// Cookie keeps only the opaque session token on the client, in a signed
// cookie. The backend auth token and e-mail stay server side in the store.
//
//	transport := sessiontransport.NewCookie(manager, cookies, "__session")
//	sess, _ := transport.Load(ctx)
//	sess, err := transport.Authenticate(ctx, sess, reply.Token, email)
//	...
//	_ = transport.Store(ctx, sess)
//
// Load never fails for a missing or stale cookie: it returns a fresh
// anonymous session bound to the client IP and User-Agent.
package sessiontransport
