// Package cookie manages HTTP cookies with HMAC signing, AES-256-GCM
// encryption and one-time flash values.
//
// Each secret yields separate signing and encryption keys through HKDF-SHA256.
// The first secret is used for writing; every secret is tried when reading,
// so secrets can be rotated by prepending a new one.
//
//	m, err := cookie.New([]string{os.Getenv("COOKIE_SECRET")}, cookie.WithSecure(true))
//
//	_ = m.SetSigned(w, "sid", token, cookie.WithMaxAge(86400))
//	token, err := m.GetSigned(r, "sid")
//
//	_ = m.SetFlash(w, "banner", Banner{Kind: "success", Text: "Password updated"})
//	var b Banner
//	err = m.GetFlash(w, r, "banner", &b) // deleted after reading
//
// Configuration can be loaded from the environment with Config and NewFromConfig.
// COOKIE_SECRETS holds comma-separated secrets of at least 32 characters.
package cookie
