// Package clientip extracts the client IP address from HTTP requests.
//
// Headers are checked in priority order:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry)
//  4. X-Real-IP
//  5. RemoteAddr
//
// Values are validated with net.ParseIP and normalized. 0.0.0.0 is rejected.
// When nothing valid is found the raw RemoteAddr is returned.
//
//	ip := clientip.GetIP(r)
package clientip
