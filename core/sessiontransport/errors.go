package sessiontransport

import "errors"

// ErrNoToken is returned when the request carries an empty session cookie.
var ErrNoToken = errors.New("sessiontransport: no token")
