package services

import "errors"

// ErrUserNotFound is returned when an individual target does not resolve
// to an existing user. The creation path rejects it before any fan-out,
// so no partial state is left behind.
var ErrUserNotFound = errors.New("user not found")
