package health

import "errors"

// ErrCheckTimeout replaces context.DeadlineExceeded in check results.
var ErrCheckTimeout = errors.New("health: check timeout")
