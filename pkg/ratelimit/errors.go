package ratelimit

import "errors"

var ErrInvalidConfig = errors.New("ratelimit: requests and interval must be positive")
