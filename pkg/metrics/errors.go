package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrNoManager = errors.New("metrics manager not set")
)
