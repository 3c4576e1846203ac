package config

import "errors"

// ErrConfigNotFound is returned when an explicitly requested configuration
// file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Validation errors returned by Config.Validate.
var (
	ErrEmptyMarker        = errors.New("invalid marker: must not be empty")
	ErrNoAssetsDir        = errors.New("no assets directory specified")
	ErrInvalidFlavor      = errors.New("invalid flavor: want none, component or directive")
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")
	ErrInvalidTiming      = errors.New("invalid settle or debounce: must be non-negative")
)
