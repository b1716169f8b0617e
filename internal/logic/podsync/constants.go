package podsync

import "time"

// Mode selects how the watch client authenticates and how the supervisor
// reacts to authentication failures.
type Mode string

const (
	// ModeProduction uses the in-cluster service identity and fails fast
	// once authentication keeps failing.
	ModeProduction Mode = "production"

	// ModeDevelopment uses local operator credentials and retries forever.
	ModeDevelopment Mode = "development"
)

const (
	DefaultReconnectDelay    = 5 * time.Second
	DefaultReconnectMaxDelay = time.Minute
	DefaultDevReconnectDelay = 15 * time.Second
	DefaultMaxAuthRetries    = 3
	DefaultSubscriberBuffer  = 256

	defaultBackoffFactor = 2.0
	defaultBackoffJitter = 0.1
)
