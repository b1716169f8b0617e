package pinger

import "context"

// Pinger is a named health check.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}
