package podsync

import "context"

// Repository is the port interface for the control plane pod endpoints.
// Implementations are provided by adapters in the outbound layer.
type Repository interface {
	ListPodsQuery(ctx context.Context) (*PodList, error)

	WatchPodsQuery(
		ctx context.Context,
		resourceVersion string,
	) (Stream, error)
}

// Stream is an open watch. Events is closed when the watch terminates,
// after which Err reports why.
type Stream interface {
	Events() <-chan Event
	Err() error
	Stop()
}

// reconciler is the write side the supervisor feeds.
type reconciler interface {
	apply(ev Event)
	replaceAll(pods []Pod)
}

// authFailure is a private interface for checking authentication errors
// without importing the adapter package.
type authFailure interface {
	IsAuthFailure()
}

// streamClosed is a private interface for checking clean stream closes
// without importing the adapter package.
type streamClosed interface {
	IsStreamClosed()
}
