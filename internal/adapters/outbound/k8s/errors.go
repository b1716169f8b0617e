package k8s

import (
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/skillcoder/podstream/internal/logic/podsync"
)

// AuthError represents rejected or expired credentials.
type AuthError struct {
	err error
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.err
}

func (e *AuthError) Is(target error) bool {
	return target == podsync.ErrAuth
}

func (e *AuthError) IsAuthFailure() {}

// StreamClosedError represents a watch the server ended, including an
// expired resource version.
type StreamClosedError struct {
	reason string
}

func (e *StreamClosedError) Error() string {
	return "watch stream closed: " + e.reason
}

func (e *StreamClosedError) Is(target error) bool {
	return target == podsync.ErrStreamClosed
}

func (e *StreamClosedError) IsStreamClosed() {}

// ConnectionError represents any other transport or server failure.
type ConnectionError struct {
	err error
}

func (e *ConnectionError) Error() string {
	return "connection failed: " + e.err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.err
}

func (e *ConnectionError) Is(target error) bool {
	return target == podsync.ErrConnection
}

// ParseError represents a single watch record that cannot be used.
type ParseError struct {
	reason string
}

func (e *ParseError) Error() string {
	return "malformed watch event: " + e.reason
}

func (e *ParseError) Is(target error) bool {
	return target == podsync.ErrParse
}

var errStreamStopped = &StreamClosedError{reason: "stopped by client"}

var errResultChannelClosed = &StreamClosedError{reason: "result channel closed"}

func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case apierrors.IsUnauthorized(err), apierrors.IsForbidden(err):
		return &AuthError{err: err}
	case apierrors.IsGone(err), apierrors.IsResourceExpired(err):
		return &StreamClosedError{reason: err.Error()}
	}

	return &ConnectionError{err: err}
}
