package podsync

import "errors"

var (
	ErrConnection         = errors.New("control plane connection failure")
	ErrAuth               = errors.New("control plane authentication failure")
	ErrParse              = errors.New("malformed watch event")
	ErrStreamClosed       = errors.New("watch stream closed")
	ErrSubscriberOverflow = errors.New("subscriber queue overflow")
	ErrBroadcasterClosed  = errors.New("broadcaster closed")

	errResyncRequested = errors.New("resync requested")
)
