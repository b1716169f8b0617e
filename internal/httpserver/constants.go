package httpserver

import "time"

const (
	defaultPort = "8080"

	readTimeout       = 3 * time.Second
	readHeaderTimeout = 3 * time.Second
	writeTimeout      = 5 * time.Second
	idleTimeout       = 60 * time.Second
	maxHeaderBytes    = 1 << 12 // 4kb

	sseKeepAliveInterval = 15 * time.Second
)

// SSE event names.
const (
	sseEventSnapshot   = "snapshot"
	sseEventPodUpdate  = "pod_update"
	sseEventTerminated = "terminated"
)

// Termination reasons sent in the terminated event.
const (
	terminatedOverflow = "subscriber_overflow"
	terminatedShutdown = "shutdown"
	terminatedClosed   = "unsubscribed"
)
