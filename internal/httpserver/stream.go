package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/skillcoder/podstream/internal/logic/podsync"
)

// handleStream serves the snapshot followed by live pod updates as
// server-sent events until the client leaves or the subscription ends.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.logger.With("traceID", middleware.GetReqID(ctx))

	rc := http.NewResponseController(w)

	// The server write timeout would otherwise cut long-lived streams.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.WarnContext(ctx, "failed to clear write deadline", "reason", err)
	}

	snapshot, sub, err := s.pods.Subscribe()
	if err != nil {
		logger.WarnContext(ctx, "subscribe failed", "reason", err)
		http.Error(w, "pod stream unavailable", http.StatusServiceUnavailable)

		return
	}
	defer s.pods.Unsubscribe(sub.ID())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	logger.DebugContext(ctx, "stream client connected", "subscriber", sub.ID(), "pods", len(snapshot))

	if err := writeEvent(w, rc, sseEventSnapshot, toPodsResponse(snapshot, time.Now())); err != nil {
		logger.DebugContext(ctx, "failed to write snapshot", "reason", err)

		return
	}

	keepAlive := time.NewTicker(s.keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.DebugContext(ctx, "stream client disconnected", "subscriber", sub.ID())

			return
		case <-keepAlive.C:
			if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
				return
			}

			if err := rc.Flush(); err != nil {
				return
			}
		case ev, ok := <-sub.Events():
			if !ok {
				reason := terminationReason(sub.Err())
				logger.InfoContext(ctx, "stream subscription ended", "subscriber", sub.ID(), "reason", reason)

				_ = writeEvent(w, rc, sseEventTerminated, terminatedResponse{Reason: reason})

				return
			}

			update := podUpdateResponse{
				Type: string(ev.Type),
				Pod:  toPodResponse(ev.Pod, time.Now()),
			}

			if err := writeEvent(w, rc, sseEventPodUpdate, update); err != nil {
				logger.DebugContext(ctx, "failed to write pod update", "reason", err)

				return
			}
		}
	}
}

func writeEvent(w io.Writer, rc *http.ResponseController, event string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("write %s event: %w", event, err)
	}

	if err := rc.Flush(); err != nil {
		return fmt.Errorf("flush %s event: %w", event, err)
	}

	return nil
}

func terminationReason(err error) string {
	switch {
	case errors.Is(err, podsync.ErrSubscriberOverflow):
		return terminatedOverflow
	case errors.Is(err, podsync.ErrBroadcasterClosed):
		return terminatedShutdown
	default:
		return terminatedClosed
	}
}
