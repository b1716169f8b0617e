package k8s

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/skillcoder/podstream/internal/infra/metrics"
	"github.com/skillcoder/podstream/internal/logic/podsync"
)

// stream adapts a watch.Interface to podsync.Stream.
type stream struct {
	logger   *slog.Logger
	watcher  watch.Interface
	convert  func(*corev1.Pod) podsync.Pod
	events   chan podsync.Event
	stopCh   chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	err      error
}

func newStream(
	logger *slog.Logger,
	watcher watch.Interface,
	convert func(*corev1.Pod) podsync.Pod,
	bufferSize int,
) *stream {
	return &stream{
		logger:  logger,
		watcher: watcher,
		convert: convert,
		events:  make(chan podsync.Event, bufferSize),
		stopCh:  make(chan struct{}),
	}
}

var _ podsync.Stream = (*stream)(nil)

func (s *stream) Events() <-chan podsync.Event {
	return s.events
}

func (s *stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Stop closes the underlying connection. Safe to call more than once.
func (s *stream) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.watcher.Stop()
	})
}

func (s *stream) run(ctx context.Context) {
	defer close(s.events)
	defer s.watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			s.setErr(ctx.Err())

			return
		case <-s.stopCh:
			s.setErr(errStreamStopped)

			return
		case raw, ok := <-s.watcher.ResultChan():
			if !ok {
				s.setErr(errResultChannelClosed)

				return
			}

			ev, skip, err := s.translate(raw)
			if err != nil {
				s.setErr(err)

				return
			}

			if skip {
				continue
			}

			select {
			case s.events <- ev:
			case <-ctx.Done():
				s.setErr(ctx.Err())

				return
			case <-s.stopCh:
				s.setErr(errStreamStopped)

				return
			}
		}
	}
}

// translate converts a raw watch record. Malformed records are skipped;
// an error status terminates the stream.
func (s *stream) translate(raw watch.Event) (podsync.Event, bool, error) {
	var eventType podsync.EventType

	switch raw.Type {
	case watch.Added:
		eventType = podsync.EventAdded
	case watch.Modified:
		eventType = podsync.EventModified
	case watch.Deleted:
		eventType = podsync.EventDeleted
	case watch.Bookmark:
		return podsync.Event{}, true, nil
	case watch.Error:
		return podsync.Event{}, false, classifyAPIError(apierrors.FromObject(raw.Object))
	default:
		s.skip(&ParseError{reason: fmt.Sprintf("unknown event type %q", raw.Type)})

		return podsync.Event{}, true, nil
	}

	pod, ok := raw.Object.(*corev1.Pod)
	if !ok {
		s.skip(&ParseError{reason: fmt.Sprintf("unexpected object %T", raw.Object)})

		return podsync.Event{}, true, nil
	}

	if pod.Name == "" || pod.Namespace == "" {
		s.skip(&ParseError{reason: "pod without name or namespace"})

		return podsync.Event{}, true, nil
	}

	return podsync.Event{Type: eventType, Pod: s.convert(pod)}, false, nil
}

func (s *stream) skip(err error) {
	metrics.RecordParseError()
	s.logger.Warn("skipping watch event", "reason", err)
}

func (s *stream) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err == nil {
		s.err = err
	}
}
