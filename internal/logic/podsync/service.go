package podsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/skillcoder/podstream/internal/infra/metrics"
)

// Options configures a Service.
type Options struct {
	Supervisor       SupervisorConfig
	SubscriberBuffer int
}

// Service owns the pod mirror: the store, the broadcaster and the
// supervisor feeding them. It is the downstream API of the package.
type Service struct {
	logger      *slog.Logger
	store       *Store
	broadcaster *Broadcaster
	supervisor  *Supervisor
	// commitMu makes apply+publish atomic with respect to Subscribe.
	commitMu   sync.Mutex
	ready      chan struct{}
	readyOnce  sync.Once
	doneCh     chan struct{}
	started    atomic.Bool
	inShutdown atomic.Bool
	cancelMu   sync.Mutex
	cancel     context.CancelFunc
}

// New creates a new pod sync service.
func New(
	logger *slog.Logger,
	repo Repository,
	opts Options,
) *Service {
	s := &Service{
		logger:      logger.With("component", "podsync"),
		store:       NewStore(),
		broadcaster: NewBroadcaster(logger, opts.SubscriberBuffer),
		ready:       make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	s.supervisor = newSupervisor(logger, repo, s, opts.Supervisor)

	return s
}

// Name returns the name of the component.
func (s *Service) Name() string {
	return "podsync"
}

// RunCommand runs the supervisor until ctx is cancelled, Shutdown is called
// or authentication fails fatally. Every subscriber is disconnected on return.
func (s *Service) RunCommand(originCtx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("podsync service already started")
	}

	defer close(s.doneCh)
	defer s.broadcaster.Close()

	ctx, cancel := context.WithCancel(originCtx)
	defer cancel()

	s.cancelMu.Lock()
	s.cancel = cancel
	s.cancelMu.Unlock()

	if s.inShutdown.Load() {
		return nil
	}

	err := s.supervisor.Run(ctx)
	if err != nil {
		return fmt.Errorf("run supervisor: %w", err)
	}

	return nil
}

// Ready is closed once the first full listing has been applied.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Ping reports whether the watch is currently established.
func (s *Service) Ping(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ready:
	default:
		return fmt.Errorf("pod sync is not ready")
	}

	if state := s.supervisor.State(); state != StateWatching {
		return fmt.Errorf("pod watch is %s", state)
	}

	return nil
}

// PingerReadyCritical keeps the service ready while it reconnects: clients
// still get the last snapshot followed by a full correction.
func (s *Service) PingerReadyCritical() bool {
	return false
}

// PingerCritical keeps the process alive during control plane outages;
// only a fatal authentication failure ends it.
func (s *Service) PingerCritical() bool {
	return false
}

// Shutdown stops the watch, cancels any pending reconnect and disconnects
// every subscriber.
func (s *Service) Shutdown(ctx context.Context) error {
	if !s.inShutdown.CompareAndSwap(false, true) {
		s.logger.ErrorContext(ctx, "podsync service is already shutting down, skipping shutdown")

		return nil
	}

	defer func() {
		s.logger.InfoContext(ctx, "podsync service shut downed")
	}()

	s.logger.InfoContext(ctx, "shutting down podsync service")

	if !s.started.Load() {
		s.broadcaster.Close()

		return nil
	}

	s.cancelMu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancelMu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("shutdown context done before pod watch loop exited: %w", ctx.Err())
	case <-s.doneCh:
		s.logger.InfoContext(ctx, "pod watch loop exited")
	}

	return nil
}

// Pods returns the current pod set.
func (s *Service) Pods() []Pod {
	return s.store.Snapshot()
}

// Subscribe returns the current pod set and a subscription carrying every
// event applied after that snapshot was taken.
func (s *Service) Subscribe() ([]Pod, *Subscription, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	sub, err := s.broadcaster.Subscribe()
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	return s.store.Snapshot(), sub, nil
}

// Unsubscribe releases a subscription.
func (s *Service) Unsubscribe(id string) {
	s.broadcaster.Unsubscribe(id)
}

// RequestResync triggers an immediate relist while watching.
func (s *Service) RequestResync() {
	s.supervisor.RequestResync()
}

// State returns the supervisor state.
func (s *Service) State() State {
	return s.supervisor.State()
}

// Subscribers returns the number of live subscriptions.
func (s *Service) Subscribers() int {
	return s.broadcaster.Len()
}

func (s *Service) apply(ev Event) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	stored, changed := s.store.Apply(ev)

	metrics.RecordWatchEvent(string(ev.Type))

	if !changed {
		return
	}

	s.broadcaster.Publish(stored)
	metrics.SetPods(s.store.Len())
}

func (s *Service) replaceAll(pods []Pod) {
	s.commitMu.Lock()
	diff := s.store.ReplaceAll(pods)
	s.broadcaster.Publish(diff...)
	count := s.store.Len()
	s.commitMu.Unlock()

	metrics.SetPods(count)

	if len(diff) > 0 {
		s.logger.Info("pod set replaced from listing", "changes", len(diff))
	}

	s.readyOnce.Do(func() {
		close(s.ready)
	})
}

// IsFatal reports whether err ended the service for good.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuth)
}
