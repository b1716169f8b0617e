package podsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/skillcoder/podstream/internal/infra/metrics"
)

// State is the supervisor lifecycle state.
type State string

const (
	StateStarting     State = "starting"
	StateWatching     State = "watching"
	StateReconnecting State = "reconnecting"
	StateStopped      State = "stopped"
)

type failureKind string

const (
	failureConnection   failureKind = "connection"
	failureAuth         failureKind = "auth"
	failureStreamClosed failureKind = "stream_closed"
)

// SupervisorConfig tunes reconnection. Zero delays and jitter fall back to
// defaults; MaxAuthRetries is taken as is.
type SupervisorConfig struct {
	Mode              Mode
	ReconnectDelay    time.Duration
	ReconnectMaxDelay time.Duration
	DevReconnectDelay time.Duration
	// MaxAuthRetries is the number of consecutive authentication failures
	// tolerated in production before the supervisor stops. Zero stops on the
	// first one.
	MaxAuthRetries int
	// BackoffJitter is passed to wait.Backoff; negative disables jitter.
	BackoffJitter float64
}

func (c SupervisorConfig) withDefaults() SupervisorConfig {
	if c.Mode == "" {
		c.Mode = ModeDevelopment
	}

	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}

	if c.ReconnectMaxDelay <= 0 {
		c.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}

	if c.DevReconnectDelay <= 0 {
		c.DevReconnectDelay = DefaultDevReconnectDelay
	}

	if c.MaxAuthRetries < 0 {
		c.MaxAuthRetries = 0
	}

	switch {
	case c.BackoffJitter == 0:
		c.BackoffJitter = defaultBackoffJitter
	case c.BackoffJitter < 0:
		c.BackoffJitter = 0
	}

	return c
}

// Supervisor runs the list-then-watch cycle and restarts it on failure.
type Supervisor struct {
	logger *slog.Logger
	repo   Repository
	sink   reconciler
	cfg    SupervisorConfig
	resync chan struct{}
	mu     sync.RWMutex
	state  State
}

func newSupervisor(
	logger *slog.Logger,
	repo Repository,
	sink reconciler,
	cfg SupervisorConfig,
) *Supervisor {
	return &Supervisor{
		logger: logger.With("component", "supervisor"),
		repo:   repo,
		sink:   sink,
		cfg:    cfg.withDefaults(),
		resync: make(chan struct{}, 1),
		state:  StateStarting,
	}
}

// State returns the current state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// RequestResync asks for an immediate relist. Requests coalesce.
func (s *Supervisor) RequestResync() {
	select {
	case s.resync <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled or authentication fails fatally in
// production. Only the latter returns an error.
func (s *Supervisor) Run(ctx context.Context) error {
	defer s.setState(ctx, StateStopped)

	backoff := s.newBackoff()
	authFailures := 0

	s.setState(ctx, StateStarting)

	for {
		err := s.syncOnce(ctx, func() {
			backoff = s.newBackoff()
			authFailures = 0
		})

		if ctx.Err() != nil {
			s.logger.InfoContext(ctx, "terminating pod watch loop")

			return nil
		}

		if errors.Is(err, errResyncRequested) {
			metrics.RecordResync()
			s.logger.InfoContext(ctx, "resync requested, relisting pods")
			s.setState(ctx, StateStarting)

			continue
		}

		kind := classify(err)
		if kind == failureAuth {
			authFailures++

			if s.cfg.Mode == ModeProduction && authFailures > s.cfg.MaxAuthRetries {
				s.logger.ErrorContext(ctx, "authentication keeps failing, giving up",
					"attempts", authFailures,
					"reason", err,
				)

				return fmt.Errorf("%w: %w", ErrAuth, err)
			}
		}

		s.setState(ctx, StateReconnecting)
		metrics.RecordReconnect(string(kind))

		delay := backoff.Step()

		s.logger.WarnContext(ctx, "pod watch interrupted, reconnecting",
			"kind", string(kind),
			"delay", delay,
			"reason", err,
		)

		if !sleep(ctx, delay) {
			s.logger.InfoContext(ctx, "reconnect cancelled")

			return nil
		}
	}
}

// syncOnce lists, seeds the reconciler, then consumes the watch until it
// ends. It always returns a non-nil error describing why it stopped.
func (s *Supervisor) syncOnce(ctx context.Context, onWatching func()) error {
	select {
	case <-s.resync:
	default:
	}

	list, err := s.repo.ListPodsQuery(ctx)
	if err != nil {
		return fmt.Errorf("list pods: %w", err)
	}

	s.sink.replaceAll(list.Pods)

	s.logger.InfoContext(ctx, "pods listed",
		"count", len(list.Pods),
		"resourceVersion", list.ResourceVersion,
	)

	stream, err := s.repo.WatchPodsQuery(ctx, list.ResourceVersion)
	if err != nil {
		return fmt.Errorf("watch pods: %w", err)
	}
	defer stream.Stop()

	s.setState(ctx, StateWatching)
	onWatching()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.resync:
			return errResyncRequested
		case ev, ok := <-stream.Events():
			if !ok {
				streamErr := stream.Err()
				if streamErr == nil {
					streamErr = ErrStreamClosed
				}

				return fmt.Errorf("watch pods: %w", streamErr)
			}

			s.sink.apply(ev)
		}
	}
}

func (s *Supervisor) newBackoff() wait.Backoff {
	base := s.cfg.ReconnectDelay
	if s.cfg.Mode != ModeProduction {
		base = s.cfg.DevReconnectDelay
	}

	return wait.Backoff{
		Duration: base,
		Factor:   defaultBackoffFactor,
		Jitter:   s.cfg.BackoffJitter,
		Steps:    math.MaxInt32,
		Cap:      max(base, s.cfg.ReconnectMaxDelay),
	}
}

func (s *Supervisor) setState(ctx context.Context, state State) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.mu.Unlock()

	if prev != state {
		metrics.SetSupervisorState(string(state))
		s.logger.DebugContext(ctx, "supervisor state changed", "from", string(prev), "to", string(state))
	}
}

func classify(err error) failureKind {
	var auth authFailure
	if errors.As(err, &auth) || errors.Is(err, ErrAuth) {
		return failureAuth
	}

	var closed streamClosed
	if errors.As(err, &closed) || errors.Is(err, ErrStreamClosed) {
		return failureStreamClosed
	}

	return failureConnection
}

// sleep waits for d and reports false when ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
