package resync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	cron "github.com/netresearch/go-cron"
)

var _parser = cron.MustNewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

type resyncer interface {
	RequestResync()
}

type schedule interface {
	Next(time.Time) time.Time
}

// Scheduler asks its target for a full relist on a cron schedule.
type Scheduler struct {
	logger     *slog.Logger
	spec       string
	schedule   schedule
	target     resyncer
	now        func() time.Time
	after      func(time.Duration) <-chan time.Time
	ready      chan struct{}
	inShutdown atomic.Bool
	cancel     atomic.Pointer[context.CancelFunc]
	doneCh     chan struct{}
	started    atomic.Bool
}

// New parses spec in timezone tz (UTC when empty). An explicit CRON_TZ= or
// TZ= prefix in spec wins over tz.
func New(
	logger *slog.Logger,
	spec string,
	tz string,
	target resyncer,
) (*Scheduler, error) {
	fullSpec := buildSpec(spec, tz)

	sched, err := _parser.Parse(fullSpec)
	if err != nil {
		return nil, fmt.Errorf("parse cron spec %q: %w", spec, err)
	}

	return &Scheduler{
		logger:   logger.With("component", "resync-scheduler"),
		spec:     fullSpec,
		schedule: sched,
		target:   target,
		now:      time.Now,
		after:    time.After,
		ready:    make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

func (s *Scheduler) Name() string {
	return "resync-scheduler"
}

// NextAfter returns the next occurrence strictly after t.
func (s *Scheduler) NextAfter(t time.Time) time.Time {
	return s.schedule.Next(t)
}

func (s *Scheduler) Ready() <-chan struct{} {
	return s.ready
}

// Run requests a resync at every occurrence until ctx is done or Shutdown
// is called.
func (s *Scheduler) Run(originCtx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("resync scheduler already started")
	}

	defer close(s.doneCh)

	ctx, cancel := context.WithCancel(originCtx)
	defer cancel()

	s.cancel.Store(&cancel)

	close(s.ready)

	if s.inShutdown.Load() {
		return nil
	}

	for {
		next := s.schedule.Next(s.now())
		if next.IsZero() {
			s.logger.WarnContext(ctx, "cron spec has no future occurrence", "spec", s.spec)

			return nil
		}

		s.logger.DebugContext(ctx, "next scheduled resync", "at", next)

		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "terminating resync scheduler")

			return nil
		case <-s.after(next.Sub(s.now())):
		}

		s.logger.InfoContext(ctx, "scheduled resync", "spec", s.spec)
		s.target.RequestResync()
	}
}

// Shutdown stops Run and waits for it to return.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	if !s.inShutdown.CompareAndSwap(false, true) {
		return nil
	}

	if !s.started.Load() {
		return nil
	}

	if cancel := s.cancel.Load(); cancel != nil {
		(*cancel)()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("shutdown context done before resync scheduler exited: %w", ctx.Err())
	case <-s.doneCh:
	}

	s.logger.InfoContext(ctx, "resync scheduler shut downed")

	return nil
}

func buildSpec(spec, tz string) string {
	hasTZPrefix := strings.HasPrefix(spec, "CRON_TZ=") ||
		strings.HasPrefix(spec, "TZ=")

	if hasTZPrefix {
		return spec
	}

	if tz == "" {
		tz = "UTC"
	}

	return "CRON_TZ=" + tz + " " + spec
}
