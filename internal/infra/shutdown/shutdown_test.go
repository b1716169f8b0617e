package shutdown_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skillcoder/podstream/internal/infra/shutdown"
	"github.com/skillcoder/podstream/internal/infra/shutdown/mocks"
)

type fakeQuiter struct {
	ch chan os.Signal
}

func (q *fakeQuiter) Quit() <-chan os.Signal {
	return q.ch
}

func TestCheckTerminationFile(t *testing.T) {
	t.Parallel()

	logger := slog.Default()

	t.Run("file missing returns false", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nonexistent")

		require.False(t, shutdown.CheckTerminationFile(t.Context(), logger, path))
	})

	t.Run("empty path returns false", func(t *testing.T) {
		t.Parallel()

		require.False(t, shutdown.CheckTerminationFile(t.Context(), logger, ""))
	})

	t.Run("file exists returns true", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "terminating")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		require.True(t, shutdown.CheckTerminationFile(t.Context(), logger, path))
	})
}

func TestHandler_CheckTermination(t *testing.T) {
	t.Parallel()

	logger := slog.Default()

	t.Run("no file passes", func(t *testing.T) {
		t.Parallel()

		h := shutdown.New(logger, &fakeQuiter{}, filepath.Join(t.TempDir(), "terminating"))
		require.NoError(t, h.CheckTermination(t.Context()))
	})

	t.Run("file present fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "terminating")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		h := shutdown.New(logger, &fakeQuiter{}, path)
		require.ErrorIs(t, h.CheckTermination(t.Context()), shutdown.ErrTerminationFileFound)
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		h := shutdown.New(logger, &fakeQuiter{}, "")
		require.ErrorIs(t, h.CheckTermination(ctx), context.Canceled)
	})
}

func TestHandler_HandleSignals(t *testing.T) {
	t.Parallel()

	logger := slog.Default()
	quiter := &fakeQuiter{ch: make(chan os.Signal, 1)}
	h := shutdown.New(logger, quiter, "")

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	done := make(chan struct{})

	go func() {
		defer close(done)

		h.HandleSignals(ctx, cancel)
	}()

	quiter.ch <- os.Interrupt

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("signal handler did not return")
	}

	require.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestGracefulShutdown(t *testing.T) {
	t.Parallel()

	logger := slog.Default()

	t.Run("empty list returns nil", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, shutdown.GracefulShutdown(t.Context(), logger, nil))
	})

	t.Run("one shutdowner error returns error", func(t *testing.T) {
		t.Parallel()

		m := mocks.NewMockShutdowner(t)
		m.EXPECT().Name().Return("test").Once()
		m.EXPECT().Shutdown(mock.Anything).Return(context.DeadlineExceeded).Once()

		err := shutdown.GracefulShutdown(t.Context(), logger, []shutdown.Shutdowner{m})
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("multiple shutdowners called in reverse order", func(t *testing.T) {
		t.Parallel()

		var order []string

		first := mocks.NewMockShutdowner(t)
		first.EXPECT().Name().Return("first").Once()
		first.EXPECT().Shutdown(mock.Anything).RunAndReturn(func(context.Context) error {
			order = append(order, "first")

			return nil
		}).Once()

		second := mocks.NewMockShutdowner(t)
		second.EXPECT().Name().Return("second").Once()
		second.EXPECT().Shutdown(mock.Anything).RunAndReturn(func(context.Context) error {
			order = append(order, "second")

			return nil
		}).Once()

		err := shutdown.GracefulShutdown(t.Context(), logger, []shutdown.Shutdowner{first, second})
		require.NoError(t, err)
		require.Equal(t, []string{"second", "first"}, order)
	})

	t.Run("cancelled origin context still shuts down", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		m := mocks.NewMockShutdowner(t)
		m.EXPECT().Name().Return("test").Once()
		m.EXPECT().Shutdown(mock.Anything).RunAndReturn(func(ctx context.Context) error {
			return ctx.Err()
		}).Once()

		require.NoError(t, shutdown.GracefulShutdown(ctx, logger, []shutdown.Shutdowner{m}))
	})
}
