package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skillcoder/podstream/internal/logic/podsync"
)

type allChannelsCloseCase struct {
	name                         string
	giveNumChannels              int
	giveContextCancelBeforeClose bool
	wantClosed                   bool
}

func TestAllChannelsClose(t *testing.T) {
	logger := slog.Default()

	tests := []allChannelsCloseCase{
		{
			name:            "zero channels closes immediately",
			giveNumChannels: 0,
			wantClosed:      true,
		},
		{
			name:            "one channel closes when it closes",
			giveNumChannels: 1,
			wantClosed:      true,
		},
		{
			name:            "two channels close when both close",
			giveNumChannels: 2,
			wantClosed:      true,
		},
		{
			name:                         "context cancelled then channels close",
			giveNumChannels:              2,
			giveContextCancelBeforeClose: true,
			wantClosed:                   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()

			if tt.giveContextCancelBeforeClose {
				var cancel context.CancelFunc

				ctx, cancel = context.WithCancel(ctx)
				cancel()
			}

			chans := make([]<-chan struct{}, 0, tt.giveNumChannels)
			readyChans := make([]chan struct{}, 0, tt.giveNumChannels)

			for range tt.giveNumChannels {
				ch := make(chan struct{})

				readyChans = append(readyChans, ch)
				chans = append(chans, ch)
			}

			out := allChannelsClose(ctx, logger, chans...)

			if tt.giveNumChannels == 0 {
				select {
				case <-out:
				case <-time.After(100 * time.Millisecond):
					t.Fatal("expected out channel to close immediately")
				}

				return
			}

			for _, ch := range readyChans {
				close(ch)
			}

			select {
			case <-out:
			case <-time.After(500 * time.Millisecond):
				t.Fatal("expected out channel to close after all input channels closed")
			}
		})
	}
}

func TestAllChannelsClose_WaitsForPending(t *testing.T) {
	t.Parallel()

	closed := make(chan struct{})
	pending := make(chan struct{})

	close(closed)

	out := allChannelsClose(t.Context(), slog.Default(), closed, pending)

	select {
	case <-out:
		t.Fatal("out closed while a channel is still open")
	case <-time.After(50 * time.Millisecond):
	}

	close(pending)

	select {
	case <-out:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected out channel to close after pending channel closed")
	}
}

type fakePodRunner struct {
	err error
}

func (f *fakePodRunner) Name() string                     { return "podsync" }
func (f *fakePodRunner) Ping(context.Context) error       { return nil }
func (f *fakePodRunner) Shutdown(context.Context) error   { return nil }
func (f *fakePodRunner) RunCommand(context.Context) error { return f.err }
func (f *fakePodRunner) Ready() <-chan struct{}           { return nil }

func TestApp_RunPods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		giveErr   error
		wantErr   error
		wantFatal bool
	}{
		{
			name: "clean stop",
		},
		{
			name:      "authentication gave up",
			giveErr:   fmt.Errorf("run supervisor: %w", podsync.ErrAuth),
			wantErr:   podsync.ErrAuth,
			wantFatal: true,
		},
		{
			name:    "already started",
			giveErr: errors.New("podsync service already started"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			a := &App{
				logger: slog.New(slog.NewTextHandler(&buf, nil)),
				pods:   &fakePodRunner{err: tt.giveErr},
			}

			err := a.runPods(t.Context())

			switch {
			case tt.giveErr == nil:
				require.NoError(t, err)
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.ErrorIs(t, err, tt.giveErr)
			}

			if tt.wantFatal {
				require.Contains(t, buf.String(), "pod sync cannot authenticate")
			} else {
				require.Empty(t, buf.String())
			}
		})
	}
}
