package app

import (
	"context"

	"github.com/skillcoder/podstream/internal/infra/pinger"
	"github.com/skillcoder/podstream/internal/infra/shutdown"
)

type appstater interface {
	RegisterPinger(pinger pinger.Pinger) error
	RegisterShutdowner(shutdowner shutdown.Shutdowner)
	StartPinger(ctx context.Context) (<-chan struct{}, error)
	SetStarting(ctx context.Context) error
	SetRunning(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type signalHandler interface {
	HandleSignals(ctx context.Context, cancel func())
	CheckTermination(ctx context.Context) error
}

type appServer interface {
	pinger.Pinger
	Start(ctx context.Context) error
	Ready() <-chan struct{}
	shutdown.Shutdowner
}

type podRunner interface {
	pinger.Pinger
	shutdown.Shutdowner
	RunCommand(ctx context.Context) error
	Ready() <-chan struct{}
}

type scheduler interface {
	shutdown.Shutdowner
	Run(ctx context.Context) error
}
