package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"k8s.io/client-go/kubernetes"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/skillcoder/podstream/internal/adapters/outbound/k8s"
	"github.com/skillcoder/podstream/internal/config"
	"github.com/skillcoder/podstream/internal/httpserver"
	"github.com/skillcoder/podstream/internal/infra/appstate"
	"github.com/skillcoder/podstream/internal/infra/pinger"
	"github.com/skillcoder/podstream/internal/infra/resync"
	"github.com/skillcoder/podstream/internal/infra/shutdown"
	"github.com/skillcoder/podstream/internal/logic/podsync"
)

type App struct {
	logger        *slog.Logger
	appState      appstater
	signals       signalHandler
	pods          podRunner
	httpServer    appServer
	metricsServer appServer
	scheduler     scheduler
}

// New wires the kube clients, the pod sync service and the servers.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	appState *appstate.AppState,
) (*App, error) {
	restConfig, err := k8s.NewRestConfig(cfg.DeploymentMode, cfg.KubeMaster, cfg.KubeConfig)
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("create clientset: %w", err)
	}

	var metricsClientset metricsv.Interface

	if cfg.MetricsEnrichment {
		metricsClientset, err = metricsv.NewForConfig(restConfig)
		if err != nil {
			return nil, fmt.Errorf("create metrics clientset: %w", err)
		}
	}

	k8sRepo := k8s.New(logger, clientset, metricsClientset, cfg.Namespace, cfg.PodLabelSelector)

	pods := podsync.New(logger, k8sRepo, podsync.Options{
		Supervisor: podsync.SupervisorConfig{
			Mode:              cfg.DeploymentMode,
			ReconnectDelay:    cfg.ReconnectDelay,
			ReconnectMaxDelay: cfg.ReconnectMaxDelay,
			DevReconnectDelay: cfg.DevReconnectDelay,
			MaxAuthRetries:    cfg.MaxAuthRetries,
		},
		SubscriberBuffer: cfg.SubscriberBuffer,
	})

	a := &App{
		logger:        logger,
		appState:      appState,
		signals:       shutdown.New(logger, appState, shutdown.DefaultTerminationFile),
		pods:          pods,
		httpServer:    httpserver.New(logger, appState, pods, cfg.HTTPPort),
		metricsServer: httpserver.NewMetricsServer(logger, cfg.MetricsPort),
	}

	if cfg.ResyncSchedule != "" {
		sched, err := resync.New(logger, cfg.ResyncSchedule, cfg.ResyncTZ, pods)
		if err != nil {
			return nil, fmt.Errorf("create resync scheduler: %w", err)
		}

		a.scheduler = sched
	}

	pingers := []pinger.Pinger{
		a.metricsServer,
		a.httpServer,
		a.pods,
		k8s.NewAPIPinger(clientset.Discovery().RESTClient()),
	}

	for _, p := range pingers {
		if err := appState.RegisterPinger(p); err != nil {
			return nil, fmt.Errorf("register pinger %s: %w", p.Name(), err)
		}
	}

	// Shutdown runs in reverse: pods first so open streams end before
	// the http server drains them.
	appState.RegisterShutdowner(a.metricsServer)
	appState.RegisterShutdowner(a.httpServer)

	if a.scheduler != nil {
		appState.RegisterShutdowner(a.scheduler)
	}

	appState.RegisterShutdowner(a.pods)

	return a, nil
}

// Run starts every component and blocks until a termination signal arrives
// or the pod sync fails fatally.
func (a *App) Run(originCtx context.Context) error {
	if err := a.signals.CheckTermination(originCtx); err != nil {
		return fmt.Errorf("check termination: %w", err)
	}

	if err := a.appState.SetStarting(originCtx); err != nil {
		return fmt.Errorf("set starting: %w", err)
	}

	ctx, cancel := context.WithCancel(originCtx)
	defer cancel()

	go a.signals.HandleSignals(ctx, cancel)

	g, gctx := errgroup.WithContext(ctx)

	if err := a.metricsServer.Start(gctx); err != nil {
		return fmt.Errorf("start metrics server: %w", err)
	}

	if err := a.httpServer.Start(gctx); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}

	pingerReady, err := a.appState.StartPinger(gctx)
	if err != nil {
		return fmt.Errorf("start pinger: %w", err)
	}

	a.logger.InfoContext(ctx, "starting pod sync")

	g.Go(func() error {
		return a.runPods(gctx)
	})

	if a.scheduler != nil {
		g.Go(func() error {
			return a.scheduler.Run(gctx)
		})
	}

	g.Go(func() error {
		<-allChannelsClose(gctx, a.logger,
			a.metricsServer.Ready(),
			a.httpServer.Ready(),
			a.pods.Ready(),
			pingerReady,
		)

		if gctx.Err() != nil {
			return nil
		}

		if err := a.appState.SetRunning(gctx); err != nil {
			return fmt.Errorf("set running: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		a.logger.InfoContext(gctx, "shutting down")

		if err := a.appState.Shutdown(context.WithoutCancel(gctx)); err != nil {
			return fmt.Errorf("shutdown application: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	return nil
}

// runPods runs the pod sync until ctx ends. Only a fatal failure is returned,
// which ends the errgroup and with it the process.
func (a *App) runPods(ctx context.Context) error {
	err := a.pods.RunCommand(ctx)
	if err == nil {
		return nil
	}

	if podsync.IsFatal(err) {
		a.logger.ErrorContext(ctx, "pod sync cannot authenticate, stopping", "reason", err)
	}

	return fmt.Errorf("pod sync: %w", err)
}

// allChannelsClose returns a channel closed once every ch is closed or ctx
// is done, whichever happens first.
func allChannelsClose(ctx context.Context, logger *slog.Logger, chans ...<-chan struct{}) <-chan struct{} {
	out := make(chan struct{})

	go func() {
		defer close(out)

		for i, ch := range chans {
			select {
			case <-ch:
			case <-ctx.Done():
				logger.DebugContext(ctx, "stopped waiting for readiness", "pending", len(chans)-i)

				return
			}
		}
	}()

	return out
}
