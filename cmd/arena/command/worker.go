package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-service"

	"github.com/pixil98/go-arena/internal/commands"
	"github.com/pixil98/go-arena/internal/listener"
	"github.com/pixil98/go-arena/internal/messaging"
	"github.com/pixil98/go-arena/internal/player"
	"github.com/pixil98/go-arena/internal/session"
)

// WorkerBuilder returns the builder for the arena's workers. stop is called
// once the session ends, whether from a shutdown command or the app stopping.
func WorkerBuilder(stop context.CancelFunc) func(any) (service.WorkerList, error) {
	return func(config any) (service.WorkerList, error) {
		cfg, ok := config.(*Config)
		if !ok {
			return nil, fmt.Errorf("unable to cast config")
		}
		return buildWorkers(cfg, stop)
	}
}

func buildWorkers(cfg *Config, stop context.CancelFunc) (service.WorkerList, error) {
	logger, err := cfg.Log.buildLogger()
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}
	slog.SetDefault(logger)

	workers := service.WorkerList{}

	regOpts := cfg.Game.registryOpts()
	if cfg.Nats.Enabled {
		ns, err := cfg.Nats.buildNatsServer()
		if err != nil {
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		workers["nats"] = ns
		regOpts = append(regOpts, session.WithEventSink(messaging.NewEventPublisher(ns, cfg.Nats.SubjectPrefix)))
	}

	registry := session.NewRegistry(regOpts...)
	workers["session"] = &sessionWorker{registry: registry, stop: stop}

	msgs, err := cfg.buildMessages()
	if err != nil {
		return nil, err
	}
	cmdHandler := commands.NewHandler(registry, cfg.Game.handlerOpts(msgs)...)

	pm := player.NewPlayerManager(registry, cmdHandler, cfg.Game.managerOpts()...)
	cm := listener.NewConnectionManager(pm)

	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		w, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = w
	}
	workers["listeners"] = &listeners

	if cfg.Status.Enabled {
		workers["status"] = cfg.Status.buildServer(registry)
	}

	return workers, nil
}

// sessionWorker runs the registry and stops the application when the
// session is shut down.
type sessionWorker struct {
	registry *session.Registry
	stop     context.CancelFunc
}

func (w *sessionWorker) Start(ctx context.Context) error {
	defer w.stop()
	return w.registry.Start(ctx)
}
