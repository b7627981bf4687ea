package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/pixil98/go-arena/cmd/arena/command"
	"github.com/pixil98/go-service"
)

func main() {
	// A shutdown command from a player cancels the whole application.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := service.NewApp(&command.Config{}, command.WorkerBuilder(cancel))
	if err != nil {
		slog.Error("creating application", "error", err)
		os.Exit(1)
	}

	err = app.Run(ctx)
	if err != nil {
		slog.Error("running application", "error", err)
		os.Exit(1)
	}

	slog.Info("exiting")
}
