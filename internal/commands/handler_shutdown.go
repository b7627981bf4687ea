package commands

import (
	"context"
	"log/slog"
)

// shutdown stops the server for everyone. The notice goes to every player,
// including the one who asked, so there is no separate reply.
func (h *Handler) shutdown(ctx context.Context, in *Input) error {
	if h.registry.Shutdown(h.msgs.Render(MsgShutdown, nil)) {
		slog.InfoContext(ctx, "shutdown requested", "player", in.Actor.Name())
	}
	return nil
}
