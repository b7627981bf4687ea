package session

import (
	"log/slog"

	"github.com/pixil98/go-arena/internal/game"
)

// Notify sends msg to every live player except exclude. A player whose send
// fails is removed; delivery to the others carries on.
func (r *Registry) Notify(msg string, exclude *game.Player) {
	for _, p := range r.Snapshot() {
		if p == exclude {
			continue
		}
		if err := p.Send(msg); err != nil {
			slog.Warn("notify failed, dropping player", "player", p.Name(), "error", err)
			r.Remove(p)
		}
	}
}
