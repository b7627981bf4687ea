package commands

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/pixil98/go-arena/internal/game"
	"github.com/pixil98/go-arena/internal/session"
)

// move handles "move <direction> [distance]". The whole check-and-commit runs
// under the registry lock so two players can never land on the same tile.
func (h *Handler) move(ctx context.Context, in *Input) error {
	if len(in.Args) < 1 || len(in.Args) > 2 {
		return h.userError(MsgMoveUsage, nil)
	}

	dir, ok := game.ParseDirection(in.Args[0])
	if !ok {
		return h.userError(MsgInvalidDirection, nil)
	}

	distance := 1
	if len(in.Args) == 2 {
		d, err := strconv.Atoi(in.Args[1])
		if err != nil || d <= 0 {
			return h.userError(MsgMoveUsage, nil)
		}
		distance = d
	}

	var (
		live        bool
		outOfBounds bool
		blocker     string
		to          game.Position
	)
	h.registry.Exec(func(v *session.View) {
		if !v.Contains(in.Actor) {
			return
		}
		live = true

		// Anything this far is out of bounds from every tile; checking first
		// keeps the addition below from overflowing.
		if distance > 2*game.MaxCoord {
			outOfBounds = true
			return
		}

		to = in.Actor.Position().Step(dir, distance)
		if !to.InBounds() {
			outOfBounds = true
			return
		}
		if b := v.OccupantAt(to, in.Actor); b != nil {
			blocker = b.Name()
			return
		}
		in.Actor.SetPosition(to)
	})

	switch {
	case !live:
		return nil
	case outOfBounds:
		return h.userError(MsgOutOfBounds, nil)
	case blocker != "":
		return h.userError(MsgBlocked, &MessageData{Actor: in.Actor.Name(), Target: blocker})
	}

	slog.DebugContext(ctx, "player moved", "player", in.Actor.Name(), "x", to.X, "y", to.Y)
	h.registry.Publish(session.Event{
		Kind:    session.EventMoved,
		Session: in.Actor.Id(),
		Player:  in.Actor.Name(),
		X:       to.X,
		Y:       to.Y,
	})

	return in.Actor.Send(h.msgs.Render(MsgMoved, &MessageData{
		Actor:     in.Actor.Name(),
		Direction: dir.String(),
		X:         to.X,
		Y:         to.Y,
	}))
}
