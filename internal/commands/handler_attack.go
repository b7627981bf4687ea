package commands

import (
	"context"
	"log/slog"

	"github.com/pixil98/go-arena/internal/game"
	"github.com/pixil98/go-arena/internal/session"
)

// attack handles "attack <name>". Damage and, on defeat, eviction from the
// registry happen in one critical section so a target is defeated only once.
// A defeated player gets the hit and defeat notices and is then disconnected
// without the usual departure notice.
func (h *Handler) attack(ctx context.Context, in *Input) error {
	name := session.NormalizeName(in.Rest)
	if name == "" {
		return h.userError(MsgAttackUsage, nil)
	}

	var (
		live     bool
		target   *game.Player
		inRange  bool
		health   int
		defeated bool
	)
	h.registry.Exec(func(v *session.View) {
		if !v.Contains(in.Actor) {
			return
		}
		live = true

		target = v.FindByName(name, in.Actor)
		if target == nil {
			return
		}
		if !in.Actor.Position().Adjacent(target.Position()) {
			return
		}
		inRange = true

		health = target.Stats().Damage(h.damage)
		if health == 0 {
			defeated = v.Evict(target)
		}
	})

	switch {
	case !live:
		return nil
	case target == nil:
		return h.userError(MsgTargetNotFound, &MessageData{Actor: in.Actor.Name(), Target: name})
	case !inRange:
		return h.userError(MsgTargetOutOfRange, &MessageData{Actor: in.Actor.Name(), Target: target.Name()})
	}

	data := &MessageData{
		Actor:  in.Actor.Name(),
		Target: target.Name(),
		Damage: h.damage,
		Health: health,
	}
	hit := h.msgs.Render(MsgHit, data)

	h.registry.Publish(session.Event{
		Kind:    session.EventHit,
		Session: in.Actor.Id(),
		Player:  in.Actor.Name(),
		Target:  target.Name(),
		Health:  health,
	})
	h.registry.Notify(hit, nil)

	if !defeated {
		return nil
	}

	slog.InfoContext(ctx, "player defeated", "player", target.Name(), "by", in.Actor.Name())
	h.registry.Publish(session.Event{
		Kind:    session.EventDefeated,
		Session: target.Id(),
		Player:  target.Name(),
		Target:  in.Actor.Name(),
	})

	defeat := h.msgs.Render(MsgDefeated, data)
	h.registry.Notify(defeat, nil)

	// The target already left the live set, so broadcasts skip it.
	for _, msg := range []string{hit, defeat} {
		if err := target.Send(msg); err != nil {
			slog.DebugContext(ctx, "notifying defeated player", "player", target.Name(), "error", err)
			break
		}
	}
	if err := target.Close(); err != nil {
		slog.DebugContext(ctx, "closing defeated player", "player", target.Name(), "error", err)
	}

	return nil
}
