package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-arena/internal/game"
	"github.com/pixil98/go-arena/internal/session"
)

// DefaultDamage is the health removed by a single attack.
const DefaultDamage = 10

// Input is a single parsed command line.
type Input struct {
	Actor *game.Player
	// Args are the whitespace separated words after the keyword.
	Args []string
	// Rest is everything after the keyword with surrounding space trimmed.
	Rest string
}

// CommandFunc executes one command. Returning a *UserError sends its message
// back to the actor; any other error is a system failure for that session.
type CommandFunc func(ctx context.Context, in *Input) error

type Handler struct {
	registry *session.Registry
	msgs     *Messages
	damage   int
	commands map[string]CommandFunc
}

type HandlerOpt func(*Handler)

// WithDamage sets the damage dealt by attack.
func WithDamage(d int) HandlerOpt {
	return func(h *Handler) {
		h.damage = d
	}
}

// WithMessages replaces the stock message set. msgs should already be compiled.
func WithMessages(msgs *Messages) HandlerOpt {
	return func(h *Handler) {
		if msgs != nil {
			h.msgs = msgs
		}
	}
}

func NewHandler(reg *session.Registry, opts ...HandlerOpt) *Handler {
	h := &Handler{
		registry: reg,
		msgs:     DefaultMessages(),
		damage:   DefaultDamage,
		commands: make(map[string]CommandFunc),
	}
	for _, opt := range opts {
		opt(h)
	}

	// Register built-in commands
	_ = h.Register("move", h.move)
	_ = h.Register("attack", h.attack)
	_ = h.Register("shutdown", h.shutdown)
	return h
}

// Register adds a command under a case-insensitive keyword.
func (h *Handler) Register(name string, fn CommandFunc) error {
	name = strings.ToLower(name)
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("command func cannot be nil")
	}
	if _, exists := h.commands[name]; exists {
		return fmt.Errorf("command %q already registered", name)
	}
	h.commands[name] = fn
	return nil
}

// Exec parses and runs one line from actor. Blank lines are ignored, as is
// anything from a player who is no longer live.
func (h *Handler) Exec(ctx context.Context, actor *game.Player, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !h.registry.Live(actor) {
		return nil
	}

	parts := strings.Fields(line)
	keyword := parts[0]

	fn, ok := h.commands[strings.ToLower(keyword)]
	if !ok {
		return NewUserError(h.msgs.Render(MsgUnknown, nil))
	}

	return fn(ctx, &Input{
		Actor: actor,
		Args:  parts[1:],
		Rest:  strings.TrimSpace(line[len(keyword):]),
	})
}

func (h *Handler) userError(name string, data *MessageData) error {
	return NewUserError(h.msgs.Render(name, data))
}
