package commands

import (
	"fmt"
	"log/slog"
	"text/template"

	"github.com/pixil98/go-errors"
)

const (
	MsgUnknown          = "unknown"
	MsgMoveUsage        = "move_usage"
	MsgInvalidDirection = "invalid_direction"
	MsgOutOfBounds      = "out_of_bounds"
	MsgBlocked          = "blocked"
	MsgMoved            = "moved"
	MsgAttackUsage      = "attack_usage"
	MsgTargetNotFound   = "target_not_found"
	MsgTargetOutOfRange = "target_out_of_range"
	MsgHit              = "hit"
	MsgDefeated         = "defeated"
	MsgShutdown         = "shutdown"
)

// MessageData is the data available to message templates.
type MessageData struct {
	Actor     string
	Target    string
	Direction string
	X         int
	Y         int
	Damage    int
	Health    int
}

// Messages holds the text templates for every reply and notification the
// command processor produces. Empty fields fall back to the defaults.
type Messages struct {
	Unknown          string `json:"unknown,omitempty"`
	MoveUsage        string `json:"move_usage,omitempty"`
	InvalidDirection string `json:"invalid_direction,omitempty"`
	OutOfBounds      string `json:"out_of_bounds,omitempty"`
	Blocked          string `json:"blocked,omitempty"`
	Moved            string `json:"moved,omitempty"`
	AttackUsage      string `json:"attack_usage,omitempty"`
	TargetNotFound   string `json:"target_not_found,omitempty"`
	TargetOutOfRange string `json:"target_out_of_range,omitempty"`
	Hit              string `json:"hit,omitempty"`
	Defeated         string `json:"defeated,omitempty"`
	Shutdown         string `json:"shutdown,omitempty"`

	tmpls map[string]*template.Template
}

// DefaultMessages returns the stock message set.
func DefaultMessages() *Messages {
	return &Messages{
		Unknown:          "Unknown command.",
		MoveUsage:        "Usage: move <up|down|left|right> [distance]",
		InvalidDirection: "Invalid direction. Use: up, down, left, right.",
		OutOfBounds:      "You can't move outside the -100 to 100 range.",
		Blocked:          "Blocked by {{ .Target }}.",
		Moved:            "Moved {{ .Direction }} to {{ .X }} {{ .Y }}.",
		AttackUsage:      "Usage: attack <name>",
		TargetNotFound:   "Target '{{ .Target }}' not found.",
		TargetOutOfRange: "{{ .Target }} is out of range.",
		Hit:              "{{ .Actor }} attacks {{ .Target }} for {{ .Damage }} damage. {{ .Target }} has {{ .Health }} HP left.",
		Defeated:         "{{ .Target }} has been defeated!",
		Shutdown:         "Server is shutting down.",
	}
}

// Override replaces every message that is set in o.
func (m *Messages) Override(o *Messages) {
	if o == nil {
		return
	}
	src := o.sources()
	for name, dst := range m.fields() {
		if v := src[name]; v != "" {
			*dst = v
		}
	}
	m.tmpls = nil
}

// Compile parses every template, reporting all failures at once.
func (m *Messages) Compile() error {
	el := errors.NewErrorList()

	tmpls := make(map[string]*template.Template)
	for name, src := range m.sources() {
		if src == "" {
			el.Add(fmt.Errorf("message %q is empty", name))
			continue
		}
		tmpl, err := ParseTemplate(name, src)
		if err != nil {
			el.Add(fmt.Errorf("message %q: %w", name, err))
			continue
		}
		tmpls[name] = tmpl
	}

	if err := el.Err(); err != nil {
		return err
	}
	m.tmpls = tmpls
	return nil
}

// Render expands the named message. A template that fails to execute is
// logged and its raw source is returned instead.
func (m *Messages) Render(name string, data *MessageData) string {
	if data == nil {
		data = &MessageData{}
	}

	tmpl, ok := m.tmpls[name]
	if !ok {
		var err error
		tmpl, err = ParseTemplate(name, m.sources()[name])
		if err != nil {
			slog.Error("message template", "message", name, "error", err)
			return m.sources()[name]
		}
	}

	out, err := execute(tmpl, data)
	if err != nil {
		slog.Error("message template", "message", name, "error", err)
		return m.sources()[name]
	}
	return out
}

func (m *Messages) fields() map[string]*string {
	return map[string]*string{
		MsgUnknown:          &m.Unknown,
		MsgMoveUsage:        &m.MoveUsage,
		MsgInvalidDirection: &m.InvalidDirection,
		MsgOutOfBounds:      &m.OutOfBounds,
		MsgBlocked:          &m.Blocked,
		MsgMoved:            &m.Moved,
		MsgAttackUsage:      &m.AttackUsage,
		MsgTargetNotFound:   &m.TargetNotFound,
		MsgTargetOutOfRange: &m.TargetOutOfRange,
		MsgHit:              &m.Hit,
		MsgDefeated:         &m.Defeated,
		MsgShutdown:         &m.Shutdown,
	}
}

func (m *Messages) sources() map[string]string {
	out := make(map[string]string)
	for name, p := range m.fields() {
		out[name] = *p
	}
	return out
}
