package command

import (
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-arena/internal/commands"
)

type Config struct {
	Listeners []ListenerConfig   `json:"listeners"`
	Nats      NatsConfig         `json:"nats"`
	Status    StatusConfig       `json:"status"`
	Log       LogConfig          `json:"log"`
	Game      GameConfig         `json:"game"`
	Messages  *commands.Messages `json:"messages,omitempty"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if len(c.Listeners) == 0 {
		el.Add(fmt.Errorf("at least one listener is required"))
	}
	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Nats.validate())
	el.Add(c.Status.validate())
	el.Add(c.Log.validate())
	el.Add(c.Game.validate())

	if _, err := c.buildMessages(); err != nil {
		el.Add(err)
	}

	return el.Err()
}

// buildMessages layers any configured overrides on top of the default text.
func (c *Config) buildMessages() (*commands.Messages, error) {
	msgs := commands.DefaultMessages()
	msgs.Override(c.Messages)
	if err := msgs.Compile(); err != nil {
		return nil, fmt.Errorf("messages: %w", err)
	}
	return msgs, nil
}
