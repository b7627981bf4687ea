package command

import (
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-arena/internal/commands"
	"github.com/pixil98/go-arena/internal/game"
	"github.com/pixil98/go-arena/internal/player"
	"github.com/pixil98/go-arena/internal/session"
)

type GameConfig struct {
	Damage            int   `json:"damage"`
	StartingHealth    int   `json:"starting_health"`
	ItemsCapacity     int   `json:"items_capacity"`
	SlotsCount        int   `json:"slots_count"`
	MaxHandshakeBytes int64 `json:"max_handshake_bytes"`
}

func (c *GameConfig) validate() error {
	el := errors.NewErrorList()

	if c.Damage < 0 {
		el.Add(fmt.Errorf("damage must not be negative"))
	}
	if c.StartingHealth < 0 {
		el.Add(fmt.Errorf("starting_health must not be negative"))
	}
	if c.ItemsCapacity < 0 {
		el.Add(fmt.Errorf("items_capacity must not be negative"))
	}
	if c.SlotsCount < 0 {
		el.Add(fmt.Errorf("slots_count must not be negative"))
	}
	if c.MaxHandshakeBytes < 0 {
		el.Add(fmt.Errorf("max_handshake_bytes must not be negative"))
	}

	return el.Err()
}

func (c *GameConfig) registryOpts() []session.RegistryOpt {
	var statsOpts []game.StatsOpt
	if c.StartingHealth > 0 {
		statsOpts = append(statsOpts, game.WithHealth(c.StartingHealth))
	}
	if c.ItemsCapacity > 0 {
		statsOpts = append(statsOpts, game.WithItemsCapacity(c.ItemsCapacity))
	}
	if c.SlotsCount > 0 {
		statsOpts = append(statsOpts, game.WithSlotsCount(c.SlotsCount))
	}
	return []session.RegistryOpt{session.WithStatsOpts(statsOpts...)}
}

func (c *GameConfig) handlerOpts(msgs *commands.Messages) []commands.HandlerOpt {
	opts := []commands.HandlerOpt{commands.WithMessages(msgs)}
	if c.Damage > 0 {
		opts = append(opts, commands.WithDamage(c.Damage))
	}
	return opts
}

func (c *GameConfig) managerOpts() []player.ManagerOpt {
	return []player.ManagerOpt{player.WithMaxHandshakeBytes(c.MaxHandshakeBytes)}
}
