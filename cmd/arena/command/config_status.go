package command

import (
	"fmt"
	"net"
	"strconv"

	"github.com/pixil98/go-arena/internal/status"
)

type StatusConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    uint16 `json:"port"`
}

func (c *StatusConfig) validate() error {
	if c.Enabled && c.Port == 0 {
		return fmt.Errorf("status: port must be set when enabled")
	}
	return nil
}

func (c *StatusConfig) buildServer(roster status.Roster) *status.Server {
	return status.NewServer(net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port))), roster)
}
