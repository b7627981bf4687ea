package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pixil98/go-arena/internal/client"
	"github.com/pixil98/go-arena/internal/display"
)

func newConnectCmd() *cobra.Command {
	var (
		host  string
		port  int
		name  string
		width int
	)

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Join the arena and play from the terminal",
		Long: `Connect to an arena server, register under --name and forward each
line typed on stdin as a command. Everything the server sends is printed.

Commands:
  move <up|down|left|right> [distance]
  attack <name>
  shutdown

Press Ctrl+C or Ctrl+D to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--name is required")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			addr := net.JoinHostPort(host, strconv.Itoa(port))
			c, err := client.Dial(ctx, addr, name)
			if errors.Is(err, client.ErrNameTaken) {
				return fmt.Errorf("the name %q is taken, pick another with --name", name)
			}
			if err != nil {
				return err
			}
			defer c.Close()

			x, y := c.StartPosition()
			fmt.Fprintf(cmd.OutOrStdout(), "Joined as %s at %d %d.\n", c.Name(), x, y)

			go forwardInput(ctx, cancel, cmd, c)

			return c.Receive(ctx, func(line string) {
				fmt.Fprintln(cmd.OutOrStdout(), display.Wrap(line, width))
			})
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Server host")
	cmd.Flags().IntVar(&port, "port", 8580, "Server port")
	cmd.Flags().StringVar(&name, "name", "", "Player name")
	cmd.Flags().IntVar(&width, "width", display.DefaultWidth, "Wrap server output at this many columns")

	return cmd
}

func forwardInput(ctx context.Context, cancel context.CancelFunc, cmd *cobra.Command, c *client.Client) {
	defer cancel()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if err := c.Send(scanner.Text()); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			return
		}
	}
}
