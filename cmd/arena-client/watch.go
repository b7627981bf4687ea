package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/pixil98/go-arena/internal/messaging"
	"github.com/pixil98/go-arena/internal/session"
)

func newWatchCmd() *cobra.Command {
	var (
		url        string
		prefix     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream arena events from the message bus",
		Long: `Subscribe to the events the server publishes on NATS and print them
as they happen: joins, departures, moves, hits, defeats and shutdown.

Press Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			nc, err := nats.Connect(url, nats.Name("arena-client"))
			if err != nil {
				return fmt.Errorf("connecting to %s: %w", url, err)
			}
			defer nc.Close()

			out := cmd.OutOrStdout()
			sub, err := nc.Subscribe(messaging.AllEventsSubject(prefix), func(msg *nats.Msg) {
				if jsonOutput {
					fmt.Fprintln(out, string(msg.Data))
					return
				}
				var ev session.Event
				if err := json.Unmarshal(msg.Data, &ev); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "bad event on %s: %v\n", msg.Subject, err)
					return
				}
				fmt.Fprintln(out, formatEvent(ev))
			})
			if err != nil {
				return fmt.Errorf("subscribing: %w", err)
			}
			defer sub.Unsubscribe()

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "nats", nats.DefaultURL, "NATS server URL")
	cmd.Flags().StringVar(&prefix, "prefix", messaging.DefaultSubjectPrefix, "Subject prefix the server publishes under")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print raw JSON events")

	return cmd
}

func formatEvent(ev session.Event) string {
	ts := ev.At.Format(time.TimeOnly)
	switch ev.Kind {
	case session.EventJoined:
		return fmt.Sprintf("%s %s joined at %d %d", ts, ev.Player, ev.X, ev.Y)
	case session.EventLeft:
		return fmt.Sprintf("%s %s left", ts, ev.Player)
	case session.EventMoved:
		return fmt.Sprintf("%s %s moved to %d %d", ts, ev.Player, ev.X, ev.Y)
	case session.EventHit:
		return fmt.Sprintf("%s %s hit %s (%d HP left)", ts, ev.Player, ev.Target, ev.Health)
	case session.EventDefeated:
		return fmt.Sprintf("%s %s defeated %s", ts, ev.Player, ev.Target)
	case session.EventShutdown:
		return fmt.Sprintf("%s server shutting down", ts)
	default:
		return fmt.Sprintf("%s %s", ts, ev.Kind)
	}
}
