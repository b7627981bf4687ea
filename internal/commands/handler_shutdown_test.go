package commands

import (
	"strings"
	"testing"

	"github.com/pixil98/go-arena/internal/game"
	"github.com/pixil98/go-testutil"
)

func TestShutdown(t *testing.T) {
	a := newTestArena(t,
		testPlayer{name: "A", pos: game.Position{X: 0, Y: 0}},
		testPlayer{name: "B", pos: game.Position{X: 1, Y: 0}},
	)

	testutil.AssertEqual(t, "reply", a.exec(t, "A", "shutdown"), "")
	testutil.AssertEqual(t, "running", a.reg.Running(), false)
	testutil.AssertEqual(t, "players", a.reg.Len(), 0)

	for name, conn := range a.conns {
		testutil.AssertEqual(t, name+" lines", strings.Join(conn.Lines(), "|"), "Server is shutting down.")
		testutil.AssertEqual(t, name+" closes", conn.Closes(), 1)
	}

	// A second shutdown is a no-op; the issuer is no longer live.
	testutil.AssertEqual(t, "second reply", a.exec(t, "B", "shutdown"), "")
	testutil.AssertEqual(t, "B lines", len(a.conns["B"].Lines()), 1)
}
