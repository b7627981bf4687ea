package commands

import (
	"strings"
	"testing"

	"github.com/pixil98/go-arena/internal/game"
	"github.com/pixil98/go-testutil"
)

func TestAttack(t *testing.T) {
	tests := map[string]struct {
		target       game.Position
		targetHealth int
		line         string
		expReply     string
		expHealth    int
		expBroadcast []string
	}{
		"missing target": {
			target:    game.Position{X: 0, Y: 1},
			line:      "attack",
			expReply:  "Usage: attack <name>",
			expHealth: game.DefaultHealth,
		},
		"unknown target": {
			target:    game.Position{X: 0, Y: 1},
			line:      "attack Ghost",
			expReply:  "Target 'Ghost' not found.",
			expHealth: game.DefaultHealth,
		},
		"names are case sensitive": {
			target:    game.Position{X: 0, Y: 1},
			line:      "attack b",
			expReply:  "Target 'b' not found.",
			expHealth: game.DefaultHealth,
		},
		"self is not a target": {
			target:    game.Position{X: 0, Y: 1},
			line:      "attack A",
			expReply:  "Target 'A' not found.",
			expHealth: game.DefaultHealth,
		},
		"not adjacent": {
			target:    game.Position{X: 5, Y: 5},
			line:      "attack B",
			expReply:  "B is out of range.",
			expHealth: game.DefaultHealth,
		},
		"diagonal is out of range": {
			target:    game.Position{X: 1, Y: 1},
			line:      "attack B",
			expReply:  "B is out of range.",
			expHealth: game.DefaultHealth,
		},
		"adjacent hit": {
			target:       game.Position{X: 0, Y: 1},
			line:         "ATTACK B",
			expHealth:    90,
			expBroadcast: []string{"A attacks B for 10 damage. B has 90 HP left."},
		},
		"same tile hit": {
			target:       game.Position{X: 0, Y: 0},
			line:         "attack B",
			expHealth:    90,
			expBroadcast: []string{"A attacks B for 10 damage. B has 90 HP left."},
		},
		"health floors at zero": {
			target:       game.Position{X: 1, Y: 0},
			targetHealth: 4,
			line:         "attack B",
			expHealth:    0,
			expBroadcast: []string{"A attacks B for 10 damage. B has 0 HP left.", "B has been defeated!"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a := newTestArena(t,
				testPlayer{name: "A", pos: game.Position{X: 0, Y: 0}},
				testPlayer{name: "B", pos: tt.target, health: tt.targetHealth},
				testPlayer{name: "C", pos: game.Position{X: 50, Y: 50}},
			)

			testutil.AssertEqual(t, "reply", a.exec(t, "A", tt.line), tt.expReply)
			testutil.AssertEqual(t, "health", a.players["B"].Stats().Health(), tt.expHealth)

			exp := strings.Join(tt.expBroadcast, "|")
			testutil.AssertEqual(t, "attacker lines", strings.Join(a.conns["A"].Lines(), "|"), exp)
			testutil.AssertEqual(t, "bystander lines", strings.Join(a.conns["C"].Lines(), "|"), exp)
			testutil.AssertEqual(t, "target lines", strings.Join(a.conns["B"].Lines(), "|"), exp)
		})
	}
}

func TestAttack_Defeat(t *testing.T) {
	a := newTestArena(t,
		testPlayer{name: "A", pos: game.Position{X: 0, Y: 0}},
		testPlayer{name: "B", pos: game.Position{X: 0, Y: 1}, health: 10},
		testPlayer{name: "C", pos: game.Position{X: 9, Y: 9}},
	)

	testutil.AssertEqual(t, "reply", a.exec(t, "A", "attack B"), "")

	b := a.players["B"]
	testutil.AssertEqual(t, "health", b.Stats().Health(), 0)
	testutil.AssertEqual(t, "live", a.reg.Live(b), false)
	testutil.AssertEqual(t, "closed", a.conns["B"].Closes(), 1)
	if a.reg.FindByName("B", nil) != nil {
		t.Error("defeated player still found by name")
	}

	// Defeat replaces the departure notice.
	exp := "A attacks B for 10 damage. B has 0 HP left.|B has been defeated!"
	testutil.AssertEqual(t, "bystander lines", strings.Join(a.conns["C"].Lines(), "|"), exp)
	testutil.AssertEqual(t, "target lines", strings.Join(a.conns["B"].Lines(), "|"), exp)

	// Later broadcasts skip the defeated player.
	a.reg.Notify("later", nil)
	testutil.AssertEqual(t, "target line count", len(a.conns["B"].Lines()), 2)

	// A second attack no longer finds the target.
	testutil.AssertEqual(t, "second attack", a.exec(t, "A", "attack B"), "Target 'B' not found.")
}

func TestAttack_NameWithSpaces(t *testing.T) {
	a := newTestArena(t,
		testPlayer{name: "A", pos: game.Position{X: 0, Y: 0}},
		testPlayer{name: "Big Bob", pos: game.Position{X: -1, Y: 0}},
	)

	testutil.AssertEqual(t, "reply", a.exec(t, "A", "attack   Big Bob  "), "")
	testutil.AssertEqual(t, "health", a.players["Big Bob"].Stats().Health(), 90)
}

func TestAttack_NormalizesTargetName(t *testing.T) {
	a := newTestArena(t,
		testPlayer{name: "A", pos: game.Position{X: 0, Y: 0}},
		testPlayer{name: "Jos\u00e9", pos: game.Position{X: 1, Y: 0}},
	)

	testutil.AssertEqual(t, "reply", a.exec(t, "A", "attack Jose\u0301"), "")
	testutil.AssertEqual(t, "health", a.players["Jos\u00e9"].Stats().Health(), 90)
}

func TestAttack_CustomDamage(t *testing.T) {
	a := newTestArena(t,
		testPlayer{name: "A", pos: game.Position{X: 0, Y: 0}},
		testPlayer{name: "B", pos: game.Position{X: 0, Y: 1}},
	)
	a.handler = NewHandler(a.reg, WithDamage(25))

	a.exec(t, "A", "attack B")
	testutil.AssertEqual(t, "health", a.players["B"].Stats().Health(), 75)
}
