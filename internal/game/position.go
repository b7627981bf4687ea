package game

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// MaxCoord bounds both axes of the arena; valid coordinates are in [-MaxCoord, MaxCoord].
const MaxCoord = 100

type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// ParseDirection maps a case-insensitive direction word to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(s) {
	case "up":
		return DirUp, true
	case "down":
		return DirDown, true
	case "left":
		return DirLeft, true
	case "right":
		return DirRight, true
	default:
		return DirNone, false
	}
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "none"
	}
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d %d", p.X, p.Y)
}

// Step returns the position distance tiles away in direction d. It does not bounds check.
func (p Position) Step(d Direction, distance int) Position {
	switch d {
	case DirUp:
		p.Y += distance
	case DirDown:
		p.Y -= distance
	case DirLeft:
		p.X -= distance
	case DirRight:
		p.X += distance
	}
	return p
}

// InBounds reports whether both coordinates are within the arena.
func (p Position) InBounds() bool {
	return p.X >= -MaxCoord && p.X <= MaxCoord && p.Y >= -MaxCoord && p.Y <= MaxCoord
}

// Distance returns the Manhattan distance between two positions.
func (p Position) Distance(o Position) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

// Adjacent reports whether o is on the same tile or one orthogonal step away.
func (p Position) Adjacent(o Position) bool {
	return p.Distance(o) <= 1
}

// RandomPosition returns a position chosen uniformly from the arena.
func RandomPosition() Position {
	return Position{
		X: rand.IntN(2*MaxCoord+1) - MaxCoord,
		Y: rand.IntN(2*MaxCoord+1) - MaxCoord,
	}
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
