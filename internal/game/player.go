package game

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Conn is the transport a player is attached to.
type Conn interface {
	io.Writer
	io.Closer
}

// Player is a connected participant. Its position must only be read or written
// while the owning session registry's lock is held.
type Player struct {
	id    string
	conn  Conn
	stats *Stats
	pos   Position

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func NewPlayer(conn Conn, stats *Stats, pos Position) *Player {
	return &Player{
		id:    uuid.New().String(),
		conn:  conn,
		stats: stats,
		pos:   pos,
	}
}

// Id returns the unique identifier of this player's session.
func (p *Player) Id() string {
	return p.id
}

func (p *Player) Name() string {
	return p.stats.Name()
}

func (p *Player) Stats() *Stats {
	return p.stats
}

func (p *Player) Position() Position {
	return p.pos
}

func (p *Player) SetPosition(pos Position) {
	p.pos = pos
}

// LearnSkill teaches the player a skill; see Stats.LearnSkill.
func (p *Player) LearnSkill(skill string) bool {
	return p.stats.LearnSkill(skill)
}

// AddItem adds items to the player's inventory; see Stats.AddItem.
func (p *Player) AddItem(name string, count int) int {
	return p.stats.AddItem(name, count)
}

// Send writes a single line to the player. Concurrent sends are serialized so
// lines are never interleaved.
func (p *Player) Send(msg string) error {
	if p.conn == nil {
		return fmt.Errorf("player %q has no connection", p.Name())
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.write(msg)
}

// Reserve blocks every Send until the returned func has run. That func writes
// msg and releases the connection, so msg is the next line the player sees.
// It must be called exactly once.
func (p *Player) Reserve() func(msg string) error {
	p.writeMu.Lock()
	return func(msg string) error {
		defer p.writeMu.Unlock()
		if p.conn == nil {
			return fmt.Errorf("player %q has no connection", p.Name())
		}
		return p.write(msg)
	}
}

func (p *Player) write(msg string) error {
	_, err := p.conn.Write([]byte(msg + "\n"))
	if err != nil {
		return fmt.Errorf("sending to %q: %w", p.Name(), err)
	}
	return nil
}

// Close releases the player's transport. Only the first call has any effect.
func (p *Player) Close() error {
	p.closeOnce.Do(func() {
		if p.conn != nil {
			p.closeErr = p.conn.Close()
		}
	})
	return p.closeErr
}
