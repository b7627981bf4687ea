package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pixil98/go-arena/internal/game"
	"golang.org/x/text/unicode/norm"
)

const (
	LeftMessage     = "%s has left the game."
	JoinedMessage   = "%s has joined the game."
	ShutdownMessage = "Server is shutting down."
)

// Registry is the authoritative set of connected players. All membership
// changes and all reads or writes of player positions and health happen under
// its single lock; sends always happen outside of it on a snapshot.
type Registry struct {
	mu      sync.Mutex
	players []*game.Player
	running bool
	done    chan struct{}

	events    EventSink
	placer    func() game.Position
	statsOpts []game.StatsOpt
	now       func() time.Time
}

type RegistryOpt func(*Registry)

// WithEventSink publishes session events to sink.
func WithEventSink(sink EventSink) RegistryOpt {
	return func(r *Registry) {
		if sink != nil {
			r.events = sink
		}
	}
}

// WithPlacer overrides how starting positions are chosen.
func WithPlacer(f func() game.Position) RegistryOpt {
	return func(r *Registry) {
		r.placer = f
	}
}

// WithStatsOpts applies opts to the stats of every newly registered player.
func WithStatsOpts(opts ...game.StatsOpt) RegistryOpt {
	return func(r *Registry) {
		r.statsOpts = append(r.statsOpts, opts...)
	}
}

func NewRegistry(opts ...RegistryOpt) *Registry {
	r := &Registry{
		running: true,
		done:    make(chan struct{}),
		events:  nopSink{},
		placer:  game.RandomPosition,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NormalizeName trims whitespace and applies Unicode NFC so visually identical
// names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Register admits a new player under name. The uniqueness check and the insert
// are a single critical section.
func (r *Registry) Register(name string, conn game.Conn) (*game.Player, error) {
	return r.register(name, conn, nil)
}

// RegisterWithWelcome is like Register, but the line returned by welcome is
// the first thing the new player receives. Broadcasts sent while it is being
// delivered wait behind it. If it cannot be delivered the player is dropped
// without announcing a departure.
func (r *Registry) RegisterWithWelcome(name string, conn game.Conn, welcome func(p *game.Player, pos game.Position) string) (*game.Player, error) {
	return r.register(name, conn, welcome)
}

func (r *Registry) register(name string, conn game.Conn, welcome func(*game.Player, game.Position) string) (*game.Player, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil, ErrShuttingDown
	}
	for _, p := range r.players {
		if p.Name() == name {
			r.mu.Unlock()
			return nil, ErrNameTaken
		}
	}

	p := game.NewPlayer(conn, game.NewStats(name, r.statsOpts...), r.placePlayer())
	var deliver func(string) error
	if welcome != nil {
		// Reserved before the player is visible to any snapshot.
		deliver = p.Reserve()
	}
	r.players = append(r.players, p)
	pos := p.Position()
	r.mu.Unlock()

	if deliver != nil {
		if err := deliver(welcome(p, pos)); err != nil {
			r.evict(p)
			if cerr := p.Close(); cerr != nil {
				slog.Debug("closing player connection", "player", name, "error", cerr)
			}
			return nil, fmt.Errorf("welcoming %q: %w", name, err)
		}
	}

	r.Publish(Event{Kind: EventJoined, Session: p.Id(), Player: name, X: pos.X, Y: pos.Y})
	return p, nil
}

// placePlayer picks a starting position, preferring an unoccupied tile.
// Must be called with the lock held.
func (r *Registry) placePlayer() game.Position {
	pos := r.placer()
	for range 16 {
		if r.occupant(pos, nil) == nil {
			break
		}
		pos = r.placer()
	}
	return pos
}

// Remove drops the player from the live set, closes its transport and tells
// everyone else. Removing a player that is not live does nothing.
func (r *Registry) Remove(p *game.Player) {
	if p == nil || !r.evict(p) {
		return
	}

	if err := p.Close(); err != nil {
		slog.Debug("closing player connection", "player", p.Name(), "error", err)
	}
	slog.Info("player left", "player", p.Name(), "session", p.Id())
	r.Publish(Event{Kind: EventLeft, Session: p.Id(), Player: p.Name()})
	r.Notify(fmt.Sprintf(LeftMessage, p.Name()), nil)
}

// evict removes p from the live set and reports whether it was present.
func (r *Registry) evict(p *game.Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictLocked(p)
}

func (r *Registry) evictLocked(p *game.Player) bool {
	for i, live := range r.players {
		if live == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return true
		}
	}
	return false
}

// FindByName returns the live player with exactly the given name, skipping exclude.
func (r *Registry) FindByName(name string, exclude *game.Player) *game.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findByName(name, exclude)
}

func (r *Registry) findByName(name string, exclude *game.Player) *game.Player {
	for _, p := range r.players {
		if p != exclude && p.Name() == name {
			return p
		}
	}
	return nil
}

func (r *Registry) occupant(pos game.Position, exclude *game.Player) *game.Player {
	for _, p := range r.players {
		if p != exclude && p.Position() == pos {
			return p
		}
	}
	return nil
}

// Live reports whether p is currently registered.
func (r *Registry) Live(p *game.Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, live := range r.players {
		if live == p {
			return true
		}
	}
	return false
}

// Snapshot returns the live players in registration order. The returned slice
// is a copy and safe to iterate while the registry changes.
func (r *Registry) Snapshot() []*game.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*game.Player(nil), r.players...)
}

// Len returns the number of live players.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// PlayerInfo is a point-in-time description of a live player.
type PlayerInfo struct {
	Name    string      `json:"name"`
	Session string      `json:"session"`
	X       int         `json:"x"`
	Y       int         `json:"y"`
	Health  int         `json:"health"`
	Skills  []string    `json:"skills,omitempty"`
	Items   []game.Item `json:"items,omitempty"`
}

// Roster describes every live player, read under the lock.
func (r *Registry) Roster() []PlayerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		pos := p.Position()
		info := PlayerInfo{
			Name:    p.Name(),
			Session: p.Id(),
			X:       pos.X,
			Y:       pos.Y,
			Health:  p.Stats().Health(),
			Skills:  p.Stats().Skills(),
		}
		for _, it := range p.Stats().Items() {
			info.Items = append(info.Items, it)
		}
		slices.SortFunc(info.Items, func(a, b game.Item) int {
			return strings.Compare(a.Name, b.Name)
		})
		out = append(out, info)
	}
	return out
}

// Exec runs fn with the registry lock held. fn must not call other Registry
// methods and must not send to players.
func (r *Registry) Exec(fn func(v *View)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&View{r: r})
}

// Running reports whether the registry still accepts players.
func (r *Registry) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Done is closed once Shutdown has run.
func (r *Registry) Done() <-chan struct{} {
	return r.done
}

// Shutdown stops the registry: every live player is sent msg, disconnected and
// forgotten, and further registrations fail. It returns false if the registry
// was already stopped.
func (r *Registry) Shutdown(msg string) bool {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return false
	}
	r.running = false
	players := r.players
	r.players = nil
	close(r.done)
	r.mu.Unlock()

	slog.Info("shutting down sessions", "players", len(players))
	r.Publish(Event{Kind: EventShutdown})

	for _, p := range players {
		if err := p.Send(msg); err != nil {
			slog.Debug("sending shutdown notice", "player", p.Name(), "error", err)
		}
		if err := p.Close(); err != nil {
			slog.Debug("closing player connection", "player", p.Name(), "error", err)
		}
	}
	return true
}

// Start implements a service worker: it blocks until the context is canceled
// or the registry is shut down, and shuts the registry down on the way out.
func (r *Registry) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		r.Shutdown(ShutdownMessage)
	case <-r.done:
	}
	return nil
}

// Publish forwards an event to the registry's sink, stamping it if needed.
func (r *Registry) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = r.now()
	}
	r.events.PublishEvent(ev)
}
