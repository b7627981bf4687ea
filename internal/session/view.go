package session

import "github.com/pixil98/go-arena/internal/game"

// View gives access to the live players while the registry lock is held.
// It is only valid inside Registry.Exec.
type View struct {
	r *Registry
}

// Players returns the live players in registration order.
func (v *View) Players() []*game.Player {
	return append([]*game.Player(nil), v.r.players...)
}

// FindByName returns the live player with exactly the given name, skipping exclude.
func (v *View) FindByName(name string, exclude *game.Player) *game.Player {
	return v.r.findByName(name, exclude)
}

// OccupantAt returns the first live player other than exclude standing on pos.
func (v *View) OccupantAt(pos game.Position, exclude *game.Player) *game.Player {
	return v.r.occupant(pos, exclude)
}

// Contains reports whether p is live.
func (v *View) Contains(p *game.Player) bool {
	for _, live := range v.r.players {
		if live == p {
			return true
		}
	}
	return false
}

// Evict removes p from the live set without closing it or notifying anyone.
// The caller takes over responsibility for closing p.
func (v *View) Evict(p *game.Player) bool {
	return v.r.evictLocked(p)
}
