package game

import "sync"

const (
	DefaultHealth        = 100
	DefaultItemsCapacity = 16
	DefaultSlotsCount    = 5
	MaxSkills            = 4
)

// Item is a stack of identical items held in an inventory.
type Item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats holds the health, skills and inventory of a player.
// Name is fixed at construction.
type Stats struct {
	mu sync.Mutex

	name   string
	health int
	skills []string
	items  map[string]*Item

	itemsCapacity int
	slotsCount    int
}

type StatsOpt func(*Stats)

// WithHealth sets the starting health.
func WithHealth(hp int) StatsOpt {
	return func(s *Stats) {
		if hp < 0 {
			hp = 0
		}
		s.health = hp
	}
}

// WithItemsCapacity sets the maximum number of distinct item types.
func WithItemsCapacity(n int) StatsOpt {
	return func(s *Stats) {
		s.itemsCapacity = n
	}
}

// WithSlotsCount sets the maximum stack size for a single item type.
func WithSlotsCount(n int) StatsOpt {
	return func(s *Stats) {
		s.slotsCount = n
	}
}

func NewStats(name string, opts ...StatsOpt) *Stats {
	s := &Stats{
		name:          name,
		health:        DefaultHealth,
		items:         make(map[string]*Item),
		itemsCapacity: DefaultItemsCapacity,
		slotsCount:    DefaultSlotsCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Stats) Name() string {
	return s.name
}

func (s *Stats) Health() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.health
}

// Alive reports whether health is above zero.
func (s *Stats) Alive() bool {
	return s.Health() > 0
}

// Damage subtracts amount from health, flooring at zero, and returns the
// resulting health. Non-positive amounts leave health unchanged.
func (s *Stats) Damage(amount int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount <= 0 {
		return s.health
	}
	s.health -= amount
	if s.health < 0 {
		s.health = 0
	}
	return s.health
}

// Skills returns a copy of the learned skills in the order they were learned.
func (s *Stats) Skills() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.skills...)
}

// LearnSkill adds a skill if it is not already known and there is room for it.
func (s *Stats) LearnSkill(skill string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if skill == "" || len(s.skills) >= MaxSkills {
		return false
	}
	for _, known := range s.skills {
		if known == skill {
			return false
		}
	}
	s.skills = append(s.skills, skill)
	return true
}

// AddItem stacks up to count of the named item, limited by the stack size and
// the number of distinct item types. It returns how many were actually added;
// zero means the inventory was left untouched.
func (s *Stats) AddItem(name string, count int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" || count <= 0 {
		return 0
	}

	if it, ok := s.items[name]; ok {
		toAdd := min(count, s.slotsCount-it.Count)
		if toAdd <= 0 {
			return 0
		}
		it.Count += toAdd
		return toAdd
	}

	if len(s.items) >= s.itemsCapacity {
		return 0
	}

	toAdd := min(count, s.slotsCount)
	if toAdd <= 0 {
		return 0
	}
	s.items[name] = &Item{Name: name, Count: toAdd}
	return toAdd
}

// Items returns a copy of the inventory.
func (s *Stats) Items() map[string]Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Item, len(s.items))
	for k, v := range s.items {
		out[k] = *v
	}
	return out
}
