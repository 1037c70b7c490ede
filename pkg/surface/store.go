package surface

import "sync/atomic"

// Store holds the current height field. Readers take a snapshot with Load;
// Regenerate builds a complete replacement before swapping it in, so a
// snapshot is never observed half-written.
type Store struct {
	cfg     Config
	current atomic.Pointer[Field]
}

// NewStore generates the initial field for seed
func NewStore(cfg Config, seed uint64) *Store {
	s := &Store{cfg: cfg}
	s.current.Store(Generate(cfg, seed))
	return s
}

// Load returns the current field
func (s *Store) Load() *Field {
	return s.current.Load()
}

// Regenerate replaces the field with one generated from seed and returns it
func (s *Store) Regenerate(seed uint64) *Field {
	f := Generate(s.cfg, seed)
	s.current.Store(f)
	return f
}

// Seed returns the seed of the current field
func (s *Store) Seed() uint64 {
	return s.Load().Seed()
}
