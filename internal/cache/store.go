package cache

import (
	"sync"

	"github.com/specialistvlad/subgraphdumper/internal/subgraph"
)

// Entry is one distinct subgraph and where it was seen.
type Entry struct {
	// Pattern is the first occurrence registered under this name.
	Pattern     *subgraph.Pattern
	Occurrences int
	Models      []string
}

// Store deduplicates accepted patterns by canonical name.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	order   []string
}

// NewStore creates and returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// Register records p as seen in model. It returns true when the canonical
// name had not been registered before.
func (s *Store) Register(p *subgraph.Pattern, model string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := p.Model.Name
	e, ok := s.entries[name]
	if !ok {
		e = &Entry{Pattern: p}
		s.entries[name] = e
		s.order = append(s.order, name)
	}
	e.Occurrences++
	if n := len(e.Models); n == 0 || e.Models[n-1] != model {
		e.Models = append(e.Models, model)
	}
	return !ok
}

// Get returns the entry registered under name.
func (s *Store) Get(name string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	return e, ok
}

// Entries returns every entry in registration order.
func (s *Store) Entries() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entry, len(s.order))
	for i, name := range s.order {
		out[i] = s.entries[name]
	}
	return out
}

// Len returns the number of distinct subgraphs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
