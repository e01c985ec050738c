package subgraph

// ProcessedSet records the names of source nodes already consumed by a
// candidate during one model's scan. It has a single writer and must not
// be shared across models.
type ProcessedSet struct {
	names map[string]struct{}
}

// NewProcessedSet returns an empty set.
func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{names: make(map[string]struct{})}
}

func (s *ProcessedSet) Add(name string) {
	s.names[name] = struct{}{}
}

func (s *ProcessedSet) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

func (s *ProcessedSet) Len() int {
	return len(s.names)
}
