package cache

import (
	"fmt"

	"github.com/specialistvlad/subgraphdumper/internal/ir"
	"github.com/specialistvlad/subgraphdumper/internal/subgraph"
)

// Extractor proposes candidate node sets from one graph.
type Extractor interface {
	Name() string
	// Candidates returns connected node sets of g. processed holds the
	// names already consumed by earlier candidates of the same scan.
	Candidates(g *ir.Graph, processed *subgraph.ProcessedSet) [][]*ir.Node
}

// Filter is implemented by extractors that only keep some of the patterns
// built from their candidates.
type Filter interface {
	Keep(patterns []*subgraph.Pattern) []*subgraph.Pattern
}

// DefaultMaxChain bounds the length of fused chains.
const DefaultMaxChain = 8

// FusedChain proposes maximal linear chains of computing nodes in which
// every link has exactly one consumer.
type FusedChain struct {
	MaxChain int
}

func (FusedChain) Name() string { return "fused_chain" }

func (f FusedChain) Candidates(g *ir.Graph, processed *subgraph.ProcessedSet) [][]*ir.Node {
	limit := f.MaxChain
	if limit <= 0 {
		limit = DefaultMaxChain
	}

	var out [][]*ir.Node
	for _, n := range g.Nodes() {
		if !n.IsFunctional() || processed.Has(n.Name) {
			continue
		}
		chain := []*ir.Node{n}
		for cur := n; len(chain) < limit; {
			next := singleConsumer(g, cur)
			if next == nil || !next.IsFunctional() || processed.Has(next.Name) {
				break
			}
			chain = append(chain, next)
			cur = next
		}
		if len(chain) < 2 {
			continue
		}
		// Reserve the links right away so a later head does not start in
		// the middle of this chain.
		for _, c := range chain {
			processed.Add(c.Name)
		}
		out = append(out, chain)
	}
	return out
}

func singleConsumer(g *ir.Graph, n *ir.Node) *ir.Node {
	if len(n.Outputs) != 1 {
		return nil
	}
	targets := g.TargetInputs(n.Output(0))
	if len(targets) != 1 {
		return nil
	}
	return targets[0].Node
}

// RepeatPattern proposes every producer/consumer pair of computing nodes
// and keeps the structures that occur at least MinOccurrences times in the
// scanned graph.
type RepeatPattern struct {
	MinOccurrences int
}

func (RepeatPattern) Name() string { return "repeat_pattern" }

func (RepeatPattern) Candidates(g *ir.Graph, _ *subgraph.ProcessedSet) [][]*ir.Node {
	var out [][]*ir.Node
	for _, n := range g.Nodes() {
		if !n.IsFunctional() {
			continue
		}
		for _, c := range g.Consumers(n) {
			if c.IsFunctional() {
				out = append(out, []*ir.Node{n, c})
			}
		}
	}
	return out
}

// Keep returns the first pattern of every canonical name that was built
// often enough.
func (r RepeatPattern) Keep(patterns []*subgraph.Pattern) []*subgraph.Pattern {
	threshold := r.MinOccurrences
	if threshold <= 0 {
		threshold = 2
	}
	counts := make(map[string]int)
	for _, p := range patterns {
		counts[p.Model.Name]++
	}
	var out []*subgraph.Pattern
	seen := make(map[string]bool)
	for _, p := range patterns {
		name := p.Model.Name
		if counts[name] < threshold || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, p)
	}
	return out
}

// NewExtractor returns the bundled extractor with the given name.
func NewExtractor(name string) (Extractor, error) {
	switch name {
	case FusedChain{}.Name():
		return FusedChain{MaxChain: DefaultMaxChain}, nil
	case RepeatPattern{}.Name():
		return RepeatPattern{MinOccurrences: 2}, nil
	}
	return nil, fmt.Errorf("unknown extractor %q", name)
}

// ExtractorNames lists the bundled extractors.
func ExtractorNames() []string {
	return []string{FusedChain{}.Name(), RepeatPattern{}.Name()}
}
