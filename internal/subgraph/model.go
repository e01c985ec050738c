package subgraph

import (
	"fmt"

	"github.com/specialistvlad/subgraphdumper/internal/ir"
)

// Model is a finished, standalone subgraph.
type Model struct {
	// Name is the canonical structural name.
	Name       string
	Parameters []*ir.Node
	Results    []*ir.Node
	// Nodes holds every node in the fixed topological order the name was
	// computed from.
	Nodes []*ir.Node
}

// FunctionalCount returns the number of computing nodes.
func (m *Model) FunctionalCount() int {
	cnt := 0
	for _, n := range m.Nodes {
		if n.IsFunctional() {
			cnt++
		}
	}
	return cnt
}

// Ops returns the operator types in node order.
func (m *Model) Ops() []ir.OpType {
	ops := make([]ir.OpType, len(m.Nodes))
	for i, n := range m.Nodes {
		ops[i] = n.Op
	}
	return ops
}

// Graph materializes the model into an ir.Graph named after the model.
func (m *Model) Graph() (*ir.Graph, error) {
	g := ir.NewGraph(m.Name)
	for _, n := range m.Nodes {
		if err := g.Add(n); err != nil {
			return nil, fmt.Errorf("materializing subgraph %s: %w", m.Name, err)
		}
	}
	return g, nil
}

// Pattern is one accepted extraction: the model, the metadata of its
// boundary inputs and the extractor that proposed it.
type Pattern struct {
	Model     *Model
	InputInfo *InputInfoMap
	Extractor string
}
