package ir

import (
	"fmt"
)

// Graph is an ordered collection of nodes together with the reverse
// consumer index of every output port.
type Graph struct {
	Name string

	nodes     []*Node
	byName    map[string]*Node
	index     map[*Node]int
	consumers map[*Node][][]Input
}

// NewGraph creates and returns an initialized, empty Graph.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:      name,
		byName:    make(map[string]*Node),
		index:     make(map[*Node]int),
		consumers: make(map[*Node][][]Input),
	}
}

// Add appends n to the graph. Every producer n reads from must already be
// part of the graph, which keeps insertion order topological and rules out
// cycles.
func (g *Graph) Add(n *Node) error {
	if n.Name == "" {
		return fmt.Errorf("node of type %s has no name", n.Op)
	}
	if _, ok := g.byName[n.Name]; ok {
		return fmt.Errorf("duplicate node name: %s", n.Name)
	}
	if n.IsOutputSink() && len(n.Outputs) > 0 {
		return fmt.Errorf("result node %s must not declare outputs", n.Name)
	}
	for i, in := range n.Inputs {
		if in.Node == nil {
			return fmt.Errorf("node %s: input %d is not connected", n.Name, i)
		}
		if _, ok := g.index[in.Node]; !ok {
			return fmt.Errorf("node %s: input %d references node %s that is not part of the graph", n.Name, i, in.Node.Name)
		}
		if in.Port < 0 || in.Port >= len(in.Node.Outputs) {
			return fmt.Errorf("node %s: input %d references missing output %d of %s", n.Name, i, in.Port, in.Node.Name)
		}
	}

	g.index[n] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.byName[n.Name] = n
	g.consumers[n] = make([][]Input, len(n.Outputs))
	for i, in := range n.Inputs {
		ports := g.consumers[in.Node]
		ports[in.Port] = append(ports[in.Port], Input{Node: n, Index: i})
	}
	return nil
}

// Nodes returns the nodes in topological (insertion) order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node looks a node up by name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Contains reports whether n belongs to this graph.
func (g *Graph) Contains(n *Node) bool {
	_, ok := g.index[n]
	return ok
}

// Position returns the topological position of n, or -1 if n is foreign.
func (g *Graph) Position(n *Node) int {
	if i, ok := g.index[n]; ok {
		return i
	}
	return -1
}

// TargetInputs returns every consumer input fed by the given producer
// output, in the order the consumers were added.
func (g *Graph) TargetInputs(v Value) []Input {
	ports, ok := g.consumers[v.Node]
	if !ok || v.Port < 0 || v.Port >= len(ports) {
		return nil
	}
	out := make([]Input, len(ports[v.Port]))
	copy(out, ports[v.Port])
	return out
}

// Consumers returns the distinct nodes reading any output of n.
func (g *Graph) Consumers(n *Node) []*Node {
	var out []*Node
	seen := make(map[*Node]struct{})
	for _, port := range g.consumers[n] {
		for _, in := range port {
			if _, ok := seen[in.Node]; ok {
				continue
			}
			seen[in.Node] = struct{}{}
			out = append(out, in.Node)
		}
	}
	return out
}

// Parameters returns the parameter nodes in graph order.
func (g *Graph) Parameters() []*Node {
	return g.filter(func(n *Node) bool { return n.IsParameter() })
}

// Results returns the result nodes in graph order.
func (g *Graph) Results() []*Node {
	return g.filter(func(n *Node) bool { return n.IsOutputSink() })
}

func (g *Graph) filter(keep func(*Node) bool) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}
