// Package subgraph turns a connected set of source nodes into a minimal,
// standalone model with synthesized boundary parameters and results.
package subgraph

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/subgraphdumper/internal/canonical"
	"github.com/specialistvlad/subgraphdumper/internal/clone"
	"github.com/specialistvlad/subgraphdumper/internal/ir"
)

// Builder reconstructs candidates. The zero value converts constants with
// the default threshold.
type Builder struct {
	Convert ConstConverter
}

// NewBuilder returns a builder using the given constant conversion policy.
func NewBuilder(convert ConstConverter) *Builder {
	return &Builder{Convert: convert}
}

// build holds the state of a single Build call.
type build struct {
	convert ConstConverter

	nodes   []*ir.Node
	clones  map[*ir.Node]*ir.Node
	ports   map[*ir.Node]map[int]struct{}
	params  []*ir.Node
	isParam map[*ir.Node]bool
	info    *InputInfoMap
}

// Build extracts candidate from g. Every candidate name is recorded in
// processed. The returned error wraps ErrInsufficientComplexity,
// ErrInvariantViolation or clone.ErrCloneUnsupported.
func (b *Builder) Build(g *ir.Graph, candidate []*ir.Node, processed *ProcessedSet, extractor string) (*Pattern, error) {
	convert := b.Convert
	if convert == nil {
		convert = ConvertLargeConstants(DefaultConstByteThreshold)
	}
	st := &build{
		convert: convert,
		clones:  make(map[*ir.Node]*ir.Node, len(candidate)),
		ports:   make(map[*ir.Node]map[int]struct{}, len(candidate)),
		isParam: make(map[*ir.Node]bool),
		info:    NewInputInfoMap(),
	}

	nodes, err := orderCandidate(g, candidate)
	if err != nil {
		return nil, err
	}
	st.nodes = nodes

	functional := 0
	for _, n := range nodes {
		processed.Add(n.Name)
		c, err := clone.Clone(n)
		if err != nil {
			return nil, err
		}
		st.clones[n] = c
		ports := make(map[int]struct{}, len(n.Outputs))
		for i := range n.Outputs {
			ports[i] = struct{}{}
		}
		st.ports[n] = ports
		if n.IsFunctional() {
			functional++
		}
	}
	if functional < 2 {
		return nil, fmt.Errorf("%d functional node(s): %w", functional, ErrInsufficientComplexity)
	}

	for _, n := range nodes {
		if err := st.wire(g, n); err != nil {
			return nil, err
		}
	}
	// A candidate parameter nobody inside the candidate reads is still an
	// input of the model.
	for _, n := range nodes {
		if c := st.clones[n]; c.IsParameter() {
			st.addParam(c)
		}
	}

	results := st.results()
	ordered := ir.OrderedNodes(results, st.params...)
	if err := st.verify(ordered); err != nil {
		return nil, err
	}

	model := &Model{
		Parameters: st.params,
		Results:    results,
		Nodes:      ordered,
	}
	model.Name = canonical.Of(ordered, st.info.ConstPattern())

	return &Pattern{Model: model, InputInfo: st.info, Extractor: extractor}, nil
}

// orderCandidate validates membership and sorts the candidate into source
// topological order, dropping duplicates.
func orderCandidate(g *ir.Graph, candidate []*ir.Node) ([]*ir.Node, error) {
	seen := make(map[*ir.Node]struct{}, len(candidate))
	nodes := make([]*ir.Node, 0, len(candidate))
	for _, n := range candidate {
		if n == nil || !g.Contains(n) {
			return nil, fmt.Errorf("candidate node %v is not part of graph %s: %w", n, g.Name, ErrInvariantViolation)
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return g.Position(nodes[i]) < g.Position(nodes[j])
	})
	return nodes, nil
}

// wire connects every input of n's clone, either to another clone or to a
// boundary input.
func (st *build) wire(g *ir.Graph, n *ir.Node) error {
	c := st.clones[n]
	for idx, in := range n.Inputs {
		c.Inputs[idx] = clone.Placeholder(n.Name, idx, in).Output(0)
	}
	nodeInfo := inputInfoFor(c)

	for idx, in := range n.Inputs {
		if !consumes(g, in, n, idx) {
			return fmt.Errorf("edge %s -> %s:%d is not registered in graph %s: %w", in, n.Name, idx, g.Name, ErrInvariantViolation)
		}
		placeholder := c.Inputs[idx].Node

		producer, inside := st.clones[in.Node]
		switch {
		case inside:
			c.Inputs[idx] = producer.Output(in.Port)
			delete(st.ports[in.Node], in.Port)

			phInfo, _ := nodeInfo.Get(placeholder.Name)
			if producer.IsParameter() {
				st.addParam(producer)
				nodeInfo.Set(in.Node.Name, phInfo)
			} else if producer.IsConstant() {
				if p := st.convert(producer); p != nil {
					p.IsConst = true
					st.replace(producer, p)
					st.clones[in.Node] = p
					st.addParam(p)
				}
				nodeInfo.Set(in.Node.Name, phInfo)
			}
			nodeInfo.Delete(placeholder.Name)
		case placeholder.IsParameter():
			st.addParam(placeholder)
		case placeholder.IsConstant():
			if p := st.convert(placeholder); p != nil {
				p.IsConst = true
				st.replace(placeholder, p)
				st.addParam(p)
			}
		}
	}

	for _, k := range nodeInfo.Keys() {
		v, _ := nodeInfo.Get(k)
		st.info.SetIfAbsent(k, v)
	}
	return nil
}

// consumes reports whether the producer output in feeds input idx of n
// according to the source graph's consumer index. A producer output may
// feed several consumers; only this exact slot counts.
func consumes(g *ir.Graph, in ir.Value, n *ir.Node, idx int) bool {
	for _, target := range g.TargetInputs(in) {
		if target.Node == n && target.Index == idx {
			return true
		}
	}
	return false
}

func (st *build) addParam(p *ir.Node) {
	if st.isParam[p] {
		return
	}
	st.isParam[p] = true
	st.params = append(st.params, p)
}

// replace points every clone input reading from old at the output of repl.
func (st *build) replace(old, repl *ir.Node) {
	for _, c := range st.clones {
		for i, in := range c.Inputs {
			if in.Node == old {
				c.Inputs[i] = repl.Output(in.Port)
			}
		}
	}
}

// results turns every unclaimed output port into a result. Result nodes
// from the candidate are reused as they are.
func (st *build) results() []*ir.Node {
	var results []*ir.Node
	for _, n := range st.nodes {
		c := st.clones[n]
		if c.IsOutputSink() {
			results = append(results, c)
			continue
		}
		ports := make([]int, 0, len(st.ports[n]))
		for p := range st.ports[n] {
			ports = append(ports, p)
		}
		sort.Ints(ports)
		for _, p := range ports {
			results = append(results, ir.NewResult(fmt.Sprintf("%s/out%d", c.Name, p), c.Output(p)))
		}
	}
	return results
}

// verify checks that the assembled model is closed: every input is
// connected and every parameter it reaches is a registered boundary input.
func (st *build) verify(ordered []*ir.Node) error {
	for _, n := range ordered {
		for i, in := range n.Inputs {
			if in.Node == nil {
				return fmt.Errorf("node %s: input %d left dangling: %w", n.Name, i, ErrInvariantViolation)
			}
			if in.Port < 0 || in.Port >= len(in.Node.Outputs) {
				return fmt.Errorf("node %s: input %d reads missing port %d of %s: %w", n.Name, i, in.Port, in.Node.Name, ErrInvariantViolation)
			}
		}
		if n.IsParameter() && !st.isParam[n] {
			return fmt.Errorf("parameter %s is not a registered boundary input: %w", n.Name, ErrInvariantViolation)
		}
	}
	return nil
}
