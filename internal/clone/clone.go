// Package clone duplicates graph nodes without their edges.
package clone

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/subgraphdumper/internal/ir"
	"github.com/zclconf/go-cty/cty"
)

// ErrCloneUnsupported is returned for operators that cannot be represented
// without the runtime state of their original model.
var ErrCloneUnsupported = errors.New("operator cannot be cloned")

// Clone copies the operator identity, attributes, output declarations and
// constant payload of n. Inputs are left empty; the caller wires them.
func Clone(n *ir.Node) (*ir.Node, error) {
	if n.Stateful {
		return nil, fmt.Errorf("%s (%s): %w", n.Name, n.Op, ErrCloneUnsupported)
	}

	out := &ir.Node{
		Name:     n.Name,
		Op:       n.Op,
		Kind:     n.Kind,
		Const:    n.Const,
		Bodies:   n.Bodies,
		IsConst:  n.IsConst,
		Stateful: n.Stateful,
		Inputs:   make([]ir.Value, len(n.Inputs)),
	}
	if n.Attrs != nil {
		out.Attrs = make(map[string]cty.Value, len(n.Attrs))
		for k, v := range n.Attrs {
			out.Attrs[k] = v
		}
	}
	out.Outputs = make([]ir.Port, len(n.Outputs))
	for i, p := range n.Outputs {
		out.Outputs[i] = ir.Port{Type: p.Type, Shape: p.Shape.Clone()}
	}
	return out, nil
}

// PlaceholderName is the name given to the stand-in for input idx of the
// named consumer.
func PlaceholderName(consumer string, idx int) string {
	return fmt.Sprintf("%s/in%d", consumer, idx)
}

// Placeholder builds the node a cloned consumer initially reads its idx-th
// input from. A constant producer is copied as a literal, anything else
// becomes a fresh parameter with the producer output's type and shape.
func Placeholder(consumer string, idx int, producer ir.Value) *ir.Node {
	name := PlaceholderName(consumer, idx)
	decl := producer.Decl()
	if producer.Node.IsConstant() {
		return &ir.Node{
			Name:    name,
			Op:      producer.Node.Op,
			Kind:    ir.KindConstant,
			Const:   producer.Node.Const,
			Outputs: []ir.Port{{Type: decl.Type, Shape: decl.Shape.Clone()}},
		}
	}
	return ir.NewParameter(name, decl)
}
