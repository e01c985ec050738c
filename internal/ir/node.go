package ir

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Value is a reference to one output port of a producer node. It is the
// unit an input edge points at.
type Value struct {
	Node *Node
	Port int
}

// Decl returns the declaration of the referenced output.
func (v Value) Decl() Port {
	return v.Node.Outputs[v.Port]
}

func (v Value) String() string {
	if v.Node == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s:%d", v.Node.Name, v.Port)
}

// Input identifies one input slot of a consumer node.
type Input struct {
	Node  *Node
	Index int
}

// Node is a single operator instance.
type Node struct {
	// Name is unique within the owning graph.
	Name string
	Op   OpType
	Kind Kind

	Attrs   map[string]cty.Value
	Inputs  []Value
	Outputs []Port

	// Const holds the literal payload of a KindConstant node.
	Const cty.Value

	// Bodies are the nested graphs of a composite operator (loops, ifs).
	Bodies []*Graph

	// Stateful marks operators that depend on runtime state and cannot be
	// reproduced outside of their original model.
	Stateful bool

	// IsConst is set on a parameter that stands in for a literal constant.
	IsConst bool
}

// NewParameter creates a detached parameter node.
func NewParameter(name string, port Port) *Node {
	return &Node{
		Name:    name,
		Op:      OpType{Name: OpParameter},
		Kind:    KindParameter,
		Outputs: []Port{{Type: port.Type, Shape: port.Shape.Clone()}},
	}
}

// NewResult creates a result node consuming v.
func NewResult(name string, v Value) *Node {
	return &Node{
		Name:   name,
		Op:     OpType{Name: OpResult},
		Kind:   KindResult,
		Inputs: []Value{v},
	}
}

func (n *Node) IsParameter() bool  { return n.Kind == KindParameter }
func (n *Node) IsConstant() bool   { return n.Kind == KindConstant }
func (n *Node) IsOutputSink() bool { return n.Kind == KindResult }

// IsFunctional reports whether the node performs computation, i.e. it is
// neither a parameter, a constant nor a result.
func (n *Node) IsFunctional() bool {
	return n.Kind == KindOp
}

// ConstantValue returns the literal payload of a constant node.
func (n *Node) ConstantValue() (cty.Value, bool) {
	if n.Kind != KindConstant || n.Const == cty.NilVal {
		return cty.NilVal, false
	}
	return n.Const, true
}

// Output returns a reference to the idx-th output of n.
func (n *Node) Output(idx int) Value {
	return Value{Node: n, Port: idx}
}

// ByteSize is the payload size of the first output for static shapes, or
// -1 when it cannot be known.
func (n *Node) ByteSize() int64 {
	if len(n.Outputs) == 0 {
		return 0
	}
	out := n.Outputs[0]
	elems := out.Shape.Elements()
	if elems < 0 || out.Type.Size() == 0 {
		return -1
	}
	return elems * int64(out.Type.Size())
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.Name, n.Op)
}
