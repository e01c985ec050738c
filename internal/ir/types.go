package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// ElementType is the scalar type carried by a tensor port.
type ElementType string

const (
	Dynamic ElementType = "dynamic"
	Boolean ElementType = "boolean"
	BF16    ElementType = "bf16"
	F16     ElementType = "f16"
	F32     ElementType = "f32"
	F64     ElementType = "f64"
	I8      ElementType = "i8"
	I16     ElementType = "i16"
	I32     ElementType = "i32"
	I64     ElementType = "i64"
	U8      ElementType = "u8"
	U16     ElementType = "u16"
	U32     ElementType = "u32"
	U64     ElementType = "u64"
)

var elementWidths = map[ElementType]int{
	Dynamic: 0,
	Boolean: 1,
	BF16:    2,
	F16:     2,
	F32:     4,
	F64:     8,
	I8:      1,
	I16:     2,
	I32:     4,
	I64:     8,
	U8:      1,
	U16:     2,
	U32:     4,
	U64:     8,
}

// ParseElementType validates a textual element type.
func ParseElementType(s string) (ElementType, error) {
	et := ElementType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := elementWidths[et]; !ok {
		return "", fmt.Errorf("unknown element type %q", s)
	}
	return et, nil
}

// Size returns the width of one element in bytes; 0 for Dynamic.
func (t ElementType) Size() int {
	return elementWidths[t]
}

func (t ElementType) String() string {
	return string(t)
}

// DynamicDim marks a dimension whose extent is unknown until runtime.
const DynamicDim int64 = -1

// Shape is a partial shape with a known rank.
type Shape []int64

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// IsStatic reports whether every dimension has a known extent.
func (s Shape) IsStatic() bool {
	for _, d := range s {
		if d < 0 {
			return false
		}
	}
	return true
}

// Elements returns the element count of a static shape, or -1 when any
// dimension is dynamic. A rank-0 shape holds one element.
func (s Shape) Elements() int64 {
	if !s.IsStatic() {
		return -1
	}
	n := int64(1)
	for _, d := range s {
		n *= d
	}
	return n
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		if d < 0 {
			parts[i] = "?"
		} else {
			parts[i] = strconv.FormatInt(d, 10)
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Port declares the element type and shape of one node output.
type Port struct {
	Type  ElementType
	Shape Shape
}

// OpType identifies an operator independently of any node instance.
type OpType struct {
	Name    string
	Version string
}

func (o OpType) String() string {
	if o.Version == "" {
		return o.Name
	}
	return o.Name + "_" + o.Version
}

// Kind is the closed set of node roles the dumper distinguishes.
type Kind int

const (
	KindOp Kind = iota
	KindParameter
	KindConstant
	KindResult
)

func (k Kind) String() string {
	switch k {
	case KindParameter:
		return "parameter"
	case KindConstant:
		return "constant"
	case KindResult:
		return "result"
	default:
		return "op"
	}
}

// ParseKind maps the textual node kind used by model files onto Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "", "op":
		return KindOp, nil
	case "parameter":
		return KindParameter, nil
	case "constant":
		return KindConstant, nil
	case "result":
		return KindResult, nil
	}
	return KindOp, fmt.Errorf("unknown node kind %q", s)
}

// Well-known operator names for the non-functional kinds.
const (
	OpParameter = "Parameter"
	OpConstant  = "Constant"
	OpResult    = "Result"
)
