package subgraph

import (
	"errors"
	"testing"

	"github.com/specialistvlad/subgraphdumper/internal/clone"
	"github.com/specialistvlad/subgraphdumper/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

var image = ir.Port{Type: ir.F32, Shape: ir.Shape{1, 3, 224, 224}}

// graphBuilder is a tiny helper for assembling source graphs in tests.
type graphBuilder struct {
	t *testing.T
	g *ir.Graph
}

func newGraph(t *testing.T, name string) *graphBuilder {
	t.Helper()
	return &graphBuilder{t: t, g: ir.NewGraph(name)}
}

func (b *graphBuilder) add(n *ir.Node) *ir.Node {
	b.t.Helper()
	require.NoError(b.t, b.g.Add(n))
	return n
}

func (b *graphBuilder) param(name string, p ir.Port) *ir.Node {
	return b.add(ir.NewParameter(name, p))
}

func (b *graphBuilder) constant(name string, p ir.Port, v cty.Value) *ir.Node {
	return b.add(&ir.Node{Name: name, Op: ir.OpType{Name: ir.OpConstant}, Kind: ir.KindConstant, Const: v, Outputs: []ir.Port{p}})
}

func (b *graphBuilder) op(name, op string, out []ir.Port, inputs ...ir.Value) *ir.Node {
	return b.add(&ir.Node{Name: name, Op: ir.OpType{Name: op, Version: "opset1"}, Inputs: inputs, Outputs: out})
}

func (b *graphBuilder) result(name string, v ir.Value) *ir.Node {
	return b.add(ir.NewResult(name, v))
}

// exampleA builds x, w -> Add -> Relu -> Result with node names derived
// from prefix.
func exampleA(t *testing.T, prefix string) (*ir.Graph, []*ir.Node) {
	b := newGraph(t, prefix+"_model")
	x := b.param(prefix+"_x", image)
	w := b.constant(prefix+"_w", image, cty.ListVal([]cty.Value{cty.NumberFloatVal(-1.5), cty.NumberFloatVal(2)}))
	add := b.op(prefix+"_add", "Add", []ir.Port{image}, x.Output(0), w.Output(0))
	relu := b.op(prefix+"_relu", "Relu", []ir.Port{image}, add.Output(0))
	res := b.result(prefix+"_out", relu.Output(0))
	return b.g, []*ir.Node{add, relu, res}
}

func TestBuild_ExampleA(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	g, candidate := exampleA(t, "a")
	processed := NewProcessedSet()

	// --- Act ---
	pattern, err := NewBuilder(nil).Build(g, candidate, processed, "fused_chain")

	// --- Assert ---
	require.NoError(t, err)
	m := pattern.Model
	assert.Equal(t, "fused_chain", pattern.Extractor)
	assert.Equal(t, 2, m.FunctionalCount())
	require.Len(t, m.Parameters, 2)
	require.Len(t, m.Results, 1)

	passthrough, converted := m.Parameters[0], m.Parameters[1]
	assert.False(t, passthrough.IsConst)
	assert.Equal(t, image, passthrough.Outputs[0])
	assert.True(t, converted.IsConst)
	assert.Equal(t, ir.F32, converted.Outputs[0].Type)
	assert.Equal(t, ir.Shape{1, 3, 224, 224}, converted.Outputs[0].Shape)

	assert.Equal(t, "a_out", m.Results[0].Name, "candidate result is reused")
	assert.Equal(t, []bool{false, true}, pattern.InputInfo.ConstPattern())

	info, ok := pattern.InputInfo.Get(converted.Name)
	require.True(t, ok)
	require.Len(t, info.Ranges, 1)
	assert.Equal(t, Range{Min: -1.5, Max: 2}, info.Ranges[0])

	for _, n := range candidate {
		assert.True(t, processed.Has(n.Name))
	}
	assert.Regexp(t, `^[0-9]+$`, m.Name)
}

func TestBuild_ExampleB_SingleNodeIsTooSimple(t *testing.T) {
	t.Parallel()

	b := newGraph(t, "m")
	x := b.param("x", image)
	relu := b.op("relu", "Relu", []ir.Port{image}, x.Output(0))

	pattern, err := NewBuilder(nil).Build(b.g, []*ir.Node{relu}, NewProcessedSet(), "e")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientComplexity))
	assert.Nil(t, pattern)
}

func TestBuild_NonFunctionalNodesDoNotCount(t *testing.T) {
	t.Parallel()

	b := newGraph(t, "m")
	x := b.param("x", image)
	c := b.constant("c", image, cty.NumberIntVal(0))
	add := b.op("add", "Add", []ir.Port{image}, x.Output(0), c.Output(0))
	res := b.result("out", add.Output(0))

	_, err := NewBuilder(nil).Build(b.g, []*ir.Node{x, c, add, res}, NewProcessedSet(), "e")
	assert.True(t, errors.Is(err, ErrInsufficientComplexity))
}

func TestBuild_NameIsIndependentOfNodeNames(t *testing.T) {
	t.Parallel()

	g1, c1 := exampleA(t, "first")
	g2, c2 := exampleA(t, "something_else_entirely")

	p1, err := NewBuilder(nil).Build(g1, c1, NewProcessedSet(), "e")
	require.NoError(t, err)
	p2, err := NewBuilder(nil).Build(g2, c2, NewProcessedSet(), "e")
	require.NoError(t, err)
	p3, err := NewBuilder(nil).Build(g1, c1, NewProcessedSet(), "e")
	require.NoError(t, err)

	assert.Equal(t, p1.Model.Name, p2.Model.Name)
	assert.Equal(t, p1.Model.Name, p3.Model.Name)
}

func TestBuild_AttributeOnlyDifferenceSharesName(t *testing.T) {
	t.Parallel()

	// Two candidates that differ only in an attribute value legitimately
	// collide: attributes are not part of the structural name.
	build := func(axis int64) string {
		b := newGraph(t, "m")
		x := b.param("x", image)
		sm := b.add(&ir.Node{
			Name:    "softmax",
			Op:      ir.OpType{Name: "Softmax", Version: "opset8"},
			Attrs:   map[string]cty.Value{"axis": cty.NumberIntVal(axis)},
			Inputs:  []ir.Value{x.Output(0)},
			Outputs: []ir.Port{image},
		})
		relu := b.op("relu", "Relu", []ir.Port{image}, sm.Output(0))
		p, err := NewBuilder(nil).Build(b.g, []*ir.Node{sm, relu}, NewProcessedSet(), "e")
		require.NoError(t, err)
		return p.Model.Name
	}

	assert.Equal(t, build(1), build(3))
}

func TestBuild_ConstantnessChangesName(t *testing.T) {
	t.Parallel()

	g, candidate := exampleA(t, "a")
	converted, err := NewBuilder(nil).Build(g, candidate, NewProcessedSet(), "e")
	require.NoError(t, err)
	literal, err := NewBuilder(KeepConstants).Build(g, candidate, NewProcessedSet(), "e")
	require.NoError(t, err)

	assert.Len(t, literal.Model.Parameters, 1)
	assert.NotEqual(t, converted.Model.Name, literal.Model.Name)
}

func TestBuild_UnclaimedPortsBecomeResults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// split has two outputs; only the first is consumed inside the
	// candidate, so the second must surface as exactly one result, as must
	// relu's output.
	b := newGraph(t, "m")
	half := ir.Port{Type: ir.F32, Shape: ir.Shape{1, 3, 112, 224}}
	x := b.param("x", image)
	split := b.op("split", "Split", []ir.Port{half, half}, x.Output(0))
	relu := b.op("relu", "Relu", []ir.Port{half}, split.Output(0))
	b.op("outside", "Sigmoid", []ir.Port{half}, split.Output(1))

	// --- Act ---
	pattern, err := NewBuilder(nil).Build(b.g, []*ir.Node{relu, split}, NewProcessedSet(), "e")

	// --- Assert ---
	require.NoError(t, err)
	results := pattern.Model.Results
	require.Len(t, results, 2)
	assert.Equal(t, "split", results[0].Inputs[0].Node.Name)
	assert.Equal(t, 1, results[0].Inputs[0].Port)
	assert.Equal(t, "relu", results[1].Inputs[0].Node.Name)
	assert.Equal(t, 0, results[1].Inputs[0].Port)
	for _, r := range results {
		assert.True(t, r.IsOutputSink())
	}
}

func TestBuild_InternalParameterIsPassedThrough(t *testing.T) {
	t.Parallel()

	b := newGraph(t, "m")
	x := b.param("x", image)
	relu := b.op("relu", "Relu", []ir.Port{image}, x.Output(0))
	sig := b.op("sig", "Sigmoid", []ir.Port{image}, relu.Output(0))

	pattern, err := NewBuilder(nil).Build(b.g, []*ir.Node{x, relu, sig}, NewProcessedSet(), "e")
	require.NoError(t, err)

	require.Len(t, pattern.Model.Parameters, 1)
	assert.Equal(t, "x", pattern.Model.Parameters[0].Name)
	_, ok := pattern.InputInfo.Get("x")
	assert.True(t, ok, "input info migrates to the original producer key")
	_, ok = pattern.InputInfo.Get(clone.PlaceholderName("relu", 0))
	assert.False(t, ok, "placeholder entry is replaced")
}

func TestBuild_InternalConstant(t *testing.T) {
	t.Parallel()

	build := func(conv ConstConverter) *Pattern {
		b := newGraph(t, "m")
		x := b.param("x", image)
		w := b.constant("w", image, cty.NumberIntVal(1))
		add := b.op("add", "Add", []ir.Port{image}, x.Output(0), w.Output(0))
		relu := b.op("relu", "Relu", []ir.Port{image}, add.Output(0))
		p, err := NewBuilder(conv).Build(b.g, []*ir.Node{w, add, relu}, NewProcessedSet(), "e")
		require.NoError(t, err)
		return p
	}

	t.Run("converted", func(t *testing.T) {
		p := build(nil)
		require.Len(t, p.Model.Parameters, 2)
		w := p.Model.Parameters[1]
		assert.True(t, w.IsConst)
		assert.Equal(t, "w", w.Name)
		info, ok := p.InputInfo.Get("w")
		require.True(t, ok)
		assert.True(t, info.IsConst)
		for _, n := range p.Model.Nodes {
			assert.False(t, n.IsConstant(), "no literal left behind")
		}
	})

	t.Run("declined", func(t *testing.T) {
		p := build(KeepConstants)
		require.Len(t, p.Model.Parameters, 1)
		var literals int
		for _, n := range p.Model.Nodes {
			if n.IsConstant() {
				literals++
			}
		}
		assert.Equal(t, 1, literals)
	})
}

func TestBuild_SmallConstantStaysLiteral(t *testing.T) {
	t.Parallel()

	b := newGraph(t, "m")
	scalar := ir.Port{Type: ir.F32, Shape: ir.Shape{}}
	x := b.param("x", image)
	s := b.constant("s", scalar, cty.NumberFloatVal(0.5))
	mul := b.op("mul", "Multiply", []ir.Port{image}, x.Output(0), s.Output(0))
	relu := b.op("relu", "Relu", []ir.Port{image}, mul.Output(0))

	p, err := NewBuilder(nil).Build(b.g, []*ir.Node{mul, relu}, NewProcessedSet(), "e")
	require.NoError(t, err)
	require.Len(t, p.Model.Parameters, 1)
	assert.Equal(t, []bool{false, true}, p.InputInfo.ConstPattern())
}

func TestBuild_BoundaryParametersMatchProducers(t *testing.T) {
	t.Parallel()

	b := newGraph(t, "m")
	dyn := ir.Port{Type: ir.I64, Shape: ir.Shape{ir.DynamicDim, 16}}
	x := b.param("x", image)
	idx := b.param("idx", dyn)
	pre := b.op("pre", "Relu", []ir.Port{image}, x.Output(0))
	gather := b.op("gather", "Gather", []ir.Port{{Type: ir.F32, Shape: ir.Shape{ir.DynamicDim, 16}}}, pre.Output(0), idx.Output(0))
	neg := b.op("neg", "Negative", []ir.Port{gather.Outputs[0]}, gather.Output(0))

	p, err := NewBuilder(nil).Build(b.g, []*ir.Node{gather, neg}, NewProcessedSet(), "e")
	require.NoError(t, err)
	require.Len(t, p.Model.Parameters, 2)
	assert.Equal(t, pre.Outputs[0], p.Model.Parameters[0].Outputs[0])
	assert.Equal(t, idx.Outputs[0], p.Model.Parameters[1].Outputs[0])
}

func TestBuild_InvariantViolation(t *testing.T) {
	t.Parallel()

	g, candidate := exampleA(t, "a")
	other, _ := exampleA(t, "b")
	foreign := other.Nodes()[2]

	_, err := NewBuilder(nil).Build(g, append(candidate, foreign), NewProcessedSet(), "e")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvariantViolation))
	assert.False(t, errors.Is(err, ErrInsufficientComplexity))
}

func TestBuild_CloneUnsupported(t *testing.T) {
	t.Parallel()

	b := newGraph(t, "m")
	x := b.param("x", image)
	state := b.add(&ir.Node{Name: "state", Op: ir.OpType{Name: "ReadValue"}, Stateful: true, Inputs: []ir.Value{x.Output(0)}, Outputs: []ir.Port{image}})
	relu := b.op("relu", "Relu", []ir.Port{image}, state.Output(0))

	_, err := NewBuilder(nil).Build(b.g, []*ir.Node{state, relu}, NewProcessedSet(), "e")
	assert.True(t, errors.Is(err, clone.ErrCloneUnsupported))
}

func TestBuild_DoesNotMutateSource(t *testing.T) {
	t.Parallel()

	g, candidate := exampleA(t, "a")
	before := make([][]ir.Value, len(candidate))
	for i, n := range candidate {
		before[i] = append([]ir.Value(nil), n.Inputs...)
	}

	_, err := NewBuilder(nil).Build(g, candidate, NewProcessedSet(), "e")
	require.NoError(t, err)

	for i, n := range candidate {
		assert.Equal(t, before[i], n.Inputs)
	}
}

func TestModelGraph(t *testing.T) {
	t.Parallel()

	g, candidate := exampleA(t, "a")
	p, err := NewBuilder(nil).Build(g, candidate, NewProcessedSet(), "e")
	require.NoError(t, err)

	mg, err := p.Model.Graph()
	require.NoError(t, err)
	assert.Equal(t, p.Model.Name, mg.Name)
	assert.Len(t, mg.Parameters(), 2)
	assert.Len(t, mg.Results(), 1)
}
