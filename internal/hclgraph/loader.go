// Package hclgraph reads model graphs written in HCL.
//
// A model file is a flat list of node blocks:
//
//	node "x" {
//	  kind    = "parameter"
//	  outputs = [{ type = "f32", shape = [1, 3, 224, 224] }]
//	}
//
//	node "add" {
//	  op         = "Add"
//	  version    = "opset1"
//	  inputs     = ["x", "w:0"]
//	  attributes = { auto_broadcast = "numpy" }
//	  outputs    = [{ type = "f32", shape = [1, 3, 224, 224] }]
//	}
//
// Inputs reference a producer by name, optionally followed by ":<port>".
// A dimension of -1 is dynamic. Composite operators carry their nested
// graphs in `body "<name>" { node ... }` blocks. Blocks may appear in any
// order; the loader sorts them topologically.
package hclgraph

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/subgraphdumper/internal/ctxlog"
	"github.com/specialistvlad/subgraphdumper/internal/ir"
)

// Loader is the HCL implementation of orchestrator.Loader.
type Loader struct{}

// NewLoader creates a new HCL model loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the model file at path.
func (l *Loader) Load(ctx context.Context, path string) (*ir.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL model loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return l.decode(ctx, file, modelName(path))
}

// Parse reads a model from src; filename is only used in diagnostics and
// to name the graph.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) (*ir.Graph, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return l.decode(ctx, file, modelName(filename))
}

func (l *Loader) decode(ctx context.Context, file *hcl.File, name string) (*ir.Graph, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode model %s: %w", name, diags)
	}
	g, err := buildGraph(ctx, name, root.Nodes)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	ctxlog.FromContext(ctx).Debug("HCL model loaded.", "model", name, "nodes", g.Len())
	return g, nil
}

// buildGraph translates node blocks into a graph, adding producers before
// their consumers.
func buildGraph(ctx context.Context, name string, blocks []*nodeBlock) (*ir.Graph, error) {
	byName := make(map[string]*nodeBlock, len(blocks))
	nodes := make(map[string]*ir.Node, len(blocks))
	for _, b := range blocks {
		if _, dup := byName[b.Name]; dup {
			return nil, fmt.Errorf("duplicate node %q", b.Name)
		}
		byName[b.Name] = b
		n, err := translateNode(ctx, name, b)
		if err != nil {
			return nil, err
		}
		nodes[b.Name] = n
	}

	g := ir.NewGraph(name)
	visiting := make(map[string]bool)
	added := make(map[string]bool)

	var visit func(b *nodeBlock) error
	visit = func(b *nodeBlock) error {
		if added[b.Name] {
			return nil
		}
		if visiting[b.Name] {
			return fmt.Errorf("cycle detected involving node '%s'", b.Name)
		}
		visiting[b.Name] = true

		n := nodes[b.Name]
		n.Inputs = make([]ir.Value, len(b.Inputs))
		for i, ref := range b.Inputs {
			producer, port, err := parseRef(ref)
			if err != nil {
				return fmt.Errorf("node %q input %d: %w", b.Name, i, err)
			}
			pb, ok := byName[producer]
			if !ok {
				return fmt.Errorf("node %q input %d references unknown node %q", b.Name, i, producer)
			}
			if err := visit(pb); err != nil {
				return err
			}
			n.Inputs[i] = ir.Value{Node: nodes[producer], Port: port}
		}

		delete(visiting, b.Name)
		added[b.Name] = true
		return g.Add(n)
	}

	for _, b := range blocks {
		if err := visit(b); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func translateNode(ctx context.Context, model string, b *nodeBlock) (*ir.Node, error) {
	kind, err := ir.ParseKind(b.Kind)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", b.Name, err)
	}

	n := &ir.Node{
		Name:     b.Name,
		Kind:     kind,
		Op:       ir.OpType{Name: b.Op, Version: b.Version},
		Stateful: b.Stateful,
	}
	if n.Op.Name == "" {
		switch kind {
		case ir.KindParameter:
			n.Op.Name = ir.OpParameter
		case ir.KindConstant:
			n.Op.Name = ir.OpConstant
		case ir.KindResult:
			n.Op.Name = ir.OpResult
		default:
			return nil, fmt.Errorf("node %q: op is required", b.Name)
		}
	}

	if isExprDefined(ctx, b.Outputs, "outputs") {
		if n.Outputs, err = decodePorts(b.Outputs); err != nil {
			return nil, fmt.Errorf("node %q: %w", b.Name, err)
		}
	}
	if isExprDefined(ctx, b.Attributes, "attributes") {
		if n.Attrs, err = decodeAttributes(b.Attributes); err != nil {
			return nil, fmt.Errorf("node %q: %w", b.Name, err)
		}
	}
	if isExprDefined(ctx, b.Value, "value") {
		if kind != ir.KindConstant {
			return nil, fmt.Errorf("node %q: only constants carry a value", b.Name)
		}
		val, diags := b.Value.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("node %q: invalid value: %w", b.Name, diags)
		}
		n.Const = val
	}
	if kind == ir.KindConstant && len(n.Outputs) != 1 {
		return nil, fmt.Errorf("node %q: constants declare exactly one output", b.Name)
	}

	for _, body := range b.Bodies {
		sub, err := buildGraph(ctx, model+"/"+b.Name+"/"+body.Name, body.Nodes)
		if err != nil {
			return nil, fmt.Errorf("node %q body %q: %w", b.Name, body.Name, err)
		}
		n.Bodies = append(n.Bodies, sub)
	}
	return n, nil
}

// parseRef splits "name" or "name:port".
func parseRef(ref string) (string, int, error) {
	name, portStr, found := strings.Cut(ref, ":")
	if name == "" {
		return "", 0, fmt.Errorf("empty input reference %q", ref)
	}
	if !found {
		return name, 0, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 {
		return "", 0, fmt.Errorf("invalid port in input reference %q", ref)
	}
	return name, port, nil
}

func modelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
