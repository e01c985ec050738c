// Package artifact serializes cached subgraphs to disk.
//
// Every entry is written as two YAML files below the output directory:
//
//	<out>/<extractor>/<name>.yaml       the subgraph itself
//	<out>/<extractor>/<name>.meta.yaml  boundary input metadata
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/subgraphdumper/internal/cache"
	"github.com/specialistvlad/subgraphdumper/internal/ctxlog"
	"github.com/specialistvlad/subgraphdumper/internal/ir"
	"github.com/specialistvlad/subgraphdumper/internal/subgraph"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk form of one subgraph.
type Document struct {
	Name        string         `yaml:"name"`
	Extractor   string         `yaml:"extractor"`
	Occurrences int            `yaml:"occurrences"`
	Models      []string       `yaml:"models"`
	Parameters  []string       `yaml:"parameters"`
	Results     []string       `yaml:"results"`
	Nodes       []NodeDocument `yaml:"nodes"`
}

// NodeDocument describes a single node. Attribute and constant values are
// stored as JSON so their cty type survives the round trip.
type NodeDocument struct {
	Name       string            `yaml:"name"`
	Op         string            `yaml:"op"`
	Kind       string            `yaml:"kind"`
	Inputs     []string          `yaml:"inputs,omitempty"`
	Outputs    []PortDocument    `yaml:"outputs,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
	Value      string            `yaml:"value,omitempty"`
	IsConst    bool              `yaml:"is_const,omitempty"`
}

// PortDocument is the declaration of one output.
type PortDocument struct {
	Type  string `yaml:"type"`
	Shape string `yaml:"shape"`
}

// Writer writes cache entries below Dir.
type Writer struct {
	Dir string
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Write serializes every entry and returns how many were written.
func (w *Writer) Write(ctx context.Context, entries []*cache.Entry) (int, error) {
	logger := ctxlog.FromContext(ctx)
	written := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := w.writeEntry(e); err != nil {
			return written, err
		}
		written++
	}
	logger.Info("Subgraphs serialized.", "dir", w.Dir, "count", written)
	return written, nil
}

func (w *Writer) writeEntry(e *cache.Entry) error {
	p := e.Pattern
	dir := filepath.Join(w.Dir, p.Extractor)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
	}

	doc, err := NewDocument(e)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal subgraph %s: %w", p.Model.Name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, p.Model.Name+".yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write subgraph %s: %w", p.Model.Name, err)
	}

	meta, err := MetaNode(p.InputInfo)
	if err != nil {
		return fmt.Errorf("failed to encode input info of %s: %w", p.Model.Name, err)
	}
	data, err = yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal input info of %s: %w", p.Model.Name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, p.Model.Name+".meta.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write input info of %s: %w", p.Model.Name, err)
	}
	return nil
}

// NewDocument converts a cache entry into its serializable form.
func NewDocument(e *cache.Entry) (*Document, error) {
	m := e.Pattern.Model
	doc := &Document{
		Name:        m.Name,
		Extractor:   e.Pattern.Extractor,
		Occurrences: e.Occurrences,
		Models:      e.Models,
		Parameters:  names(m.Parameters),
		Results:     names(m.Results),
		Nodes:       make([]NodeDocument, 0, len(m.Nodes)),
	}
	for _, n := range m.Nodes {
		nd, err := nodeDocument(n)
		if err != nil {
			return nil, fmt.Errorf("subgraph %s: %w", m.Name, err)
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	return doc, nil
}

func nodeDocument(n *ir.Node) (NodeDocument, error) {
	nd := NodeDocument{
		Name:    n.Name,
		Op:      n.Op.String(),
		Kind:    n.Kind.String(),
		IsConst: n.IsConst,
	}
	for _, in := range n.Inputs {
		nd.Inputs = append(nd.Inputs, in.String())
	}
	for _, out := range n.Outputs {
		nd.Outputs = append(nd.Outputs, PortDocument{Type: out.Type.String(), Shape: out.Shape.String()})
	}
	if len(n.Attrs) > 0 {
		nd.Attributes = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			raw, err := ctyjson.SimpleJSONValue{Value: v}.MarshalJSON()
			if err != nil {
				return nd, fmt.Errorf("node %s attribute %s: %w", n.Name, k, err)
			}
			nd.Attributes[k] = string(raw)
		}
	}
	if val, ok := n.ConstantValue(); ok {
		raw, err := ctyjson.SimpleJSONValue{Value: val}.MarshalJSON()
		if err != nil {
			return nd, fmt.Errorf("node %s value: %w", n.Name, err)
		}
		nd.Value = string(raw)
	}
	return nd, nil
}

// MetaNode builds a YAML mapping of boundary input metadata that keeps the
// insertion order of info.
func MetaNode(info *subgraph.InputInfoMap) (*yaml.Node, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if info == nil {
		return root, nil
	}
	for _, key := range info.Keys() {
		rec, _ := info.Get(key)
		var val yaml.Node
		if err := val.Encode(rec); err != nil {
			return nil, err
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&val,
		)
	}
	return root, nil
}

func names(nodes []*ir.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}
