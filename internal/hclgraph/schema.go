package hclgraph

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all top-level blocks of a model file.
type fileRoot struct {
	Nodes  []*nodeBlock `hcl:"node,block"`
	Remain hcl.Body     `hcl:",remain"`
}

// nodeBlock is the raw form of a `node "<name>" { ... }` block.
type nodeBlock struct {
	Name       string         `hcl:"name,label"`
	Op         string         `hcl:"op,optional"`
	Version    string         `hcl:"version,optional"`
	Kind       string         `hcl:"kind,optional"`
	Inputs     []string       `hcl:"inputs,optional"`
	Stateful   bool           `hcl:"stateful,optional"`
	Outputs    hcl.Expression `hcl:"outputs,optional"`
	Attributes hcl.Expression `hcl:"attributes,optional"`
	Value      hcl.Expression `hcl:"value,optional"`
	Bodies     []*bodyBlock   `hcl:"body,block"`
}

// bodyBlock holds the nested graph of a composite operator.
type bodyBlock struct {
	Name  string       `hcl:"name,label"`
	Nodes []*nodeBlock `hcl:"node,block"`
}
