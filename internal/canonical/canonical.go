// Package canonical derives the structural fingerprint used to name and
// deduplicate extracted subgraphs.
//
// The fingerprint covers the operator sequence and the element type, rank
// and static flag of every input and output, followed by one bit per
// boundary input marking whether it replaced a literal constant. Node names,
// tensor names, attribute values and concrete dimensions are
// absent, so two subgraphs that differ only in those share a name.
package canonical

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/specialistvlad/subgraphdumper/internal/ir"
)

// Signature builds the string the canonical name is hashed from. nodes
// must already be in the fixed topological order of the subgraph.
func Signature(nodes []*ir.Node, constBits []bool) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(n.Op.String())
		for _, in := range n.Inputs {
			if in.Node == nil {
				continue
			}
			writePort(&sb, in.Decl())
		}
		for _, out := range n.Outputs {
			writePort(&sb, out)
		}
		sb.WriteByte(';')
	}
	for _, c := range constBits {
		if c {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Name hashes a signature into the decimal canonical name.
func Name(signature string) string {
	return strconv.FormatUint(xxhash.Sum64String(signature), 10)
}

// Of is shorthand for Name(Signature(nodes, constBits)).
func Of(nodes []*ir.Node, constBits []bool) string {
	return Name(Signature(nodes, constBits))
}

func writePort(sb *strings.Builder, p ir.Port) {
	sb.WriteByte('|')
	sb.WriteString(p.Type.String())
	sb.WriteString(strconv.Itoa(p.Shape.Rank()))
	if p.Shape.IsStatic() {
		sb.WriteByte('1')
	} else {
		sb.WriteByte('0')
	}
}
