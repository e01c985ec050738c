package testutil

import (
	"fmt"
	"strings"
)

// ChainModel renders an HCL model with one f32 parameter feeding the given
// unary operators in sequence and a result on the last one. Node names are
// prefixed so that two chains with different prefixes share structure but
// not names.
func ChainModel(prefix string, ops ...string) string {
	var b strings.Builder
	port := `[{ type = "f32", shape = [1, 64] }]`

	fmt.Fprintf(&b, "node %q {\n  kind    = \"parameter\"\n  outputs = %s\n}\n\n", prefix+"_in", port)
	prev := prefix + "_in"
	for i, op := range ops {
		name := fmt.Sprintf("%s_%d_%s", prefix, i, strings.ToLower(op))
		fmt.Fprintf(&b, "node %q {\n  op      = %q\n  version = \"opset1\"\n  inputs  = [%q]\n  outputs = %s\n}\n\n", name, op, prev, port)
		prev = name
	}
	fmt.Fprintf(&b, "node %q {\n  kind   = \"result\"\n  inputs = [%q]\n}\n", prefix+"_out", prev)
	return b.String()
}
