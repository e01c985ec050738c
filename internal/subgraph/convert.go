package subgraph

import "github.com/specialistvlad/subgraphdumper/internal/ir"

// DefaultConstByteThreshold is the payload size up to which constants are
// kept as compile-time literals.
const DefaultConstByteThreshold int64 = 1024

// ConstConverter turns a constant into an equivalent parameter, or returns
// nil when the value must remain a literal.
type ConstConverter func(c *ir.Node) *ir.Node

// ConvertLargeConstants converts constants whose payload is larger than
// maxLiteralBytes. Constants of unknown size are always converted.
func ConvertLargeConstants(maxLiteralBytes int64) ConstConverter {
	return func(c *ir.Node) *ir.Node {
		if !c.IsConstant() || len(c.Outputs) == 0 {
			return nil
		}
		if size := c.ByteSize(); size >= 0 && size <= maxLiteralBytes {
			return nil
		}
		p := ir.NewParameter(c.Name, c.Outputs[0])
		p.IsConst = true
		return p
	}
}

// KeepConstants never converts.
func KeepConstants(*ir.Node) *ir.Node {
	return nil
}
