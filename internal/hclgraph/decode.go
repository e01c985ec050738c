package hclgraph

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/subgraphdumper/internal/ctxlog"
	"github.com/specialistvlad/subgraphdumper/internal/ir"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// portType is the cty type every entry of `outputs` is converted to.
var portType = cty.Object(map[string]cty.Type{
	"type":  cty.String,
	"shape": cty.List(cty.Number),
})

// rawPort mirrors portType for gocty decoding.
type rawPort struct {
	Type  string  `cty:"type"`
	Shape []int64 `cty:"shape"`
}

// isExprDefined checks if an HCL expression was actually present in the source.
// Omitted optional attributes decode to a zero-width placeholder expression,
// so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	isDefined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// decodePorts evaluates an `outputs` list.
func decodePorts(expr hcl.Expression) ([]ir.Port, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid outputs: %w", diags)
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("outputs must be a list, got %s", val.Type().FriendlyName())
	}

	ports := make([]ir.Port, 0, val.LengthInt())
	it := val.ElementIterator()
	for it.Next() {
		_, elem := it.Element()
		converted, err := convert.Convert(elem, portType)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", len(ports), err)
		}
		var raw rawPort
		if err := gocty.FromCtyValue(converted, &raw); err != nil {
			return nil, fmt.Errorf("output %d: %w", len(ports), err)
		}
		et, err := ir.ParseElementType(raw.Type)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", len(ports), err)
		}
		shape := make(ir.Shape, len(raw.Shape))
		for i, d := range raw.Shape {
			if d < ir.DynamicDim {
				return nil, fmt.Errorf("output %d: invalid dimension %d", len(ports), d)
			}
			shape[i] = d
		}
		ports = append(ports, ir.Port{Type: et, Shape: shape})
	}
	return ports, nil
}

// decodeAttributes evaluates an `attributes` object into a map of values.
// Attribute values keep their cty form so any type can be carried.
func decodeAttributes(expr hcl.Expression) (map[string]cty.Value, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid attributes: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("attributes must be an object, got %s", val.Type().FriendlyName())
	}
	return val.AsValueMap(), nil
}
