package subgraph

import (
	"github.com/specialistvlad/subgraphdumper/internal/ir"
	"github.com/zclconf/go-cty/cty"
)

// Range is the closed value interval observed for a boundary input.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// InputInfo is the metadata kept for one boundary input.
type InputInfo struct {
	IsConst bool    `yaml:"is_const"`
	Ranges  []Range `yaml:"ranges,omitempty"`
}

// InputInfoMap keeps InputInfo records in insertion order. The order is
// part of the canonical name, so it must only ever depend on traversal
// order.
type InputInfoMap struct {
	keys []string
	m    map[string]InputInfo
}

// NewInputInfoMap returns an empty map.
func NewInputInfoMap() *InputInfoMap {
	return &InputInfoMap{m: make(map[string]InputInfo)}
}

// Set stores info under key, appending key if it is new.
func (im *InputInfoMap) Set(key string, info InputInfo) {
	if _, ok := im.m[key]; !ok {
		im.keys = append(im.keys, key)
	}
	im.m[key] = info
}

// SetIfAbsent stores info only when key is not present yet.
func (im *InputInfoMap) SetIfAbsent(key string, info InputInfo) {
	if _, ok := im.m[key]; ok {
		return
	}
	im.Set(key, info)
}

// Get returns the record stored under key.
func (im *InputInfoMap) Get(key string) (InputInfo, bool) {
	info, ok := im.m[key]
	return info, ok
}

// Delete removes key.
func (im *InputInfoMap) Delete(key string) {
	if _, ok := im.m[key]; !ok {
		return
	}
	delete(im.m, key)
	for i, k := range im.keys {
		if k == key {
			im.keys = append(im.keys[:i], im.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (im *InputInfoMap) Keys() []string {
	out := make([]string, len(im.keys))
	copy(out, im.keys)
	return out
}

// Len returns the number of records.
func (im *InputInfoMap) Len() int {
	return len(im.keys)
}

// ConstPattern returns the IsConst flag of every record in key order.
func (im *InputInfoMap) ConstPattern() []bool {
	out := make([]bool, len(im.keys))
	for i, k := range im.keys {
		out[i] = im.m[k].IsConst
	}
	return out
}

// inputInfoFor describes every input of a freshly wired clone, keyed by the
// name of the node the input currently reads from.
func inputInfoFor(n *ir.Node) *InputInfoMap {
	im := NewInputInfoMap()
	for _, in := range n.Inputs {
		if in.Node == nil {
			continue
		}
		info := InputInfo{IsConst: in.Node.IsConstant()}
		if v, ok := in.Node.ConstantValue(); ok {
			if r, ok := valueRange(v); ok {
				info.Ranges = []Range{r}
			}
		}
		im.Set(in.Node.Name, info)
	}
	return im
}

// valueRange folds every known number inside v into one interval.
func valueRange(v cty.Value) (Range, bool) {
	var r Range
	found := false
	_ = cty.Walk(v, func(_ cty.Path, leaf cty.Value) (bool, error) {
		if leaf.IsNull() || !leaf.IsKnown() || !leaf.Type().Equals(cty.Number) {
			return true, nil
		}
		f, _ := leaf.AsBigFloat().Float64()
		if !found {
			r = Range{Min: f, Max: f}
			found = true
			return true, nil
		}
		if f < r.Min {
			r.Min = f
		}
		if f > r.Max {
			r.Max = f
		}
		return true, nil
	})
	return r, found
}
