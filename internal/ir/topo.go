package ir

// OrderedNodes returns every node reachable from roots, producers before
// consumers. The walk is a depth-first post-order that follows roots in the
// given order and inputs by index, so the result depends only on the
// structure of the graph and never on node names.
func OrderedNodes(roots []*Node, extra ...*Node) []*Node {
	var order []*Node
	visited := make(map[*Node]bool)

	var visit func(n *Node)
	visit = func(n *Node) {
		if n == nil || visited[n] {
			return
		}
		visited[n] = true
		for _, in := range n.Inputs {
			visit(in.Node)
		}
		order = append(order, n)
	}

	// Unreachable extras (e.g. a parameter no result depends on) are placed
	// first, mirroring how they would be scheduled.
	for _, n := range extra {
		if !reaches(roots, n) {
			visit(n)
		}
	}
	for _, r := range roots {
		visit(r)
	}
	return order
}

func reaches(roots []*Node, target *Node) bool {
	seen := make(map[*Node]bool)
	stack := append([]*Node(nil), roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil || seen[n] {
			continue
		}
		if n == target {
			return true
		}
		seen[n] = true
		for _, in := range n.Inputs {
			stack = append(stack, in.Node)
		}
	}
	return false
}
