package tree

// ResolvedLinks returns the tree's links with reroute chains collapsed:
// every link is rewritten to originate at the first non-reroute output
// upstream, links that terminate at a reroute are dropped (the chain's
// exit link carries the connection), and duplicate endpoint pairs are
// removed. Output order follows insertion order of the surviving
// links, so serialization stays stable.
//
// Chains that never reach a real output, because a reroute is dangling
// or the chain loops, drop their links entirely.
func (t *Tree) ResolvedLinks() []Link { return resolveLinks(t.Links) }

// ResolvedLinks is the group-level counterpart of [Tree.ResolvedLinks].
func (g *Group) ResolvedLinks() []Link { return resolveLinks(g.Links) }

type endpoint struct {
	node   *Node
	socket int
}

func resolveLinks(links []Link) []Link {
	// First incoming link per node. Reroutes have a single input, so one
	// entry per node is enough to walk a chain backward.
	incoming := make(map[*Node]Link, len(links))
	for _, l := range links {
		if l.ToNode == nil {
			continue
		}
		if _, ok := incoming[l.ToNode]; !ok {
			incoming[l.ToNode] = l
		}
	}

	seen := make(map[[2]endpoint]bool, len(links))
	var out []Link
	for _, l := range links {
		if l.FromNode == nil || l.ToNode == nil || l.ToNode.IsReroute() {
			continue
		}
		src, ok := traceSource(l.FromNode, l.FromSocket, incoming)
		if !ok {
			continue
		}
		key := [2]endpoint{src, {l.ToNode, l.ToSocket}}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Link{
			FromNode:   src.node,
			FromSocket: src.socket,
			ToNode:     l.ToNode,
			ToSocket:   l.ToSocket,
		})
	}
	return out
}

func traceSource(n *Node, socket int, incoming map[*Node]Link) (endpoint, bool) {
	visited := map[*Node]bool{}
	for n.IsReroute() {
		if visited[n] {
			return endpoint{}, false
		}
		visited[n] = true
		in, ok := incoming[n]
		if !ok || in.FromNode == nil {
			return endpoint{}, false
		}
		n, socket = in.FromNode, in.FromSocket
	}
	return endpoint{n, socket}, true
}
