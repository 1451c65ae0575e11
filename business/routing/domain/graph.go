package domain

import "github.com/fd1az/solana-router/internal/asset"

// Edge is one tradable direction of one venue.
type Edge struct {
	Venue     int // index into the snapshot
	Direction Direction
	From      asset.AssetID
	To        asset.AssetID
}

// Path is a sequence of edges from a source to a destination.
type Path []Edge

// Graph is the token adjacency derived from a snapshot. Build it per
// request; it carries no state beyond the snapshot it was built from.
type Graph struct {
	adj   map[asset.AssetID][]Edge
	edges int
}

// NewGraph adds one edge per venue direction that can trade.
func NewGraph(s Snapshot) *Graph {
	g := &Graph{adj: make(map[asset.AssetID][]Edge)}
	for i := 0; i < s.Len(); i++ {
		v := s.At(i)
		for _, dir := range [2]Direction{AToB, BToA} {
			if !v.CanTrade(dir) {
				continue
			}
			from, to := v.Tokens(dir)
			g.adj[from] = append(g.adj[from], Edge{Venue: i, Direction: dir, From: from, To: to})
			g.edges++
		}
	}
	return g
}

// Neighbors returns the edges leaving a, in snapshot order.
func (g *Graph) Neighbors(a asset.AssetID) []Edge {
	return g.adj[a]
}

// EdgeCount is the number of directed edges.
func (g *Graph) EdgeCount() int { return g.edges }

// NodeCount is the number of assets with at least one outgoing edge.
func (g *Graph) NodeCount() int { return len(g.adj) }

// pathNode is an immutable, parent-linked path prefix. Extending a prefix
// allocates a new node and never touches siblings, so every in-flight
// path owns its visited set for free.
type pathNode struct {
	edge   Edge
	parent *pathNode
	depth  int
}

func (n *pathNode) visits(a asset.AssetID) bool {
	for ; n != nil; n = n.parent {
		if n.edge.To.Equals(a) {
			return true
		}
	}
	return false
}

func (n *pathNode) path() Path {
	p := make(Path, n.depth)
	for i := n.depth - 1; n != nil; i, n = i-1, n.parent {
		p[i] = n.edge
	}
	return p
}

// SimplePaths enumerates every path from src to dst with at most maxHops
// edges that never revisits an asset, breadth first. A path ends as soon
// as it reaches dst.
func (g *Graph) SimplePaths(src, dst asset.AssetID, maxHops int) []Path {
	if maxHops <= 0 || src.Equals(dst) {
		return nil
	}

	type frontier struct {
		at   asset.AssetID
		node *pathNode
	}

	var paths []Path
	queue := []frontier{{at: src}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		depth := 0
		if cur.node != nil {
			depth = cur.node.depth
		}
		if depth == maxHops {
			continue
		}

		for _, e := range g.adj[cur.at] {
			if e.To.Equals(src) || cur.node.visits(e.To) {
				continue
			}
			next := &pathNode{edge: e, parent: cur.node, depth: depth + 1}
			if e.To.Equals(dst) {
				paths = append(paths, next.path())
				continue
			}
			queue = append(queue, frontier{at: e.To, node: next})
		}
	}
	return paths
}
