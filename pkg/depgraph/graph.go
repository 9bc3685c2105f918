// Package depgraph models features as nodes of a directed acyclic graph whose
// edges point from a node to the nodes it depends on.
//
// Nodes are keyed by a stable identifier and edges are identifier pairs, so a
// renamed node keeps all of its edges. The graph never holds references from
// one node to another; every hop is a map lookup.
package depgraph

import (
	"context"

	"github.com/google/uuid"
)

// Node is a single vertex. DependsOn lists the ids of its direct dependencies.
type Node struct {
	Id        uuid.UUID
	Name      string
	DependsOn []uuid.UUID
}

// Source loads nodes by id. Ids it cannot find are simply absent from the
// result.
type Source interface {
	Fetch(ctx context.Context, ids []uuid.UUID) ([]Node, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context, ids []uuid.UUID) ([]Node, error)

func (f SourceFunc) Fetch(ctx context.Context, ids []uuid.UUID) ([]Node, error) {
	return f(ctx, ids)
}

// Graph is an adjacency structure over a set of nodes. It is not safe for
// concurrent mutation.
type Graph struct {
	nodes map[uuid.UUID]*Node
	order []uuid.UUID // discovery order
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[uuid.UUID]*Node),
	}
}

// AddNode stores a copy of n. It returns false if a node with the same id is
// already present, in which case the graph is left untouched.
func (g *Graph) AddNode(n Node) bool {
	if _, ok := g.nodes[n.Id]; ok {
		return false
	}
	copied := n
	copied.DependsOn = append([]uuid.UUID(nil), n.DependsOn...)
	g.nodes[n.Id] = &copied
	g.order = append(g.order, n.Id)
	return true
}

// Node returns the node with the given id.
func (g *Graph) Node(id uuid.UUID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns every node in discovery order.
func (g *Graph) Nodes() []*Node {
	res := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		res = append(res, g.nodes[id])
	}
	return res
}

// Expand builds the transitive closure of roots. Dependencies are fetched from
// src one layer at a time; a node reachable through several paths is added
// once. A dependency id that src cannot resolve yields a *DanglingEdgeError.
func Expand(ctx context.Context, src Source, roots []Node) (*Graph, error) {
	g := New()

	var frontier []uuid.UUID
	for _, root := range roots {
		if g.AddNode(root) {
			frontier = append(frontier, root.DependsOn...)
		}
	}

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pending := make([]uuid.UUID, 0, len(frontier))
		queued := make(map[uuid.UUID]struct{}, len(frontier))
		for _, id := range frontier {
			if _, known := g.nodes[id]; known {
				continue
			}
			if _, dup := queued[id]; dup {
				continue
			}
			queued[id] = struct{}{}
			pending = append(pending, id)
		}
		if len(pending) == 0 {
			break
		}

		fetched, err := src.Fetch(ctx, pending)
		if err != nil {
			return nil, err
		}
		byId := make(map[uuid.UUID]Node, len(fetched))
		for _, n := range fetched {
			byId[n.Id] = n
		}

		var next []uuid.UUID
		for _, id := range pending {
			n, ok := byId[id]
			if !ok {
				return nil, &DanglingEdgeError{Id: id}
			}
			g.AddNode(n)
			next = append(next, n.DependsOn...)
		}
		frontier = next
	}

	return g, nil
}

// Reaches reports whether target is reachable from `from` by following
// dependency edges zero or more hops. Edges leading outside the graph are
// ignored. The walk uses an explicit stack, so chain depth is bounded only by
// memory.
func (g *Graph) Reaches(from, target uuid.UUID) bool {
	if from == target {
		return true
	}

	visited := map[uuid.UUID]struct{}{from: {}}
	stack := []uuid.UUID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n, ok := g.nodes[id]
		if !ok {
			continue
		}
		for _, dep := range n.DependsOn {
			if dep == target {
				return true
			}
			if _, seen := visited[dep]; seen {
				continue
			}
			visited[dep] = struct{}{}
			stack = append(stack, dep)
		}
	}
	return false
}
