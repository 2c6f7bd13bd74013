// Package taskgraph provides the live execution plan a rehydrated build
// schedules its work into.
package taskgraph

import (
	"sync"

	"github.com/runoshun/confcache/internal/domain"
)

const (
	white = 0
	gray  = 1
	black = 2
)

// Graph is an in-memory execution plan. Nodes are added as requested work
// and Populate computes their dependency closure exactly once.
// Fields are ordered to minimize memory padding.
type Graph struct {
	byID      map[string]domain.Node
	requested []domain.Node
	scheduled []domain.Node
	mu        sync.RWMutex
	populated bool
}

var _ domain.TaskGraph = (*Graph)(nil)

// New creates an empty graph.
func New() *Graph {
	return &Graph{byID: make(map[string]domain.Node)}
}

// AddNodes adds nodes as requested work. Re-adding the same node is a no-op;
// a different node with a known ID is rejected and nothing is added.
func (g *Graph) AddNodes(nodes []domain.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.populated {
		return domain.ErrGraphPopulated
	}

	pending := make(map[string]domain.Node, len(nodes))
	fresh := make([]domain.Node, 0, len(nodes))
	for _, n := range nodes {
		if existing, ok := g.byID[n.ID()]; ok {
			if existing != n {
				return graphErrorf(domain.ErrDuplicateNode, "%s", n.ID())
			}
			continue
		}
		if existing, ok := pending[n.ID()]; ok {
			if existing != n {
				return graphErrorf(domain.ErrDuplicateNode, "%s", n.ID())
			}
			continue
		}
		pending[n.ID()] = n
		fresh = append(fresh, n)
	}

	for _, n := range fresh {
		g.byID[n.ID()] = n
		g.requested = append(g.requested, n)
	}
	return nil
}

// Populate walks the dependency closure of the requested nodes, rejects
// cycles and fixes the execution order. It succeeds at most once.
func (g *Graph) Populate() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.populated {
		return domain.ErrGraphPopulated
	}

	color := make(map[string]int, len(g.byID))
	seen := make(map[string]domain.Node, len(g.byID))
	order := make([]domain.Node, 0, len(g.byID))
	var stack []string

	var visit func(n domain.Node) error
	visit = func(n domain.Node) error {
		id := n.ID()
		if other, ok := seen[id]; ok && other != n {
			return graphErrorf(domain.ErrDuplicateNode, "%s", id)
		}
		seen[id] = n

		switch color[id] {
		case black:
			return nil
		case gray:
			start := 0
			for i, s := range stack {
				if s == id {
					start = i
					break
				}
			}
			path := append(append([]string(nil), stack[start:]...), id)
			return cycleError(domain.ErrCycleDetected, path)
		}

		color[id] = gray
		stack = append(stack, id)
		for _, dep := range n.Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		order = append(order, n)
		return nil
	}

	for _, n := range g.requested {
		if err := visit(n); err != nil {
			return err
		}
	}

	g.scheduled = order
	g.populated = true
	return nil
}

// IsPopulated reports whether Populate succeeded.
func (g *Graph) IsPopulated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.populated
}

// RequestedNodes returns the nodes passed to AddNodes, in order.
func (g *Graph) RequestedNodes() []domain.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.Node, len(g.requested))
	copy(out, g.requested)
	return out
}

// ScheduledWorkPlusDependencies returns the closure in execution order,
// dependencies before dependents. It is empty until populated.
func (g *Graph) ScheduledWorkPlusDependencies() []domain.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.Node, len(g.scheduled))
	copy(out, g.scheduled)
	return out
}

// NodeIDs returns the IDs of nodes, in order.
func NodeIDs(nodes []domain.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID()
	}
	return ids
}
