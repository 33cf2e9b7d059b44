package plugingraph

import "github.com/loot-core/libloot/internal/logging"

// vertexState mirrors spec.md §4.5 "State machine": Unvisited → Active →
// Finished, with a node re-entered while Active producing the exact cycle
// witness.
type vertexState int

const (
	unvisited vertexState = iota
	active
	finished
)

// adjacency builds a from-vertex -> outgoing edges map over the builder's
// current edge set.
func (b *Builder) adjacency() map[int][]Edge {
	adj := make(map[int][]Edge, len(b.plugins))
	for _, e := range b.edges {
		adj[e.From] = append(adj[e.From], e)
	}
	return adj
}

// findCycle runs a DFS over the current edge set, returning the first cycle
// encountered (as a list of edges, in cycle order) or nil if the graph is
// acyclic. Traversal order is deterministic: vertices are visited in index
// order, and each vertex's outgoing edges in insertion order.
func (b *Builder) findCycle() []Edge {
	adj := b.adjacency()
	state := make([]vertexState, len(b.plugins))
	var stack []Edge

	var visit func(v int) []Edge
	visit = func(v int) []Edge {
		state[v] = active
		for _, e := range adj[v] {
			switch state[e.To] {
			case unvisited:
				stack = append(stack, e)
				if cyc := visit(e.To); cyc != nil {
					return cyc
				}
				stack = stack[:len(stack)-1]
			case active:
				stack = append(stack, e)
				start := 0
				for i, se := range stack {
					if se.From == e.To {
						start = i
						break
					}
				}
				return append([]Edge{}, stack[start:]...)
			case finished:
				// Already fully explored with no cycle found through it.
			}
		}
		state[v] = finished
		return nil
	}

	for v := range b.plugins {
		if state[v] == unvisited {
			if cyc := visit(v); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}

// resolveAfter repairs any cycle introduced by edges up to and including
// lastAdded, per spec.md §4.5's cycle-handling policy: a cycle made up only
// of kinds 1-3 (Hard/Master/Hardcoded) is fatal; otherwise the weakest-kind
// edge participating in the cycle is dropped and resolution retries.
func (b *Builder) resolveAfter(lastAdded EdgeKind) error {
	for {
		cyc := b.findCycle()
		if cyc == nil {
			return nil
		}

		maxKind := cyc[0].Kind
		for _, e := range cyc {
			if e.Kind > maxKind {
				maxKind = e.Kind
			}
		}
		if maxKind <= EdgeHardcoded {
			vertices := make([]string, len(cyc))
			kinds := make([]EdgeKind, len(cyc))
			for i, e := range cyc {
				vertices[i] = b.plugins[e.From].Name
				kinds[i] = e.Kind
			}
			return &CycleError{Vertices: vertices, Kinds: kinds}
		}

		// Drop the first edge (in cycle order) with the weakest (maximum)
		// kind; deterministic since cyc is built from a deterministic DFS.
		var toDrop Edge
		for _, e := range cyc {
			if e.Kind == maxKind {
				toDrop = e
				break
			}
		}
		logDroppedEdge(b, toDrop)
		b.removeEdge(toDrop)
	}
}

// logDroppedEdge reports an edge dropped to resolve a non-fatal cycle, at
// warn level for a masterlist/userlist/group conflict and trace level
// (here, debug, since the sink has no distinct trace level) for an overlap
// drop (spec.md §4.5 "Propagation").
func logDroppedEdge(b *Builder, e Edge) {
	from, to := b.plugins[e.From].Name, b.plugins[e.To].Name
	if e.Kind == EdgeOverlap {
		logging.Debugf("dropping overlap edge %s -> %s to resolve cycle", from, to)
		return
	}
	logging.Warnf("dropping %s edge %s -> %s to resolve cycle", e.Kind, from, to)
}

func (b *Builder) removeEdge(target Edge) {
	out := b.edges[:0]
	for _, e := range b.edges {
		if e == target {
			delete(b.seen, [3]int{e.From, e.To, int(e.Kind)})
			continue
		}
		out = append(out, e)
	}
	b.edges = out
}

// hasPath reports whether to is reachable from from over the current edge
// set, used by AddTieBreakEdges to avoid adding a redundant or
// cycle-creating tie-break edge.
func (b *Builder) hasPath(from, to int) bool {
	adj := b.adjacency()
	visited := make([]bool, len(b.plugins))
	var stack []int
	stack = append(stack, from)
	visited[from] = true
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if v == to {
			return true
		}
		for _, e := range adj[v] {
			if !visited[e.To] {
				visited[e.To] = true
				stack = append(stack, e.To)
			}
		}
	}
	return false
}
