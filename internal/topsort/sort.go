// Package topsort implements the deterministic topological sort over the
// plugin graph (spec.md §4.6, component C6): a Kahn's-algorithm variant that
// breaks ties among equally-ready vertices by preferring the one whose
// current load-order index is smallest, to keep the output close to the
// input when constraints permit.
package topsort

import "container/heap"

// Edge is a directed "from loads before to" relation, matching
// internal/plugingraph.Edge's shape without importing that package (kept
// generic so any caller with a DAG of int vertices can reuse the sorter).
type Edge struct {
	From, To int
}

// readyHeap orders ready vertices by ascending current load-order index.
type readyHeap struct {
	vertices     []int
	currentIndex []int
}

func (h readyHeap) Len() int { return len(h.vertices) }
func (h readyHeap) Less(i, j int) bool {
	return h.currentIndex[h.vertices[i]] < h.currentIndex[h.vertices[j]]
}
func (h readyHeap) Swap(i, j int) { h.vertices[i], h.vertices[j] = h.vertices[j], h.vertices[i] }
func (h *readyHeap) Push(x any)   { h.vertices = append(h.vertices, x.(int)) }
func (h *readyHeap) Pop() any {
	old := h.vertices
	n := len(old)
	v := old[n-1]
	h.vertices = old[:n-1]
	return v
}

// Sort performs a stable topological sort over n vertices (0..n-1) and the
// given edges, using currentIndex[v] as the tie-break for which ready
// vertex to emit next. It assumes the graph is already acyclic (callers run
// cycle resolution, e.g. internal/plugingraph, before calling Sort) and
// panics if it is not, since that would indicate an internal invariant
// violation rather than a user-facing error.
func Sort(n int, edges []Edge, currentIndex []int) []int {
	inDegree := make([]int, n)
	adj := make([][]int, n)
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
		inDegree[e.To]++
	}

	h := &readyHeap{currentIndex: currentIndex}
	for v := 0; v < n; v++ {
		if inDegree[v] == 0 {
			heap.Push(h, v)
		}
	}

	order := make([]int, 0, n)
	for h.Len() > 0 {
		v := heap.Pop(h).(int)
		order = append(order, v)
		for _, to := range adj[v] {
			inDegree[to]--
			if inDegree[to] == 0 {
				heap.Push(h, to)
			}
		}
	}

	if len(order) != n {
		panic("topsort.Sort: graph contains a cycle")
	}
	return order
}
