package groups

import "container/heap"

// Vertex is one hop in a resolved groups path: the group name and the kind
// of edge used to reach it from the previous vertex (spec.md §3 "Vertex").
type Vertex struct {
	Name       string
	Provenance Provenance
}

// pqItem is one entry in the Dijkstra frontier.
type pqItem struct {
	name string
	cost int
	path []Vertex
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	return lessPath(pq[i].path, pq[j].path)
}
func (pq priorityQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)        { *pq = append(*pq, x.(*pqItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// lessPath breaks ties between equal-cost paths lexicographically by vertex
// name sequence, so the result is deterministic (spec.md §8 scenario 7,
// §5 determinism invariant).
func lessPath(a, b []Vertex) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i].Name != b[i].Name {
			return a[i].Name < b[i].Name
		}
	}
	return len(a) < len(b)
}

func weight(p Provenance) int {
	if p == Userlist {
		return UserlistWeight
	}
	return MasterlistWeight
}

// Path returns the minimum-cost sequence of groups from `from` to `to`,
// inclusive of both endpoints, following "loads after" edges. If from == to
// the path is the single-vertex [from] (spec.md §5 "get_groups_path(X, X)
// == [X]"). Returns false if no path exists.
func (g *Graph) Path(from, to string) ([]Vertex, bool) {
	if from == to {
		return []Vertex{{Name: from}}, true
	}

	best := make(map[string]int)
	pq := &priorityQueue{{name: from, cost: 0, path: []Vertex{{Name: from}}}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		if prev, ok := best[item.name]; ok && prev <= item.cost {
			continue
		}
		best[item.name] = item.cost
		if item.name == to {
			return item.path, true
		}
		edges := append([]edge{}, g.adjacency[item.name]...)
		for _, e := range edges {
			cost := item.cost + weight(e.provenance)
			if prev, ok := best[e.to]; ok && prev <= cost {
				continue
			}
			nextPath := append(append([]Vertex{}, item.path...), Vertex{Name: e.to, Provenance: e.provenance})
			heap.Push(pq, &pqItem{name: e.to, cost: cost, path: nextPath})
		}
	}
	return nil, false
}
