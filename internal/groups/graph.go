// Package groups implements the group graph (spec.md §4.4, component C4):
// resolving "group X loads after group Y" into validated edges, detecting
// cycles at construction, and answering weighted shortest-path queries.
package groups

import (
	"fmt"
	"sort"

	"github.com/loot-core/libloot/internal/metadata"
)

// Provenance records whether an edge came from the masterlist or the
// userlist; userlist edges are cheaper to traverse (SPEC_FULL.md §13 Open
// Question decision #1).
type Provenance int

const (
	Masterlist Provenance = iota
	Userlist
)

// Cost weights applied per traversed edge, pinned per SPEC_FULL.md §13:
// masterlist edges cost strictly more than two userlist edges combined, so
// a two-hop userlist detour is chosen over a direct masterlist hop when
// both reach the target (spec.md §8 scenario 7).
const (
	MasterlistWeight = 3
	UserlistWeight   = 1
)

// edge is a directed "from loads before to" relation (A is in B's
// after_groups means A -> B).
type edge struct {
	to         string
	provenance Provenance
}

// UndefinedGroupError reports a reference to a group name never defined
// (spec.md §4.4 pre-condition invariant).
type UndefinedGroupError struct {
	Group string
}

func (e *UndefinedGroupError) Error() string { return fmt.Sprintf("undefined group: %s", e.Group) }

// CycleError reports a cycle found at construction time, carrying the
// participating group names and edge provenances in cycle order.
type CycleError struct {
	Names       []string
	Provenances []Provenance
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic group interaction: %v", e.Names)
}

// Graph is the constructed, cycle-free group graph.
type Graph struct {
	adjacency map[string][]edge
	names     []string
}

// Build constructs a Graph from every known group (masterlist ∪ userlist),
// validating that every after_groups reference is defined and that no cycle
// exists. isUserlistEdge reports whether a given (group, afterGroup) edge
// came from the userlist; edges not reported there default to masterlist.
func Build(allGroups []metadata.Group, isUserlistEdge func(group, after string) bool) (*Graph, error) {
	defined := make(map[string]struct{}, len(allGroups))
	for _, g := range allGroups {
		defined[g.Name] = struct{}{}
	}
	if _, ok := defined[metadata.DefaultGroupName]; !ok {
		defined[metadata.DefaultGroupName] = struct{}{}
	}

	g := &Graph{adjacency: make(map[string][]edge, len(defined))}
	for name := range defined {
		g.names = append(g.names, name)
	}
	sort.Strings(g.names)

	seen := make(map[[2]string]struct{})
	for _, grp := range allGroups {
		for _, after := range grp.AfterGroups {
			if _, ok := defined[after]; !ok {
				return nil, &UndefinedGroupError{Group: after}
			}
			key := [2]string{after, grp.Name}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			prov := Masterlist
			if isUserlistEdge != nil && isUserlistEdge(grp.Name, after) {
				prov = Userlist
			}
			// after -> grp.Name: "after" must precede "grp.Name".
			g.adjacency[after] = append(g.adjacency[after], edge{to: grp.Name, provenance: prov})
		}
	}

	if cyc := g.findCycle(); cyc != nil {
		return nil, cyc
	}
	return g, nil
}

// findCycle runs a DFS with a recursion-stack marker, returning the first
// cycle encountered in deterministic (sorted vertex) order.
func (g *Graph) findCycle() *CycleError {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.names))
	var path []string
	var pathEdges []Provenance

	var visit func(v string) *CycleError
	visit = func(v string) *CycleError {
		color[v] = gray
		path = append(path, v)
		edges := append([]edge{}, g.adjacency[v]...)
		sort.Slice(edges, func(i, j int) bool { return edges[i].to < edges[j].to })
		for _, e := range edges {
			pathEdges = append(pathEdges, e.provenance)
			switch color[e.to] {
			case white:
				if cyc := visit(e.to); cyc != nil {
					return cyc
				}
			case gray:
				// Found the cycle: slice path from e.to's first occurrence.
				start := 0
				for i, n := range path {
					if n == e.to {
						start = i
						break
					}
				}
				names := append([]string{}, path[start:]...)
				provs := append([]Provenance{}, pathEdges[start:]...)
				return &CycleError{Names: names, Provenances: provs}
			}
			pathEdges = pathEdges[:len(pathEdges)-1]
		}
		color[v] = black
		path = path[:len(path)-1]
		return nil
	}

	for _, v := range g.names {
		if color[v] == white {
			if cyc := visit(v); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}

// Names returns every group name in the graph, sorted.
func (g *Graph) Names() []string { return append([]string{}, g.names...) }
