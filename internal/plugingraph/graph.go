// Package plugingraph implements the plugin graph builder (spec.md §4.5,
// component C5): combining installed-plugin facts, metadata-derived edges,
// group edges and overlap heuristics into a directed graph of plugins,
// resolving cycles per the policy in spec.md §4.5.
package plugingraph

import "sort"

// EdgeKind ranks the eight edge sources from strongest (1) to weakest (8),
// in the exact order spec.md §4.5 lists them. The numeric rank doubles as
// the cycle-resolution priority: when a cycle must be broken, the edge with
// the largest rank present in the cycle is dropped.
type EdgeKind int

const (
	EdgeHard EdgeKind = iota + 1
	EdgeMaster
	EdgeHardcoded
	EdgeMasterlistHard
	EdgeUserlistHard
	EdgeGroup
	EdgeOverlap
	EdgeTieBreak
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeHard:
		return "hard"
	case EdgeMaster:
		return "master"
	case EdgeHardcoded:
		return "hardcoded"
	case EdgeMasterlistHard:
		return "masterlist"
	case EdgeUserlistHard:
		return "userlist"
	case EdgeGroup:
		return "group"
	case EdgeOverlap:
		return "overlap"
	case EdgeTieBreak:
		return "tie-break"
	default:
		return "unknown"
	}
}

// Edge is a directed "from loads before to" relation between two plugin
// vertex indices.
type Edge struct {
	From, To int
	Kind     EdgeKind
}

// PluginInfo is everything the builder needs about one loaded plugin,
// already resolved against the current game's rules (e.g. IsMaster already
// folds in extension overrides and OpenMW's ignored-flag rule).
type PluginInfo struct {
	Name         string
	IsMaster     bool
	IsBlueprint  bool
	MasterIdxs   []int // indices, in this builder's vertex numbering, of this plugin's installed masters
	CurrentIndex int   // position in the load order supplied to sort, used for the stability tie-break
}

// CycleError reports a cycle found while adding edges of a fatal kind
// (EdgeHard/EdgeMaster/EdgeHardcoded), carrying the cycle in order.
type CycleError struct {
	Vertices []string
	Kinds    []EdgeKind
}

func (e *CycleError) Error() string { return "cyclic plugin interaction" }

// Builder accumulates edges across the eight ordered sources and resolves
// cycles as it goes.
type Builder struct {
	plugins []PluginInfo
	edges   []Edge
	seen    map[[3]int]struct{} // (from, to, kind) dedupe
}

// NewBuilder creates a Builder over the given plugins, indexed 0..n-1 in
// the order given (the vertex numbering every later Add* call refers to).
func NewBuilder(plugins []PluginInfo) *Builder {
	return &Builder{plugins: plugins, seen: make(map[[3]int]struct{})}
}

func (b *Builder) addEdge(from, to int, kind EdgeKind) {
	if from == to {
		return
	}
	key := [3]int{from, to, int(kind)}
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	b.edges = append(b.edges, Edge{From: from, To: to, Kind: kind})
}

// AddHardEdges implements source 1: masters load before non-masters that
// don't themselves master them, and blueprint plugins load after every
// non-blueprint plugin.
func (b *Builder) AddHardEdges() error {
	for i, p := range b.plugins {
		if p.IsMaster {
			for j, q := range b.plugins {
				if i == j || q.IsMaster {
					continue
				}
				if isMasterOf(i, j, b.plugins) {
					continue
				}
				b.addEdge(i, j, EdgeHard)
			}
		}
		if p.IsBlueprint {
			for j, q := range b.plugins {
				if i == j || q.IsBlueprint {
					continue
				}
				b.addEdge(j, i, EdgeHard)
			}
		}
	}
	return b.resolveAfter(EdgeHard)
}

func isMasterOf(pluginIdx, candidateMasterIdx int, plugins []PluginInfo) bool {
	for _, m := range plugins[pluginIdx].MasterIdxs {
		if m == candidateMasterIdx {
			return true
		}
	}
	return false
}

// AddMasterDependencyEdges implements source 2: every plugin loads after
// every installed plugin in its declared-masters list.
func (b *Builder) AddMasterDependencyEdges() error {
	for i, p := range b.plugins {
		for _, m := range p.MasterIdxs {
			b.addEdge(m, i, EdgeMaster)
		}
	}
	return b.resolveAfter(EdgeMaster)
}

// AddHardcodedEdges implements source 3: a fixed, ordered prefix of
// hardcoded plugins, by name, is forced to load first in the given order.
// Names not present among the builder's plugins are ignored.
func (b *Builder) AddHardcodedEdges(orderedNames []string, indexByFoldedName map[string]int) error {
	var chain []int
	for _, name := range orderedNames {
		if idx, ok := indexByFoldedName[name]; ok {
			chain = append(chain, idx)
		}
	}
	for i := 0; i+1 < len(chain); i++ {
		b.addEdge(chain[i], chain[i+1], EdgeHardcoded)
	}
	for _, idx := range chain {
		for j := range b.plugins {
			if j == idx {
				continue
			}
			if !containsInt(chain, j) {
				b.addEdge(idx, j, EdgeHardcoded)
			}
		}
	}
	return b.resolveAfter(EdgeHardcoded)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// AddPrecedenceEdges implements sources 4 and 5: masterlist/userlist
// requirements and load_after produce precedence edges (the target loads
// after the referenced plugin); incompatibilities do not, and are reported
// separately by the caller as diagnostics.
func (b *Builder) AddPrecedenceEdges(kind EdgeKind, pairs [][2]int) error {
	for _, pair := range pairs {
		b.addEdge(pair[0], pair[1], kind)
	}
	return b.resolveAfter(kind)
}

// AddGroupEdges implements source 6: per-plugin precedence edges derived
// from the group graph (spec.md §4.4 "Per-plugin precedence derivation").
func (b *Builder) AddGroupEdges(pairs [][2]int) error {
	for _, pair := range pairs {
		b.addEdge(pair[0], pair[1], EdgeGroup)
	}
	return b.resolveAfter(EdgeGroup)
}

// OverlapPair describes one unordered pair with a resolved winner: Later is
// the vertex that should load after Earlier, because it has the larger
// total record count (or, on equal record counts, the larger asset count).
type OverlapPair struct {
	Earlier, Later int
}

// AddOverlapEdges implements source 7: for any still-unordered pair sharing
// records or declared archive assets, the plugin with the larger count
// loads later.
func (b *Builder) AddOverlapEdges(pairs []OverlapPair) error {
	for _, pair := range pairs {
		b.addEdge(pair.Earlier, pair.Later, EdgeOverlap)
	}
	return b.resolveAfter(EdgeOverlap)
}

// AddTieBreakEdges implements source 8: any pair still unordered preserves
// its current on-disk relative order.
func (b *Builder) AddTieBreakEdges() error {
	order := make([]int, len(b.plugins))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return b.plugins[order[i]].CurrentIndex < b.plugins[order[j]].CurrentIndex
	})
	for i := 0; i+1 < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			a, c := order[i], order[j]
			if !b.hasPath(a, c) && !b.hasPath(c, a) {
				b.addEdge(a, c, EdgeTieBreak)
			}
		}
	}
	return b.resolveAfter(EdgeTieBreak)
}

// Edges returns every surviving edge, in insertion order.
func (b *Builder) Edges() []Edge { return append([]Edge{}, b.edges...) }

// VertexCount returns the number of plugins in the graph.
func (b *Builder) VertexCount() int { return len(b.plugins) }
