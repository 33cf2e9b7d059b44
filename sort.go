package loot

import (
	"fmt"

	"github.com/loot-core/libloot/internal/filename"
	"github.com/loot-core/libloot/internal/groups"
	"github.com/loot-core/libloot/internal/logging"
	"github.com/loot-core/libloot/internal/metadata"
	"github.com/loot-core/libloot/internal/plugingraph"
	"github.com/loot-core/libloot/internal/topsort"
)

// Sort computes a new load order for filenames, combining installed-plugin
// facts, masterlist/userlist metadata, group precedence and record/asset
// overlap heuristics through the eight ordered edge sources of spec.md §4.5,
// then resolves the result to a single deterministic order via §4.6's
// topological sort. Every name in filenames must already be loaded via
// LoadPlugins.
func (h *GameHandle) Sort(filenames []PluginFilename) ([]PluginFilename, error) {
	plugins := make([]*Plugin, len(filenames))
	indexByFolded := make(map[string]int, len(filenames))
	for i, name := range filenames {
		p, ok := h.GetPlugin(name.String())
		if !ok {
			return nil, &InvalidArgumentError{Message: fmt.Sprintf("plugin not loaded: %s", name.String())}
		}
		plugins[i] = p
		indexByFolded[name.Folded()] = i
	}

	currentOrder, err := h.loadOrderHandler.CurrentOrder()
	if err != nil {
		return nil, &FileAccessError{Message: "reading current load order"}
	}
	currentIndex := make([]int, len(plugins))
	for i := range currentIndex {
		currentIndex[i] = len(filenames) // plugins absent from the current order sort last among ties
	}
	for pos, name := range currentOrder {
		if idx, ok := indexByFolded[name.Folded()]; ok {
			currentIndex[idx] = pos
		}
	}

	infos := make([]plugingraph.PluginInfo, len(plugins))
	for i, p := range plugins {
		var masterIdxs []int
		for _, m := range p.Masters() {
			if idx, ok := indexByFolded[m.Folded()]; ok {
				masterIdxs = append(masterIdxs, idx)
			}
		}
		infos[i] = plugingraph.PluginInfo{
			Name:         p.Filename().String(),
			IsMaster:     p.IsMaster(),
			IsBlueprint:  p.IsBlueprintPlugin(),
			MasterIdxs:   masterIdxs,
			CurrentIndex: currentIndex[i],
		}
	}

	b := plugingraph.NewBuilder(infos)

	if err := b.AddHardEdges(); err != nil {
		return nil, translateCycleError(err)
	}
	if err := b.AddMasterDependencyEdges(); err != nil {
		return nil, translateCycleError(err)
	}
	earlyFolded := make([]string, len(h.rules.EarlyLoadingPlugins))
	for i, name := range h.rules.EarlyLoadingPlugins {
		earlyFolded[i] = filename.New(name).Folded()
	}
	if err := b.AddHardcodedEdges(earlyFolded, indexByFolded); err != nil {
		return nil, translateCycleError(err)
	}

	masterlistPairs, userlistPairs := h.precedencePairs(plugins, indexByFolded)
	if err := b.AddPrecedenceEdges(plugingraph.EdgeMasterlistHard, masterlistPairs); err != nil {
		return nil, translateCycleError(err)
	}
	if err := b.AddPrecedenceEdges(plugingraph.EdgeUserlistHard, userlistPairs); err != nil {
		return nil, translateCycleError(err)
	}

	groupPairs, err := h.groupEdgePairs(plugins, indexByFolded)
	if err != nil {
		return nil, err
	}
	if err := b.AddGroupEdges(groupPairs); err != nil {
		return nil, translateCycleError(err)
	}

	overlapPairs, err := h.overlapPairs(plugins)
	if err != nil {
		return nil, err
	}
	if err := b.AddOverlapEdges(overlapPairs); err != nil {
		return nil, translateCycleError(err)
	}

	if err := b.AddTieBreakEdges(); err != nil {
		return nil, translateCycleError(err)
	}

	edges := make([]topsort.Edge, len(b.Edges()))
	for i, e := range b.Edges() {
		edges[i] = topsort.Edge{From: e.From, To: e.To}
	}
	order := topsort.Sort(b.VertexCount(), edges, currentIndex)

	out := make([]PluginFilename, len(order))
	for i, vertex := range order {
		out[i] = plugins[vertex].Filename()
	}
	return out, nil
}

func translateCycleError(err error) error {
	ce, ok := err.(*plugingraph.CycleError)
	if !ok {
		return err
	}
	cycle := make([]CycleVertex, len(ce.Vertices))
	for i, name := range ce.Vertices {
		cycle[i] = CycleVertex{Name: name, EdgeKind: EdgeKind(ce.Kinds[i].String())}
	}
	return &CyclicInteractionError{Cycle: cycle}
}

// precedencePairs resolves masterlist and userlist Requirements/LoadAfter
// entries into vertex-index pairs, evaluating each entry's condition and
// skipping unresolvable (not-loaded) targets (spec.md §4.3 "Condition
// application", §4.5 sources 4/5).
func (h *GameHandle) precedencePairs(plugins []*Plugin, indexByFolded map[string]int) (masterlist, userlist [][2]int) {
	for i, p := range plugins {
		masterEntry, hasMaster := h.metadataStore.GetMasterlistEntry(p.Filename().String())
		userEntry, hasUser := h.metadataStore.GetUserlistEntry(p.Filename().String())

		if hasMaster {
			masterlist = append(masterlist, h.resolveFiles(masterEntry.Requirements, i, indexByFolded)...)
			masterlist = append(masterlist, h.resolveFiles(masterEntry.LoadAfter, i, indexByFolded)...)
		}
		if hasUser {
			userlist = append(userlist, h.resolveFiles(userEntry.Requirements, i, indexByFolded)...)
			userlist = append(userlist, h.resolveFiles(userEntry.LoadAfter, i, indexByFolded)...)
		}
	}
	return masterlist, userlist
}

func (h *GameHandle) resolveFiles(files []metadata.File, targetIdx int, indexByFolded map[string]int) [][2]int {
	var pairs [][2]int
	for _, f := range files {
		idx, ok := indexByFolded[filename.New(f.Name).Folded()]
		if !ok || idx == targetIdx {
			continue
		}
		if f.Condition != "" {
			ok, err := h.EvaluateCondition(f.Condition)
			if err != nil {
				logging.Warnf("condition evaluation error for %q: %v", f.Condition, err)
				continue
			}
			if !ok {
				continue
			}
		}
		pairs = append(pairs, [2]int{idx, targetIdx})
	}
	return pairs
}

// groupEdgePairs derives per-plugin precedence edges from the group graph:
// for every ordered pair of distinct plugins whose assigned groups have a
// path between them, the plugin in the earlier group loads first (spec.md
// §4.4 "Per-plugin precedence derivation").
func (h *GameHandle) groupEdgePairs(plugins []*Plugin, indexByFolded map[string]int) ([][2]int, error) {
	allGroups := h.metadataStore.Groups()
	userGroupEdges := make(map[[2]string]struct{})
	for _, g := range h.metadataStore.UserGroups() {
		for _, after := range g.AfterGroups {
			userGroupEdges[[2]string{g.Name, after}] = struct{}{}
		}
	}
	graph, err := groups.Build(allGroups, func(group, after string) bool {
		_, ok := userGroupEdges[[2]string{group, after}]
		return ok
	})
	if err != nil {
		return nil, translateGroupError(err)
	}

	groupOf := make([]string, len(plugins))
	for i, p := range plugins {
		entry, ok := h.metadataStore.Get(p.Filename().String())
		if ok && entry.HasGroup() {
			groupOf[i] = entry.Group
		} else {
			groupOf[i] = metadata.DefaultGroupName
		}
	}

	var pairs [][2]int
	for i := range plugins {
		for j := range plugins {
			if i == j || groupOf[i] == groupOf[j] {
				continue
			}
			if _, ok := graph.Path(groupOf[i], groupOf[j]); ok {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs, nil
}

func translateGroupError(err error) error {
	switch e := err.(type) {
	case *groups.UndefinedGroupError:
		return &UndefinedGroupError{Group: e.Group}
	case *groups.CycleError:
		cycle := make([]CycleVertex, len(e.Names))
		for i, name := range e.Names {
			kind := EdgeMasterlistHard
			if i < len(e.Provenances) && e.Provenances[i] == groups.Userlist {
				kind = EdgeUserlistHard
			}
			cycle[i] = CycleVertex{Name: name, EdgeKind: kind}
		}
		return &CyclicInteractionError{Cycle: cycle}
	default:
		return err
	}
}

// overlapPairs implements spec.md §4.5 source 7: plugins sharing records or
// declared archive assets are ordered by total count, larger loads later,
// ties left for the tie-break pass.
func (h *GameHandle) overlapPairs(plugins []*Plugin) ([]plugingraph.OverlapPair, error) {
	var pairs []plugingraph.OverlapPair
	for i := 0; i < len(plugins); i++ {
		for j := i + 1; j < len(plugins); j++ {
			p, q := plugins[i], plugins[j]
			if !p.Overlaps(q) && !h.assetsOverlap(p, q) {
				continue
			}
			pRecords, qRecords := len(p.inner.RecordIDs), len(q.inner.RecordIDs)
			if pRecords != qRecords {
				if pRecords < qRecords {
					pairs = append(pairs, plugingraph.OverlapPair{Earlier: i, Later: j})
				} else {
					pairs = append(pairs, plugingraph.OverlapPair{Earlier: j, Later: i})
				}
				continue
			}

			pAssets, err := h.assetIndex.AssetCount(h.assetIndex.ArchivesFor(p.Filename()))
			if err != nil {
				logging.Warnf("asset count failed for %s: %v", p.Filename().String(), err)
				continue
			}
			qAssets, err := h.assetIndex.AssetCount(h.assetIndex.ArchivesFor(q.Filename()))
			if err != nil {
				logging.Warnf("asset count failed for %s: %v", q.Filename().String(), err)
				continue
			}
			if pAssets < qAssets {
				pairs = append(pairs, plugingraph.OverlapPair{Earlier: i, Later: j})
			} else if qAssets < pAssets {
				pairs = append(pairs, plugingraph.OverlapPair{Earlier: j, Later: i})
			}
		}
	}
	return pairs, nil
}

func (h *GameHandle) assetsOverlap(p, q *Plugin) bool {
	pArchives := h.assetIndex.ArchivesFor(p.Filename())
	qArchives := h.assetIndex.ArchivesFor(q.Filename())
	if len(pArchives) == 0 || len(qArchives) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(pArchives))
	for _, a := range pArchives {
		seen[filename.New(a).Folded()] = struct{}{}
	}
	for _, a := range qArchives {
		if _, ok := seen[filename.New(a).Folded()]; ok {
			return true
		}
	}
	return false
}
