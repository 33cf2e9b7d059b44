package plugingraph

import "testing"

func TestAddHardEdgesMastersBeforeNonMasters(t *testing.T) {
	plugins := []PluginInfo{
		{Name: "Master.esm", IsMaster: true, CurrentIndex: 0},
		{Name: "Plugin.esp", IsMaster: false, CurrentIndex: 1},
	}
	b := NewBuilder(plugins)
	if err := b.AddHardEdges(); err != nil {
		t.Fatalf("AddHardEdges error = %v", err)
	}
	edges := b.Edges()
	if len(edges) != 1 || edges[0].From != 0 || edges[0].To != 1 {
		t.Errorf("edges = %v, want a single Master(0) -> Plugin(1) edge", edges)
	}
}

func TestAddHardEdgesBlueprintLoadsLast(t *testing.T) {
	plugins := []PluginInfo{
		{Name: "Normal.esp", CurrentIndex: 0},
		{Name: "Blueprint.esp", IsBlueprint: true, CurrentIndex: 1},
	}
	b := NewBuilder(plugins)
	if err := b.AddHardEdges(); err != nil {
		t.Fatalf("AddHardEdges error = %v", err)
	}
	edges := b.Edges()
	if len(edges) != 1 || edges[0].From != 0 || edges[0].To != 1 {
		t.Errorf("edges = %v, want Normal(0) -> Blueprint(1)", edges)
	}
}

func TestMasterDependencyEdge(t *testing.T) {
	plugins := []PluginInfo{
		{Name: "Master.esm", IsMaster: true, CurrentIndex: 0},
		{Name: "Plugin.esp", MasterIdxs: []int{0}, CurrentIndex: 1},
	}
	b := NewBuilder(plugins)
	if err := b.AddMasterDependencyEdges(); err != nil {
		t.Fatalf("AddMasterDependencyEdges error = %v", err)
	}
	edges := b.Edges()
	if len(edges) != 1 || edges[0].From != 0 || edges[0].To != 1 {
		t.Errorf("edges = %v, want Master(0) -> Plugin(1)", edges)
	}
}

func TestHardcodedEdgesForceOrder(t *testing.T) {
	plugins := []PluginInfo{
		{Name: "Update.esm", CurrentIndex: 1},
		{Name: "Skyrim.esm", CurrentIndex: 0},
		{Name: "Other.esp", CurrentIndex: 2},
	}
	b := NewBuilder(plugins)
	byName := map[string]int{"Skyrim.esm": 1, "Update.esm": 0}
	if err := b.AddHardcodedEdges([]string{"Skyrim.esm", "Update.esm"}, byName); err != nil {
		t.Fatalf("AddHardcodedEdges error = %v", err)
	}
	var foundChain, foundOther bool
	for _, e := range b.Edges() {
		if e.From == 1 && e.To == 0 {
			foundChain = true
		}
		if (e.From == 1 || e.From == 0) && e.To == 2 {
			foundOther = true
		}
	}
	if !foundChain {
		t.Error("expected Skyrim.esm -> Update.esm hardcoded edge")
	}
	if !foundOther {
		t.Error("expected a hardcoded plugin to precede the non-hardcoded plugin")
	}
}

func TestFatalCycleAmongHardEdges(t *testing.T) {
	// Two plugins, each declaring the other as an installed master: an
	// impossible, fatal configuration for the master-dependency pass alone.
	plugins := []PluginInfo{
		{Name: "A.esm", MasterIdxs: []int{1}, CurrentIndex: 0},
		{Name: "B.esm", MasterIdxs: []int{0}, CurrentIndex: 1},
	}
	b := NewBuilder(plugins)
	err := b.AddMasterDependencyEdges()
	if err == nil {
		t.Fatal("expected a fatal cycle error")
	}
	if _, ok := err.(*CycleError); !ok {
		t.Fatalf("error = %T, want *CycleError", err)
	}
}

func TestOverlapCycleDropsOverlapEdge(t *testing.T) {
	// A masterlist precedence edge fixes A before B; an overlap edge going
	// the other way would close a cycle, and since overlap is the weaker
	// kind, the overlap edge is the one dropped to keep the graph acyclic.
	plugins := []PluginInfo{
		{Name: "A.esp", CurrentIndex: 0},
		{Name: "B.esp", CurrentIndex: 1},
	}
	b := NewBuilder(plugins)
	// Force A -> B via a masterlist precedence edge (stronger than overlap).
	if err := b.AddPrecedenceEdges(EdgeMasterlistHard, [][2]int{{0, 1}}); err != nil {
		t.Fatalf("AddPrecedenceEdges error = %v", err)
	}
	// Overlap analysis (incorrectly, for the test) suggests B before A.
	if err := b.AddOverlapEdges([]OverlapPair{{Earlier: 1, Later: 0}}); err != nil {
		t.Fatalf("AddOverlapEdges error = %v", err)
	}
	for _, e := range b.Edges() {
		if e.Kind == EdgeOverlap {
			t.Errorf("expected the conflicting overlap edge to have been dropped, found %v", e)
		}
	}
}
