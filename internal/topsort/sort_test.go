package topsort

import "testing"

func TestSortNoConstraintsPreservesOrder(t *testing.T) {
	currentIndex := []int{0, 1, 2, 3}
	got := Sort(4, nil, currentIndex)
	want := []int{0, 1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order = %v, want %v", got, want)
			break
		}
	}
}

func TestSortRespectsEdges(t *testing.T) {
	// 2 must load after 0: edge 0 -> 2.
	currentIndex := []int{0, 1, 2}
	edges := []Edge{{From: 0, To: 2}}
	got := Sort(3, edges, currentIndex)
	pos := make(map[int]int, len(got))
	for i, v := range got {
		pos[v] = i
	}
	if pos[0] >= pos[2] {
		t.Errorf("expected vertex 0 before vertex 2, got order %v", got)
	}
}

func TestSortPrefersLowerCurrentIndexAmongReady(t *testing.T) {
	// No edges: every vertex is ready simultaneously. Even though vertex 0
	// has the lowest id, currentIndex says vertex 2 should come first.
	currentIndex := []int{5, 10, 1}
	got := Sort(3, nil, currentIndex)
	if got[0] != 2 {
		t.Errorf("got[0] = %d, want 2 (lowest currentIndex)", got[0])
	}
}

func TestSortPanicsOnCycle(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a cyclic graph")
		}
	}()
	edges := []Edge{{From: 0, To: 1}, {From: 1, To: 0}}
	Sort(2, edges, []int{0, 1})
}
