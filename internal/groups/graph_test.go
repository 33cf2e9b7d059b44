package groups

import (
	"testing"

	"github.com/loot-core/libloot/internal/metadata"
)

func TestBuildUndefinedGroupError(t *testing.T) {
	all := []metadata.Group{
		{Name: "default"},
		{Name: "g1", AfterGroups: []string{"missing"}},
	}
	_, err := Build(all, nil)
	var undef *UndefinedGroupError
	if err == nil {
		t.Fatal("expected an UndefinedGroupError")
	}
	if e, ok := err.(*UndefinedGroupError); !ok {
		t.Fatalf("error = %T, want *UndefinedGroupError", err)
	} else {
		undef = e
	}
	if undef.Group != "missing" {
		t.Errorf("Group = %q, want %q", undef.Group, "missing")
	}
}

func TestBuildDetectsCycle(t *testing.T) {
	all := []metadata.Group{
		{Name: "default"},
		{Name: "g1", AfterGroups: []string{"g2"}},
		{Name: "g2", AfterGroups: []string{"g1"}},
	}
	_, err := Build(all, nil)
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	if _, ok := err.(*CycleError); !ok {
		t.Fatalf("error = %T, want *CycleError", err)
	}
}

func TestGroupsPathSelf(t *testing.T) {
	all := []metadata.Group{{Name: "default"}}
	g, err := Build(all, nil)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	path, ok := g.Path("default", "default")
	if !ok {
		t.Fatal("expected a path to exist")
	}
	if len(path) != 1 || path[0].Name != "default" {
		t.Errorf("path = %v, want [default]", path)
	}
}

// TestGroupsPathPrefersCheaperUserlistRoute mirrors scenario 7 from spec.md
// §8: default -> g1 (masterlist), default -> g2 (userlist), g2 -> g1
// (userlist). The two-hop userlist route costs 1+1=2, strictly less than
// the direct masterlist hop's cost of 3, so it wins outright.
func TestGroupsPathPrefersCheaperUserlistRoute(t *testing.T) {
	all := []metadata.Group{
		{Name: "default"},
		{Name: "g1", AfterGroups: []string{"default", "g2"}},
		{Name: "g2", AfterGroups: []string{"default"}},
	}
	isUserlist := func(group, after string) bool {
		if group == "g1" && after == "default" {
			return false // masterlist: default -> g1 costs MasterlistWeight
		}
		return true // default -> g2 and g2 -> g1 are both userlist
	}
	g, err := Build(all, isUserlist)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	path, ok := g.Path("default", "g1")
	if !ok {
		t.Fatal("expected a path to exist")
	}
	want := []string{"default", "g2", "g1"}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i, v := range path {
		if v.Name != want[i] {
			t.Errorf("path[%d] = %q, want %q", i, v.Name, want[i])
		}
	}
}
