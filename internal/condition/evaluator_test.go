package condition

import (
	"os"
	"path/filepath"
	"testing"
)

type fakeEnv struct {
	dataPaths []string
	active    map[string]bool
	masters   map[string]bool
	versions  map[string]string
	crcs      map[string]uint32
}

func (f *fakeEnv) DataPaths() []string { return f.dataPaths }
func (f *fakeEnv) IsActive(name string) bool { return f.active[name] }
func (f *fakeEnv) IsMaster(name string) (bool, bool) {
	v, ok := f.masters[name]
	return v, ok
}
func (f *fakeEnv) PluginVersion(name string) (string, bool) {
	v, ok := f.versions[name]
	return v, ok
}
func (f *fakeEnv) PluginCRC(name string) (uint32, bool, error) {
	v, ok := f.crcs[name]
	return v, ok, nil
}

func TestEvaluateFileAndActive(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Foo.esp"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	env := &fakeEnv{dataPaths: []string{dir}, active: map[string]bool{"Bar.esp": true}}

	node, err := Parse(`file("Foo.esp") and active("Bar.esp")`)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	got, err := Evaluate(node, env)
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if !got {
		t.Error("expected true")
	}

	node2, _ := Parse(`file("Missing.esp")`)
	got2, err := Evaluate(node2, env)
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if got2 {
		t.Error("expected false for a missing file")
	}
}

func TestEvaluateNot(t *testing.T) {
	env := &fakeEnv{active: map[string]bool{}}
	node, _ := Parse(`not active("Foo.esp")`)
	got, err := Evaluate(node, env)
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if !got {
		t.Error("expected true (plugin is not active)")
	}
}

func TestEvaluateVersion(t *testing.T) {
	env := &fakeEnv{versions: map[string]string{"Foo.esp": "1.5.0"}}
	tests := []struct {
		expr string
		want bool
	}{
		{`version("Foo.esp", "1.4", >)`, true},
		{`version("Foo.esp", "1.5.0", ==)`, true},
		{`version("Foo.esp", "2.0", >=)`, false},
		{`version("Foo.esp", "2.0", <)`, true},
	}
	for _, tt := range tests {
		node, err := Parse(tt.expr)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.expr, err)
		}
		got, err := Evaluate(node, env)
		if err != nil {
			t.Fatalf("Evaluate(%q) error = %v", tt.expr, err)
		}
		if got != tt.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestEvaluateChecksum(t *testing.T) {
	env := &fakeEnv{crcs: map[string]uint32{"Foo.esp": 0xDEADBEEF}}
	node, err := Parse(`checksum("Foo.esp", 0xDEADBEEF)`)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	got, err := Evaluate(node, env)
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if !got {
		t.Error("expected matching checksum to be true")
	}
}

func TestCacheMissAfterFingerprintChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.esp")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	env := &fakeEnv{dataPaths: []string{dir}}
	node, _ := Parse(`file("Foo.esp")`)

	c, err := New(16)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	got1, err := c.Evaluate(`file("Foo.esp")`, node, env, []string{path})
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if !got1 {
		t.Fatal("expected true")
	}

	// Remove the file without clearing the cache: the fingerprint of the
	// touched path changes, so the earlier cached result is not reused and
	// the condition is evaluated again.
	os.Remove(path)
	got2, err := c.Evaluate(`file("Foo.esp")`, node, env, []string{path})
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if got2 {
		t.Error("expected false once the file backing the fingerprint is removed")
	}
}
