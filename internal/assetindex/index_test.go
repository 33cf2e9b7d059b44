package assetindex

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/loot-core/libloot/internal/filename"
	"github.com/loot-core/libloot/internal/gameinfo"
)

func createTestZip(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for entryName, content := range files {
		w, err := zw.Create(entryName)
		if err != nil {
			t.Fatalf("zip create entry %s: %v", entryName, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write entry %s: %v", entryName, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func TestArchivesForStrictMatch(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "MyMod.bsa"), []byte("bsa"), 0o644); err != nil {
		t.Fatal(err)
	}

	rules := gameinfo.RulesFor(gameinfo.Skyrim)
	idx := New([]string{dir}, rules)

	got := idx.ArchivesFor(filename.New("MyMod.esp"))
	if len(got) != 1 {
		t.Fatalf("ArchivesFor() = %v, want 1 match", got)
	}
}

func TestArchivesForPrefixMatch(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"MyMod.bsa", "MyMod - Textures.bsa", "Other.bsa"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("bsa"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	rules := gameinfo.RulesFor(gameinfo.OpenMW)
	rules.ArchiveMatch = gameinfo.ArchiveMatchPrefix
	idx := New([]string{dir}, rules)

	got := idx.ArchivesFor(filename.New("MyMod.esp"))
	if len(got) != 2 {
		t.Fatalf("ArchivesFor() = %v, want 2 matches", got)
	}
}

func TestAssetCountOpaqueArchiveExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "MyMod.bsa")
	if err := os.WriteFile(path, []byte("not a real bsa"), 0o644); err != nil {
		t.Fatal(err)
	}

	rules := gameinfo.RulesFor(gameinfo.Skyrim)
	idx := New([]string{dir}, rules)

	count, err := idx.AssetCount([]string{path})
	if err != nil {
		t.Fatalf("AssetCount() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("AssetCount() = %d, want 1 (opaque container)", count)
	}
}

func TestAssetCountZipContainer(t *testing.T) {
	dir := t.TempDir()
	path := createTestZip(t, dir, "pending.zip", map[string]string{
		"meshes/a.nif":   "a",
		"textures/a.dds": "b",
		"textures/b.dds": "c",
	})

	rules := gameinfo.RulesFor(gameinfo.Skyrim)
	idx := New([]string{dir}, rules)

	count, err := idx.AssetCount([]string{path})
	if err != nil {
		t.Fatalf("AssetCount() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("AssetCount() = %d, want 3", count)
	}

	// Cached path: second call must return the same count without rescanning.
	count2, err := idx.AssetCount([]string{path})
	if err != nil {
		t.Fatalf("AssetCount() second call error = %v", err)
	}
	if count2 != 3 {
		t.Fatalf("AssetCount() cached = %d, want 3", count2)
	}
}
