package loot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/loot-core/libloot/internal/condition"
	"github.com/loot-core/libloot/internal/metadata"
)

func newTestHandle(t *testing.T) *GameHandle {
	t.Helper()
	conditionCache, err := condition.New(64)
	if err != nil {
		t.Fatalf("condition.New: %v", err)
	}
	return &GameHandle{
		rules:          RulesForGame(SkyrimSE),
		conditionCache: conditionCache,
		metadataStore:  metadata.New(),
		loadedPlugins:  make(map[string]*Plugin),
	}
}

func TestDatabaseLoadListsAndGetPluginMetadata(t *testing.T) {
	h := newTestHandle(t)
	db := h.GetDatabase()

	db.LoadLists(
		[]MetadataEntry{{PluginName: "Test.esp", Group: "patches"}},
		[]Group{{Name: "patches", AfterGroups: []string{DefaultGroupName}}},
		nil, []string{"Delev"},
		nil, nil,
	)

	entry, ok, err := db.GetPluginMetadata("Test.esp", false)
	if err != nil {
		t.Fatalf("GetPluginMetadata: %v", err)
	}
	if !ok {
		t.Fatal("expected entry to be found")
	}
	if entry.Group != "patches" {
		t.Fatalf("Group = %q, want patches", entry.Group)
	}

	if got := db.GetKnownBashTags(); len(got) != 1 || got[0] != "Delev" {
		t.Fatalf("GetKnownBashTags = %v", got)
	}
}

func TestDatabaseSetAndDiscardPluginUserMetadata(t *testing.T) {
	h := newTestHandle(t)
	db := h.GetDatabase()

	db.SetPluginUserMetadata(MetadataEntry{PluginName: "Test.esp", BashTags: []Tag{{Name: "Relev", IsAddition: true}}})

	entry, ok := db.GetPluginUserMetadata("Test.esp")
	if !ok {
		t.Fatal("expected userlist entry to be found")
	}
	if len(entry.BashTags) != 1 || entry.BashTags[0].Name != "Relev" {
		t.Fatalf("BashTags = %v", entry.BashTags)
	}

	db.DiscardPluginUserMetadata("Test.esp")
	if _, ok := db.GetPluginUserMetadata("Test.esp"); ok {
		t.Fatal("expected userlist entry to be discarded")
	}
}

func TestDatabaseDiscardAllUserMetadata(t *testing.T) {
	h := newTestHandle(t)
	db := h.GetDatabase()

	db.SetPluginUserMetadata(MetadataEntry{PluginName: "A.esp"})
	db.SetUserGroups([]Group{{Name: "custom"}})

	db.DiscardAllUserMetadata()

	if _, ok := db.GetPluginUserMetadata("A.esp"); ok {
		t.Fatal("expected userlist entries to be cleared")
	}
	if len(db.GetUserGroups()) != 0 {
		t.Fatal("expected userlist groups to be cleared")
	}
}

func TestDatabaseGetGroupsPathFollowsMasterlistEdge(t *testing.T) {
	h := newTestHandle(t)
	db := h.GetDatabase()

	db.LoadLists(nil, []Group{
		{Name: "early"},
		{Name: "late", AfterGroups: []string{"early"}},
	}, nil, nil, nil, nil)

	path, err := db.GetGroupsPath("early", "late")
	if err != nil {
		t.Fatalf("GetGroupsPath: %v", err)
	}
	if len(path) != 2 || path[0].Name != "early" || path[1].Name != "late" {
		t.Fatalf("path = %v", path)
	}
}

func TestDatabaseGetGroupsPathNoRoute(t *testing.T) {
	h := newTestHandle(t)
	db := h.GetDatabase()

	db.LoadLists(nil, []Group{{Name: "isolated"}}, nil, nil, nil, nil)

	path, err := db.GetGroupsPath("isolated", DefaultGroupName)
	if err != nil {
		t.Fatalf("GetGroupsPath: %v", err)
	}
	if path != nil {
		t.Fatalf("path = %v, want nil", path)
	}
}

func TestDatabaseWriteUserMetadataRespectsOverwrite(t *testing.T) {
	h := newTestHandle(t)
	db := h.GetDatabase()
	db.SetPluginUserMetadata(MetadataEntry{PluginName: "Test.esp"})

	path := filepath.Join(t.TempDir(), "userlist.json")
	if err := db.WriteUserMetadata(path, false); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := db.WriteUserMetadata(path, false); err == nil {
		t.Fatal("expected FileAccessError on second write without overwrite")
	}
	if err := db.WriteUserMetadata(path, true); err != nil {
		t.Fatalf("write with overwrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty userlist file")
	}
}

func TestDatabaseWriteMinimalListOnlyIncludesCleaningData(t *testing.T) {
	h := newTestHandle(t)
	db := h.GetDatabase()
	db.SetPluginUserMetadata(MetadataEntry{PluginName: "NoCleaning.esp"})
	db.SetPluginUserMetadata(MetadataEntry{
		PluginName: "Dirty.esp",
		Dirty:      []PluginCleaningData{{CRC: 1, ITMCount: 2, Utility: "TES5Edit"}},
	})

	path := filepath.Join(t.TempDir(), "minimal.json")
	if err := db.WriteMinimalList(path, false); err != nil {
		t.Fatalf("WriteMinimalList: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var decoded serializedList
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.Entries) != 1 || decoded.Entries[0].PluginName != "Dirty.esp" {
		t.Fatalf("Entries = %v, want only Dirty.esp", decoded.Entries)
	}
}

func TestDatabaseGetGeneralMessagesFiltersFalseConditions(t *testing.T) {
	h := newTestHandle(t)
	db := h.GetDatabase()

	db.LoadLists(nil, nil, []Message{
		{Type: MessageSay, Content: []MessageContent{{Language: "en", Text: "always"}}},
		{Type: MessageWarn, Content: []MessageContent{{Language: "en", Text: "never"}}, Condition: `file("DoesNotExist.esp")`},
	}, nil, nil, nil)

	msgs, err := db.GetGeneralMessages(true)
	if err != nil {
		t.Fatalf("GetGeneralMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content[0].Text != "always" {
		t.Fatalf("msgs = %v", msgs)
	}
}
