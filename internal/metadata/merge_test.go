package metadata

import "testing"

func TestMergeGroupPrefersUserlist(t *testing.T) {
	m := Entry{PluginName: "Foo.esp", Group: "early"}
	u := Entry{PluginName: "Foo.esp", Group: "late"}
	got := Merge(m, u)
	if got.Group != "late" {
		t.Errorf("Group = %q, want %q", got.Group, "late")
	}
}

func TestMergeGroupFallsBackToMasterlist(t *testing.T) {
	m := Entry{PluginName: "Foo.esp", Group: "early"}
	u := Entry{PluginName: "Foo.esp"}
	got := Merge(m, u)
	if got.Group != "early" {
		t.Errorf("Group = %q, want %q", got.Group, "early")
	}
}

func TestMergeFilesDeduplicated(t *testing.T) {
	m := Entry{LoadAfter: []File{{Name: "A.esp", Display: "A.esp"}}}
	u := Entry{LoadAfter: []File{{Name: "A.esp", Display: "A.esp"}, {Name: "B.esp", Display: "B.esp"}}}
	got := Merge(m, u)
	if len(got.LoadAfter) != 2 {
		t.Fatalf("len(LoadAfter) = %d, want 2", len(got.LoadAfter))
	}
}

func TestMergeMessagesMasterlistFirst(t *testing.T) {
	m := Entry{Messages: []Message{{Type: MessageWarn, Content: []MessageContent{{Language: "en", Text: "m"}}}}}
	u := Entry{Messages: []Message{{Type: MessageSay, Content: []MessageContent{{Language: "en", Text: "u"}}}}}
	got := Merge(m, u)
	if len(got.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(got.Messages))
	}
	if got.Messages[0].Content[0].Text != "m" || got.Messages[1].Content[0].Text != "u" {
		t.Error("expected masterlist messages before userlist messages")
	}
}

func TestMergeCleaningDataKeyedByCRCAndUtility(t *testing.T) {
	m := Entry{Dirty: []PluginCleaningData{{CRC: 1, Utility: "TES5Edit"}}}
	u := Entry{Dirty: []PluginCleaningData{{CRC: 1, Utility: "TES5Edit"}, {CRC: 2, Utility: "TES5Edit"}}}
	got := Merge(m, u)
	if len(got.Dirty) != 2 {
		t.Fatalf("len(Dirty) = %d, want 2", len(got.Dirty))
	}
}
