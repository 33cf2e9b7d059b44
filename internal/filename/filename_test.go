package filename

import "testing"

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{name: "identical", a: "Skyrim.esm", b: "Skyrim.esm", want: true},
		{name: "different case", a: "Skyrim.esm", b: "SKYRIM.ESM", want: true},
		{name: "mixed case", a: "MyMod.esp", b: "mymod.ESP", want: true},
		{name: "different name", a: "Skyrim.esm", b: "Update.esm", want: false},
		{name: "unicode case fold", a: "Ä.esp", b: "ä.esp", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.a).Equal(New(tt.b))
			if got != tt.want {
				t.Errorf("New(%q).Equal(New(%q)) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLess(t *testing.T) {
	a := New("Alpha.esp")
	b := New("beta.esp")
	if !a.Less(b) {
		t.Errorf("expected Alpha.esp < beta.esp")
	}
	if b.Less(a) {
		t.Errorf("expected beta.esp not < Alpha.esp")
	}
}

func TestLessTieBreak(t *testing.T) {
	// Same folded form, different raw spelling: ordering must still be a
	// strict total order (irreflexive, consistent) rather than "equal".
	a := New("Mod.esp")
	b := New("MOD.esp")
	if a.Less(b) == b.Less(a) {
		t.Errorf("Less must not be symmetric for distinct raw spellings")
	}
}

func TestTrimGhostSuffix(t *testing.T) {
	tests := []struct {
		raw         string
		wantTrimmed string
		wantGhosted bool
	}{
		{"Skyrim.esm.ghost", "Skyrim.esm", true},
		{"Skyrim.esm.GHOST", "Skyrim.esm", true},
		{"Skyrim.esm", "Skyrim.esm", false},
		{".ghost", ".ghost", false},
	}
	for _, tt := range tests {
		trimmed, ghosted := TrimGhostSuffix(tt.raw)
		if trimmed != tt.wantTrimmed || ghosted != tt.wantGhosted {
			t.Errorf("TrimGhostSuffix(%q) = (%q, %v), want (%q, %v)", tt.raw, trimmed, ghosted, tt.wantTrimmed, tt.wantGhosted)
		}
	}
}
