package pluginfile

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/loot-core/libloot/internal/gameinfo"
)

// buildTES4 assembles a minimal synthetic TES4-dialect plugin body: a TES4
// header record with the given flags and masters, followed by no record
// groups (sufficient for header-only parsing tests).
func buildTES4(t *testing.T, flags uint32, masters []string) []byte {
	t.Helper()
	var body bytes.Buffer

	writeSub := func(sig string, data []byte) {
		body.WriteString(sig)
		var size [2]byte
		binary.LittleEndian.PutUint16(size[:], uint16(len(data)))
		body.Write(size[:])
		body.Write(data)
	}

	hedr := make([]byte, 12)
	binary.LittleEndian.PutUint32(hedr[0:4], 0x3F800000) // 1.0 as float32 bits
	writeSub(sigHEDR, hedr)

	for _, m := range masters {
		writeSub(sigMAST, append([]byte(m), 0))
		dataSub := make([]byte, 8)
		writeSub(sigDATA, dataSub)
	}

	var out bytes.Buffer
	out.WriteString(sigTES4)
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(body.Len()))
	out.Write(sizeBuf[:])
	var flagBuf [4]byte
	binary.LittleEndian.PutUint32(flagBuf[:], flags)
	out.Write(flagBuf[:])
	out.Write(make([]byte, 12)) // formID, timestamp, formVersion, unknown
	out.Write(body.Bytes())
	return out.Bytes()
}

func writeTempPlugin(t *testing.T, name string, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp plugin: %v", err)
	}
	return path
}

func TestReadTES4Header(t *testing.T) {
	tests := []struct {
		name       string
		flags      uint32
		masters    []string
		wantMaster bool
	}{
		{name: "plain esp", flags: 0, masters: nil, wantMaster: false},
		{name: "master flag set", flags: flagMaster, masters: nil, wantMaster: true},
		{name: "light plugin", flags: flagLight, masters: []string{"Skyrim.esm"}, wantMaster: false},
	}

	rules := gameinfo.RulesFor(gameinfo.SkyrimSE)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildTES4(t, tt.flags, tt.masters)
			path := writeTempPlugin(t, "Test.esp", data)

			p, err := Read(path, rules, HeadersOnly, nil)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if p.Flags.IsMaster != tt.wantMaster {
				t.Errorf("IsMaster = %v, want %v", p.Flags.IsMaster, tt.wantMaster)
			}
			if len(p.Masters) != len(tt.masters) {
				t.Fatalf("len(Masters) = %d, want %d", len(p.Masters), len(tt.masters))
			}
			for i, m := range tt.masters {
				if p.Masters[i].Filename.String() != m {
					t.Errorf("Masters[%d] = %q, want %q", i, p.Masters[i].Filename.String(), m)
				}
			}
		})
	}
}

func TestReadTES4RejectsBadSignature(t *testing.T) {
	data := append([]byte("BAD4"), make([]byte, 20)...)
	path := writeTempPlugin(t, "Bad.esp", data)

	_, err := Read(path, gameinfo.RulesFor(gameinfo.SkyrimSE), HeadersOnly, nil)
	if err == nil {
		t.Fatal("expected an error for a non-TES4 signature")
	}
}

func TestGhostedPluginName(t *testing.T) {
	data := buildTES4(t, flagMaster, nil)
	path := writeTempPlugin(t, "Master.esm.ghost", data)

	p, err := Read(path, gameinfo.RulesFor(gameinfo.SkyrimSE), HeadersOnly, nil)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !p.IsGhosted {
		t.Error("expected IsGhosted = true")
	}
	if p.Filename.String() != "Master.esm" {
		t.Errorf("Filename = %q, want %q", p.Filename.String(), "Master.esm")
	}
	if p.OnDiskName != "Master.esm.ghost" {
		t.Errorf("OnDiskName = %q, want %q", p.OnDiskName, "Master.esm.ghost")
	}
}

func TestOpenMWIgnoresMasterFlag(t *testing.T) {
	// OpenMW never honours the TES4-style master flag; MasterFlagMeansIgnored
	// makes applySubtypeFlags force IsMaster false regardless of header bits.
	// This test checks only that OpenMW's rules set that flag; it reads no
	// plugin file.
	rules := gameinfo.RulesFor(gameinfo.OpenMW)
	if !rules.MasterFlagMeansIgnored {
		t.Fatal("expected OpenMW rules to set MasterFlagMeansIgnored")
	}
}
