package pluginfile

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/loot-core/libloot/internal/gameinfo"
)

func buildTES3(t *testing.T, masters []string) []byte {
	t.Helper()
	var body bytes.Buffer

	writeSub := func(sig string, data []byte) {
		body.WriteString(sig)
		var size [4]byte
		binary.LittleEndian.PutUint32(size[:], uint32(len(data)))
		body.Write(size[:])
		body.Write(data)
	}

	hedr := make([]byte, 300)
	binary.LittleEndian.PutUint32(hedr[0:4], 0x3F800000)
	writeSub(sigHEDR3, hedr)
	for _, m := range masters {
		writeSub(sigMAST3, append([]byte(m), 0))
		writeSub(sigDATA3, make([]byte, 8))
	}

	var out bytes.Buffer
	out.WriteString(sigTES3)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(body.Len()))
	out.Write(size[:])
	out.Write(make([]byte, 8)) // flags word + padding to fill 16-byte header
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestReadTES3Masters(t *testing.T) {
	data := buildTES3(t, []string{"Morrowind.esm", "Tribunal.esm"})
	path := writeTempPlugin(t, "Plugin.esp", data)

	p, err := Read(path, gameinfo.RulesFor(gameinfo.Morrowind), HeadersOnly, nil)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(p.Masters) != 2 {
		t.Fatalf("len(Masters) = %d, want 2", len(p.Masters))
	}
	if p.Masters[0].Filename.String() != "Morrowind.esm" {
		t.Errorf("Masters[0] = %q", p.Masters[0].Filename.String())
	}
	if p.Masters[1].Filename.String() != "Tribunal.esm" {
		t.Errorf("Masters[1] = %q", p.Masters[1].Filename.String())
	}
}

func TestTES3RecordKeyDeterministic(t *testing.T) {
	a := tes3RecordKey("NPC_", "player")
	b := tes3RecordKey("NPC_", "player")
	c := tes3RecordKey("NPC_", "guard")
	if a != b {
		t.Error("expected identical (signature, id) pairs to hash equal")
	}
	if a == c {
		t.Error("expected different ids to hash differently")
	}
}
