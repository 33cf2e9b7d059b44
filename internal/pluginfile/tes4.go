package pluginfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/loot-core/libloot/internal/filename"
)

// Signatures recognised in the TES4-descendant dialect (Oblivion onward),
// grounded on the teacher's internal/plugin/types.go constant block.
const (
	sigTES4 = "TES4"
	sigHEDR = "HEDR"
	sigCNAM = "CNAM"
	sigSNAM = "SNAM"
	sigMAST = "MAST"
	sigDATA = "DATA"
	sigONAM = "ONAM"
	sigINTV = "INTV"
	sigTAG  = "TNAM" // Starfield group-level BashTags-equivalent analogue unused; reserved.
)

const (
	flagMaster    uint32 = 0x00000001
	flagLocalized uint32 = 0x00000080
	flagLight     uint32 = 0x00000200
	flagMedium    uint32 = 0x00000400
	flagBlueprint uint32 = 0x00000800
	flagUpdate    uint32 = 0x00000200 // Starfield reuses the light bit position for "update" on non-ESL-capable builds; distinguished by rules.SupportsUpdatePlugins at the call site.
)

type tes4RecordHeader struct {
	signature string
	dataSize  uint32
	flags     uint32
	formID    uint32
}

func readTES4RecordHeader(r io.Reader) (*tes4RecordHeader, error) {
	var buf [24]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &PluginParseError{Message: fmt.Sprintf("truncated record header: %v", err)}
	}
	sig := string(buf[0:4])
	for _, c := range sig {
		if c < 32 || c > 126 {
			return nil, &PluginParseError{Message: "invalid record signature bytes"}
		}
	}
	return &tes4RecordHeader{
		signature: sig,
		dataSize:  binary.LittleEndian.Uint32(buf[4:8]),
		flags:     binary.LittleEndian.Uint32(buf[8:12]),
		formID:    binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

// readTES4 parses the TES4 header record and, in FullLoad mode, every
// subsequent top-level group's contained records for overlap keys. It is
// grounded on the teacher's Parser.Parse/parseSubrecords (internal/plugin
// /parser.go), generalised to also read group bodies rather than stopping
// after the header.
func readTES4(r io.Reader, p *Plugin, mode LoadMode) error {
	header, err := readTES4RecordHeader(r)
	if err != nil {
		return err
	}
	if header.signature != sigTES4 {
		return &PluginParseError{Path: p.OnDiskName, Message: fmt.Sprintf("expected TES4, got %s", header.signature)}
	}

	p.Flags.IsMaster = header.flags&flagMaster != 0
	p.Flags.IsLight = header.flags&flagLight != 0
	p.Flags.IsMedium = header.flags&flagMedium != 0
	p.Flags.IsBlueprint = header.flags&flagBlueprint != 0
	p.Flags.IsUpdate = header.flags&flagUpdate != 0

	recordData := make([]byte, header.dataSize)
	if _, err := io.ReadFull(r, recordData); err != nil {
		return &PluginParseError{Path: p.OnDiskName, Message: "truncated TES4 record body"}
	}
	if err := parseTES4Subrecords(recordData, p); err != nil {
		return err
	}

	if mode != FullLoad {
		return nil
	}

	p.RecordIDs = make(map[RecordKey]struct{})
	masterIndex := buildMasterIndex(p.Masters)
	for {
		h, err := readTES4RecordHeader(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		size := h.dataSize
		if h.signature == "GRUP" {
			if size < 24 {
				return &PluginParseError{Path: p.OnDiskName, Message: "invalid GRUP size"}
			}
			size -= 24
		}
		body := make([]byte, size)
		if _, err := io.ReadFull(r, body); err != nil {
			break
		}
		if h.signature == "GRUP" {
			// A GRUP header's "dataSize" already counts its own 24 bytes, and
			// group bodies are simply a nested stream of records (and nested
			// GRUPs); re-parse the body as a sub-stream.
			if err := collectRecordIDs(bytes.NewReader(body), p, masterIndex); err != nil {
				return err
			}
			continue
		}
		key := normalizeFormID(h.formID, masterIndex)
		p.RecordIDs[RecordKey(key)] = struct{}{}
	}
	return nil
}

// collectRecordIDs walks a GRUP body (which is simply concatenated records
// and nested GRUPs minus the 24-byte GRUP header already consumed by the
// caller) and records every FormID encountered.
func collectRecordIDs(r io.Reader, p *Plugin, masterIndex map[uint8]uint8) error {
	for {
		h, err := readTES4RecordHeader(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		size := h.dataSize
		if h.signature == "GRUP" {
			if size < 24 {
				return &PluginParseError{Path: p.OnDiskName, Message: "invalid GRUP size"}
			}
			size -= 24
		}
		body := make([]byte, size)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil
		}
		if h.signature == "GRUP" {
			if err := collectRecordIDs(bytes.NewReader(body), p, masterIndex); err != nil {
				return err
			}
			continue
		}
		key := normalizeFormID(h.formID, masterIndex)
		p.RecordIDs[RecordKey(key)] = struct{}{}
	}
}

func parseTES4Subrecords(data []byte, p *Plugin) error {
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		var sh [6]byte
		if _, err := io.ReadFull(r, sh[:]); err != nil {
			if err == io.EOF {
				break
			}
			return &PluginParseError{Path: p.OnDiskName, Message: "truncated subrecord header"}
		}
		subType := string(sh[0:4])
		subSize := binary.LittleEndian.Uint16(sh[4:6])
		subData := make([]byte, subSize)
		if _, err := io.ReadFull(r, subData); err != nil {
			return &PluginParseError{Path: p.OnDiskName, Message: fmt.Sprintf("truncated %s subrecord", subType)}
		}

		switch subType {
		case sigHEDR:
			if len(subData) >= 4 {
				v := float32FromLE(subData[0:4])
				p.HeaderVersion = &v
			}
		case sigSNAM:
			description := readNullString(subData)
			p.DescriptionVersion = extractVersion(description)
			p.BashTags = extractBashTags(description)
		case sigMAST:
			name := readNullString(subData)
			if name != "" {
				p.Masters = append(p.Masters, Master{Filename: filename.New(name)})
			}
		case sigDATA:
			// Paired with the preceding MAST; the 8-byte master size is not
			// needed for ordering and is intentionally discarded.
		}
	}
	return nil
}

func readNullString(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}

func float32FromLE(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
