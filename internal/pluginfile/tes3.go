package pluginfile

import (
	"bytes"
	"encoding/binary"
	"hash/fnv"
	"io"

	"github.com/loot-core/libloot/internal/filename"
)

// TES3-dialect constants (Morrowind/OpenMW): the record header carries a
// 4-byte subrecord size field rather than TES4's 2-byte field, and records
// are identified by a NAME subrecord string rather than a FormID.
const (
	sigTES3 = "TES3"
	sigHEDR3 = "HEDR"
	sigMAST3 = "MAST"
	sigDATA3 = "DATA"
	sigNAME3 = "NAME"
)

type tes3RecordHeader struct {
	signature string
	dataSize  uint32
}

func readTES3RecordHeader(r io.Reader) (*tes3RecordHeader, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &PluginParseError{Message: "truncated TES3 record header"}
	}
	return &tes3RecordHeader{
		signature: string(buf[0:4]),
		dataSize:  binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

// readTES3 parses a Morrowind/OpenMW-dialect plugin: a TES3 header record
// (whose body holds HEDR plus MAST/DATA master pairs) followed by a flat
// stream of records with no nested groups. Overlap keys are derived from
// (record signature, NAME identifier) since there is no FormID.
func readTES3(r io.Reader, p *Plugin, mode LoadMode) error {
	header, err := readTES3RecordHeader(r)
	if err != nil {
		return err
	}
	if header.signature != sigTES3 {
		return &PluginParseError{Path: p.OnDiskName, Message: "expected TES3 header record"}
	}
	body := make([]byte, header.dataSize)
	if _, err := io.ReadFull(r, body); err != nil {
		return &PluginParseError{Path: p.OnDiskName, Message: "truncated TES3 header body"}
	}
	if err := parseTES3Subrecords(body, p); err != nil {
		return err
	}
	// Every TES3-dialect plugin is treated as a master candidate purely by
	// flag; OpenMW ignores the distinction entirely (applySubtypeFlags
	// clears it for that game), while Morrowind honours the header flag
	// parsed above if present in a future subrecord addition. No flag bit is
	// currently modelled beyond masters/description, matching the format's
	// own sparse header.

	if mode != FullLoad {
		return nil
	}
	p.RecordIDs = make(map[RecordKey]struct{})
	for {
		h, err := readTES3RecordHeader(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		recBody := make([]byte, h.dataSize)
		if _, err := io.ReadFull(r, recBody); err != nil {
			break
		}
		id := findNameSubrecord(recBody)
		p.RecordIDs[tes3RecordKey(h.signature, id)] = struct{}{}
	}
	return nil
}

func parseTES3Subrecords(data []byte, p *Plugin) error {
	r := bytes.NewReader(data)
	var pendingMaster string
	for r.Len() > 0 {
		var sh [8]byte
		if _, err := io.ReadFull(r, sh[:]); err != nil {
			if err == io.EOF {
				break
			}
			return &PluginParseError{Path: p.OnDiskName, Message: "truncated TES3 subrecord header"}
		}
		subType := string(sh[0:4])
		subSize := binary.LittleEndian.Uint32(sh[4:8])
		subData := make([]byte, subSize)
		if _, err := io.ReadFull(r, subData); err != nil {
			return &PluginParseError{Path: p.OnDiskName, Message: "truncated TES3 subrecord body"}
		}
		switch subType {
		case sigHEDR3:
			if len(subData) >= 4 {
				v := float32FromLE(subData[0:4])
				p.HeaderVersion = &v
			}
		case sigMAST3:
			pendingMaster = readNullString(subData)
		case sigDATA3:
			if pendingMaster != "" {
				p.Masters = append(p.Masters, Master{Filename: filename.New(pendingMaster)})
				pendingMaster = ""
			}
		}
	}
	return nil
}

// findNameSubrecord scans a TES3 record body for its first NAME subrecord,
// used as the record's stable identifier for overlap detection.
func findNameSubrecord(data []byte) string {
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		var sh [8]byte
		if _, err := io.ReadFull(r, sh[:]); err != nil {
			return ""
		}
		subType := string(sh[0:4])
		subSize := binary.LittleEndian.Uint32(sh[4:8])
		subData := make([]byte, subSize)
		if _, err := io.ReadFull(r, subData); err != nil {
			return ""
		}
		if subType == sigNAME3 {
			return readNullString(subData)
		}
	}
	return ""
}

// tes3RecordKey hashes (signature, id) into a RecordKey, since the TES3
// dialect has no numeric FormID to use directly.
func tes3RecordKey(signature, id string) RecordKey {
	h := fnv.New64a()
	h.Write([]byte(signature))
	h.Write([]byte{0})
	h.Write([]byte(id))
	return RecordKey(h.Sum64())
}
