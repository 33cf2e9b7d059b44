package pluginfile

// buildMasterIndex maps a record's raw master-index byte (the top byte of
// its FormID, as stored on disk) to its position in this plugin's own
// Masters list. Because the on-disk index only encodes "the Nth master
// listed in the header", the same raw byte means different masters in
// different plugins; normalizeFormID rewrites it into an index stable across
// the whole load order (spec.md §4.1 FormID normalisation).
func buildMasterIndex(masters []Master) map[uint8]uint8 {
	idx := make(map[uint8]uint8, len(masters))
	for i := range masters {
		idx[uint8(i)] = uint8(i)
	}
	return idx
}

// normalizeFormID returns a RecordKey unique across the whole load order:
// the low 24 bits of the FormID (the local object index) are preserved, and
// the high byte (master index) is replaced by the master's absolute
// position once GlobalizeFormID is applied by the caller holding the full
// master ordering. Without that context this returns a plugin-local key,
// which is still sufficient for detecting overlaps within a single
// plugin-pair comparison keyed by master filename elsewhere in the graph
// builder.
func normalizeFormID(formID uint32, masterIndex map[uint8]uint8) uint64 {
	masterByte := uint8(formID >> 24)
	objectIndex := formID & 0x00FFFFFF
	if mapped, ok := masterIndex[masterByte]; ok {
		masterByte = mapped
	}
	return uint64(masterByte)<<24 | uint64(objectIndex)
}

// objectIndexWithinRange reports whether every record the plugin itself
// defines (as opposed to one inherited from a master) has an object index no
// greater than max. Light, medium and update plugins all share the same
// restricted FormID sub-range in the real format, so the same check backs
// validity for all three subtypes (spec.md §4.1 "Validity-as-light").
func (p *Plugin) objectIndexWithinRange(max uint32) bool {
	ownMasterByte := uint8(len(p.Masters))
	for key := range p.RecordIDs {
		if uint8(uint64(key)>>24) != ownMasterByte {
			continue
		}
		if uint32(key)&0x00FFFFFF > max {
			return false
		}
	}
	return true
}

// GlobalizeFormID rewrites a plugin-local RecordKey into one comparable
// across every loaded plugin, given that plugin's Masters list mapped
// against the absolute ordering of every already-loaded master (itself plus
// its masters, recursively). ordinal is masters[i]'s position in the
// absolute load order.
func GlobalizeFormID(key RecordKey, localMasterCount int, ownOrdinal int, masterOrdinals []int) RecordKey {
	masterByte := uint8(key >> 24)
	objectIndex := uint32(key) & 0x00FFFFFF
	if int(masterByte) == localMasterCount {
		// The record belongs to the plugin itself, not one of its masters.
		return RecordKey(uint64(ownOrdinal)<<24 | uint64(objectIndex))
	}
	if int(masterByte) < len(masterOrdinals) {
		return RecordKey(uint64(masterOrdinals[masterByte])<<24 | uint64(objectIndex))
	}
	return key
}
