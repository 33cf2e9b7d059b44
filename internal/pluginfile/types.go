// Package pluginfile implements the plugin binary reader (spec.md §4.1,
// component C1): parsing enough of a Bethesda-style plugin file to expose
// its header, declared masters, record identifiers and flags.
package pluginfile

import (
	"github.com/loot-core/libloot/internal/filename"
	"github.com/loot-core/libloot/internal/gameinfo"
)

// Master is a single declared master-file dependency, in the order it
// appears in the plugin's header.
type Master struct {
	Filename filename.Filename
}

// Flags holds every boolean subtype flag derived from the header (spec.md
// §3 Plugin flags, §4.1 flag derivation, §9 blueprint precedence note).
type Flags struct {
	IsMaster    bool
	IsLight     bool
	IsMedium    bool
	IsUpdate    bool
	IsBlueprint bool
	IsEmpty     bool

	// ValidAsLight/ValidAsMedium/ValidAsUpdate record whether every FormID in
	// the plugin falls within the object-index sub-range required for that
	// subtype, independent of whether the corresponding flag bit is set.
	ValidAsLight  bool
	ValidAsMedium bool
	ValidAsUpdate bool
}

// RecordKey identifies a single record for overlap detection: a normalised
// FormID for TES4-dialect games, or a synthetic hash of (record type,
// identifier) for the TES3 dialect (spec.md §4.1 "Record overlap").
type RecordKey uint64

// Plugin is the parsed artifact of loading one plugin file (spec.md §3).
type Plugin struct {
	Filename filename.Filename

	// OnDiskName is the literal path used for I/O; it differs from Filename
	// when the plugin is ghosted (spec.md §4.1).
	OnDiskName string
	IsGhosted  bool

	HeaderVersion      *float32
	DescriptionVersion string

	Masters      []Master
	BashTags     []string
	CRC32        *uint32
	Flags        Flags
	RecordIDs    map[RecordKey]struct{}
	LoadsArchive bool

	// HeadersOnly is true if only the header and master list were parsed;
	// RecordIDs is empty and CRC32 is nil in that case.
	HeadersOnly bool

	// Active reflects the external load-order collaborator's view of
	// whether this plugin is currently active; it is not derived from the
	// file itself.
	Active bool

	dialect gameinfo.Dialect
}

// IsMaster reports whether this plugin counts as a master for load-order
// purposes (the header flag, extension-based override, or an OpenMW game's
// blanket "no plugin is ever a master" rule have already been folded into
// Flags.IsMaster by the reader).
func (p *Plugin) IsMaster() bool { return p.Flags.IsMaster }

// Overlaps reports whether p and other share at least one record
// identifier (spec.md §4.1 "Record overlap").
func (p *Plugin) Overlaps(other *Plugin) bool {
	small, big := p.RecordIDs, other.RecordIDs
	if len(big) < len(small) {
		small, big = big, small
	}
	for k := range small {
		if _, ok := big[k]; ok {
			return true
		}
	}
	return false
}

// OverlapCount returns the number of records shared between p and other.
func (p *Plugin) OverlapCount(other *Plugin) int {
	small, big := p.RecordIDs, other.RecordIDs
	if len(big) < len(small) {
		small, big = big, small
	}
	count := 0
	for k := range small {
		if _, ok := big[k]; ok {
			count++
		}
	}
	return count
}
