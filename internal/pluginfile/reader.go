package pluginfile

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/loot-core/libloot/internal/filename"
	"github.com/loot-core/libloot/internal/gameinfo"
)

// LoadMode controls how much of a plugin is parsed.
type LoadMode int

const (
	// HeadersOnly parses just the header and master list: enough to build
	// the plugin graph without touching record data.
	HeadersOnly LoadMode = iota
	// FullLoad additionally parses every record identifier, needed for
	// record-overlap edges (spec.md §4.5 point 7).
	FullLoad
)

// Read parses the plugin at path under the given game rules.
//
// masters is the set of already-loaded plugin filenames, used to resolve the
// FormID master index table for games whose dialect requires masters to be
// loaded before a plugin can be fully parsed (spec.md §3 invariant).
func Read(path string, rules gameinfo.Rules, mode LoadMode, masters []filename.Filename) (*Plugin, error) {
	base := filepath.Base(path)
	displayName, isGhosted := base, false
	if rules.SupportsGhosting {
		displayName, isGhosted = filename.TrimGhostSuffix(base)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &notFoundError{path: path, err: err}
	}
	defer f.Close()

	p := &Plugin{
		Filename:    filename.New(displayName),
		OnDiskName:  base,
		IsGhosted:   isGhosted,
		HeadersOnly: mode == HeadersOnly,
		dialect:     rules.Dialect,
	}

	switch rules.Dialect {
	case gameinfo.DialectTES3:
		if err := readTES3(f, p, mode); err != nil {
			return nil, err
		}
	default:
		if err := readTES4(f, p, mode); err != nil {
			return nil, err
		}
	}

	if mode == FullLoad {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		h := crc32.NewIEEE()
		if _, err := io.Copy(h, f); err != nil {
			return nil, err
		}
		sum := h.Sum32()
		p.CRC32 = &sum
	}

	applySubtypeFlags(p, rules, masters)
	applyArchivePresence(p, rules, path)
	return p, nil
}

// applyArchivePresence sets LoadsArchive from whether an archive file named
// after this plugin exists alongside it on disk (spec.md §4.1: a plugin
// "loads" an archive sharing its base name and the game's archive
// extension).
func applyArchivePresence(p *Plugin, rules gameinfo.Rules, path string) {
	if rules.ArchiveExtension == "" {
		return
	}
	display := p.Filename.String()
	base := strings.TrimSuffix(display, filepath.Ext(display))
	archivePath := filepath.Join(filepath.Dir(path), base+"."+rules.ArchiveExtension)
	if _, err := os.Stat(archivePath); err == nil {
		p.LoadsArchive = true
	}
}

// notFoundError adapts a filesystem error into the taxonomy the root package
// exposes, without the internal packages importing the root package (which
// would create an import cycle).
type notFoundError struct {
	path string
	err  error
}

func (e *notFoundError) Error() string { return fmt.Sprintf("open %s: %v", e.path, e.err) }
func (e *notFoundError) Unwrap() error { return e.err }

// applySubtypeFlags derives IsMedium/IsUpdate/IsBlueprint/validity flags that
// depend on more than the raw header bits: extension overrides, OpenMW's
// blanket non-master rule, and Starfield's medium/update/blueprint subtypes
// (spec.md §3 Plugin flags, §9 blueprint precedence note).
func applySubtypeFlags(p *Plugin, rules gameinfo.Rules, masters []filename.Filename) {
	ext := strings.ToLower(filepath.Ext(p.Filename.String()))

	if rules.MasterFlagMeansIgnored {
		p.Flags.IsMaster = false
	}
	if ext == ".esm" && rules.Dialect == gameinfo.DialectTES4 {
		p.Flags.IsMaster = true
	}
	if !rules.SupportsLightPlugins {
		p.Flags.IsLight = false
	}
	if !rules.SupportsMediumPlugins {
		p.Flags.IsMedium = false
	}
	if !rules.SupportsUpdatePlugins {
		p.Flags.IsUpdate = false
	}
	if !rules.SupportsBlueprintPlugins {
		p.Flags.IsBlueprint = false
	}

	// Blueprint precedence: a plugin flagged both blueprint and master/light
	// is treated purely as a blueprint for subtype purposes (SPEC_FULL §13
	// Open Question decision #2).
	if p.Flags.IsBlueprint {
		p.Flags.IsMaster = false
		p.Flags.IsLight = false
		p.Flags.IsMedium = false
		p.Flags.IsUpdate = false
	}

	p.Flags.IsEmpty = len(p.RecordIDs) == 0 && !p.HeadersOnly

	if !p.HeadersOnly && rules.MaxLightObjectIndex > 0 {
		withinRange := p.objectIndexWithinRange(rules.MaxLightObjectIndex)
		p.Flags.ValidAsLight = rules.SupportsLightPlugins && withinRange
		p.Flags.ValidAsMedium = rules.SupportsMediumPlugins && withinRange
		p.Flags.ValidAsUpdate = rules.SupportsUpdatePlugins && withinRange
	}
}
