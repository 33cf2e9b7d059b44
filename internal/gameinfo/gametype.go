// Package gameinfo defines the closed set of supported games and the
// per-game behavioural quirks ("rules") that the rest of the sorting core
// consults instead of scattering game-specific conditionals throughout.
package gameinfo

import "strings"

// GameType identifies one of the supported moddable games. The set is
// closed: format quirks, master-file policy and archive handling are all
// derived from it via Rules.
type GameType int

const (
	Morrowind GameType = iota
	Oblivion
	Skyrim
	SkyrimSE
	SkyrimVR
	Fallout3
	FalloutNV
	Fallout4
	Fallout4VR
	Starfield
	OpenMW
	OblivionRemastered
)

// String returns a human-readable name for the game type, used in log
// messages and error text.
func (g GameType) String() string {
	switch g {
	case Morrowind:
		return "Morrowind"
	case Oblivion:
		return "Oblivion"
	case Skyrim:
		return "Skyrim"
	case SkyrimSE:
		return "Skyrim Special Edition"
	case SkyrimVR:
		return "Skyrim VR"
	case Fallout3:
		return "Fallout 3"
	case FalloutNV:
		return "Fallout New Vegas"
	case Fallout4:
		return "Fallout 4"
	case Fallout4VR:
		return "Fallout 4 VR"
	case Starfield:
		return "Starfield"
	case OpenMW:
		return "OpenMW"
	case OblivionRemastered:
		return "Oblivion Remastered"
	default:
		return "Unknown"
	}
}

// ArchiveOverlapMatch selects how two plugins are considered to "load" the
// same archive-packaged asset for overlap scoring (spec.md §4.5 point 7,
// §9 open question).
type ArchiveOverlapMatch int

const (
	// ArchiveMatchStrict matches only the archive named exactly after the
	// plugin's stem plus the game's archive extension, found by a plain
	// file-system lookup in each data path.
	ArchiveMatchStrict ArchiveOverlapMatch = iota
	// ArchiveMatchPrefix treats any archive in a data path whose file name
	// starts with the plugin's stem and ends in the game's archive extension
	// as "loaded by" that plugin.
	ArchiveMatchPrefix
)

// Rules captures every per-game behavioural difference the sorting core
// needs, computed once from a GameType rather than tested ad hoc with
// scattered `if gameType == ...` checks (spec.md §9 design note).
type Rules struct {
	Type GameType

	// Dialect selects the plugin binary format family.
	Dialect Dialect

	// MasterFileName is the game's own hardcoded master, e.g. "Skyrim.esm".
	// Empty for games without one (Morrowind has none as a forced master).
	MasterFileName string

	// PluginExtensions lists the recognised plugin file extensions, in
	// addition to ".esm"/".esp" which every dialect accepts.
	PluginExtensions []string

	// SupportsLightPlugins is true for games whose header flags include the
	// ESL/light bit.
	SupportsLightPlugins bool

	// SupportsMediumPlugins is true only for Starfield-era games with medium
	// (.esm, update-style) plugins.
	SupportsMediumPlugins bool

	// SupportsUpdatePlugins is true for games with a distinct "update"
	// plugin flag (Starfield).
	SupportsUpdatePlugins bool

	// SupportsBlueprintPlugins is true only for Starfield.
	SupportsBlueprintPlugins bool

	// SupportsGhosting is true for every game except OpenMW, which does not
	// recognise the ".ghost" suffix at all (spec.md §4.1).
	SupportsGhosting bool

	// MasterFlagMeansIgnored is true for OpenMW: every plugin reports
	// non-master because OpenMW does not use the flag for ordering at all.
	MasterFlagMeansIgnored bool

	// HeaderMustLoadMasters is true for Morrowind/OpenMW/Starfield, where a
	// plugin's declared masters must already be loaded before it can be
	// fully (not headers-only) loaded (spec.md §3 invariant).
	HeaderMustLoadMasters bool

	// ArchiveExtension is the native archive container extension for this
	// game ("bsa" or "ba2"); empty for games without one.
	ArchiveExtension string

	// ArchiveOverlapMatch selects the asset-overlap matching rule.
	ArchiveMatch ArchiveOverlapMatch

	// TimestampBasedLoadOrder is true for games whose load order is derived
	// from plugin file mtimes rather than an explicit text file.
	TimestampBasedLoadOrder bool

	// EarlyLoadingPlugins is the fixed, ordered prefix of hardcoded plugins
	// forced to load first (spec.md §4.5 point 3).
	EarlyLoadingPlugins []string

	// MaxLightObjectIndex bounds the per-master object-index range that a
	// plugin's own FormIDs must stay within to be valid as light, medium or
	// update (all three subtypes share the same restricted sub-range in the
	// real format).
	MaxLightObjectIndex uint32
}

// Dialect selects which binary layout a GameRules value's plugin reader
// should use.
type Dialect int

const (
	// DialectTES3 is the Morrowind/OpenMW record layout: TES3 header, MAST
	// /DATA master pairs, records keyed by (type, name).
	DialectTES3 Dialect = iota
	// DialectTES4 is the TES4/FO3/FO4/Starfield descendant layout: TES4/…
	// header, MAST master strings, FormID-keyed records.
	DialectTES4
)

// RulesFor returns the computed Rules value for a GameType.
func RulesFor(t GameType) Rules {
	switch t {
	case Morrowind:
		return Rules{
			Type:                  t,
			Dialect:               DialectTES3,
			PluginExtensions:      nil,
			SupportsGhosting:      true,
			HeaderMustLoadMasters: true,
			ArchiveExtension:      "bsa",
			ArchiveMatch:          ArchiveMatchStrict,
		}
	case OpenMW:
		return Rules{
			Type:                    t,
			Dialect:                 DialectTES3,
			PluginExtensions:        []string{".omwaddon", ".omwgame", ".omwscripts"},
			SupportsGhosting:        false,
			MasterFlagMeansIgnored:  true,
			HeaderMustLoadMasters:   true,
			ArchiveExtension:        "bsa",
			ArchiveMatch:            ArchiveMatchPrefix,
			TimestampBasedLoadOrder: false,
		}
	case Oblivion:
		return Rules{
			Type:             t,
			Dialect:          DialectTES4,
			MasterFileName:   "Oblivion.esm",
			SupportsGhosting: true,
			ArchiveExtension: "bsa",
			ArchiveMatch:     ArchiveMatchStrict,
		}
	case OblivionRemastered:
		return Rules{
			Type:                  t,
			Dialect:               DialectTES4,
			MasterFileName:        "Oblivion.esm",
			SupportsLightPlugins:  true,
			SupportsGhosting:      false,
			HeaderMustLoadMasters: false,
			ArchiveExtension:      "bsa",
			ArchiveMatch:          ArchiveMatchStrict,
			MaxLightObjectIndex:   0xFFF,
		}
	case Skyrim:
		return Rules{
			Type:                t,
			Dialect:             DialectTES4,
			MasterFileName:      "Skyrim.esm",
			SupportsGhosting:    true,
			ArchiveExtension:    "bsa",
			ArchiveMatch:        ArchiveMatchStrict,
			EarlyLoadingPlugins: []string{"Skyrim.esm", "Update.esm"},
		}
	case SkyrimSE, SkyrimVR:
		return Rules{
			Type:                 t,
			Dialect:              DialectTES4,
			MasterFileName:       "Skyrim.esm",
			SupportsLightPlugins: true,
			SupportsGhosting:     true,
			ArchiveExtension:     "bsa",
			ArchiveMatch:         ArchiveMatchStrict,
			EarlyLoadingPlugins: []string{
				"Skyrim.esm", "Update.esm", "Dawnguard.esm", "HearthFires.esm",
				"Dragonborn.esm", "Skyrim.esl",
			},
			MaxLightObjectIndex: 0xFFF,
		}
	case Fallout3:
		return Rules{
			Type:                t,
			Dialect:             DialectTES4,
			MasterFileName:      "Fallout3.esm",
			SupportsGhosting:    true,
			ArchiveExtension:    "bsa",
			ArchiveMatch:        ArchiveMatchStrict,
			EarlyLoadingPlugins: []string{"Fallout3.esm"},
		}
	case FalloutNV:
		return Rules{
			Type:                t,
			Dialect:             DialectTES4,
			MasterFileName:      "FalloutNV.esm",
			SupportsGhosting:    true,
			ArchiveExtension:    "bsa",
			ArchiveMatch:        ArchiveMatchStrict,
			EarlyLoadingPlugins: []string{"FalloutNV.esm"},
		}
	case Fallout4, Fallout4VR:
		return Rules{
			Type:                 t,
			Dialect:              DialectTES4,
			MasterFileName:       "Fallout4.esm",
			SupportsLightPlugins: true,
			SupportsGhosting:     true,
			ArchiveExtension:     "ba2",
			ArchiveMatch:         ArchiveMatchStrict,
			EarlyLoadingPlugins: []string{
				"Fallout4.esm", "DLCRobot.esm", "DLCworkshop01.esm",
				"DLCCoast.esm", "DLCworkshop02.esm", "DLCworkshop03.esm",
				"DLCNukaWorld.esm", "DLCUltraHighResolution.esm",
			},
			MaxLightObjectIndex: 0xFFF,
		}
	case Starfield:
		return Rules{
			Type:                     t,
			Dialect:                  DialectTES4,
			MasterFileName:           "Starfield.esm",
			SupportsLightPlugins:     false,
			SupportsMediumPlugins:    true,
			SupportsUpdatePlugins:    true,
			SupportsBlueprintPlugins: true,
			SupportsGhosting:         true,
			HeaderMustLoadMasters:    true,
			ArchiveExtension:         "ba2",
			ArchiveMatch:             ArchiveMatchStrict,
			EarlyLoadingPlugins:      []string{"Starfield.esm", "Constellation.esm", "OldMars.esm", "SFBGS003.esm", "SFBGS004.esm", "SFBGS006.esm", "SFBGS007.esm", "SFBGS008.esm"},
			MaxLightObjectIndex:      0xFFF,
		}
	default:
		return Rules{Type: t, Dialect: DialectTES4}
	}
}

// IsPluginExtension reports whether ext (including the leading dot, any
// case) is a recognised plugin extension for these rules.
func (r Rules) IsPluginExtension(ext string) bool {
	ext = strings.ToLower(ext)
	switch ext {
	case ".esp", ".esm":
		return true
	case ".esl":
		return r.SupportsLightPlugins
	}
	for _, e := range r.PluginExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
