package loot

import "github.com/loot-core/libloot/internal/pluginfile"

// Plugin is a parsed plugin file, returned by GameHandle.GetPlugin and
// GameHandle.GetLoadedPlugins (spec.md §3 "Plugin").
type Plugin struct {
	inner *pluginfile.Plugin
}

// Filename returns the plugin's case-insensitive display name (with any
// ".ghost" suffix already stripped).
func (p *Plugin) Filename() PluginFilename { return p.inner.Filename }

// IsMaster reports whether this plugin counts as a master for load-order
// purposes.
func (p *Plugin) IsMaster() bool { return p.inner.IsMaster() }

// IsLightPlugin reports whether the light/ESL flag is set and applicable
// for this game.
func (p *Plugin) IsLightPlugin() bool { return p.inner.Flags.IsLight }

// IsMediumPlugin reports whether the medium-plugin flag is set (Starfield
// only).
func (p *Plugin) IsMediumPlugin() bool { return p.inner.Flags.IsMedium }

// IsUpdatePlugin reports whether the update-plugin flag is set (Starfield
// only).
func (p *Plugin) IsUpdatePlugin() bool { return p.inner.Flags.IsUpdate }

// IsBlueprintPlugin reports whether the blueprint-plugin flag is set
// (Starfield only).
func (p *Plugin) IsBlueprintPlugin() bool { return p.inner.Flags.IsBlueprint }

// IsEmpty reports whether the plugin contributes no records of its own.
func (p *Plugin) IsEmpty() bool { return p.inner.Flags.IsEmpty }

// IsValidAsLightPlugin reports whether every FormID in the plugin falls
// within the light-plugin object-index range, regardless of whether the
// light flag is actually set.
func (p *Plugin) IsValidAsLightPlugin() bool { return p.inner.Flags.ValidAsLight }

// IsValidAsMediumPlugin reports whether every FormID in the plugin falls
// within the medium-plugin object-index range (Starfield only).
func (p *Plugin) IsValidAsMediumPlugin() bool { return p.inner.Flags.ValidAsMedium }

// IsValidAsUpdatePlugin reports whether every FormID in the plugin falls
// within the update-plugin object-index range (Starfield only).
func (p *Plugin) IsValidAsUpdatePlugin() bool { return p.inner.Flags.ValidAsUpdate }

// LoadsArchive reports whether an archive file sharing this plugin's base
// name exists alongside it.
func (p *Plugin) LoadsArchive() bool { return p.inner.LoadsArchive }

// Masters returns the plugin's declared masters, in header order.
func (p *Plugin) Masters() []PluginFilename {
	out := make([]PluginFilename, len(p.inner.Masters))
	for i, m := range p.inner.Masters {
		out[i] = m.Filename
	}
	return out
}

// CRC returns the plugin's CRC-32, if it was computed (only true for a
// fully, not headers-only, loaded plugin).
func (p *Plugin) CRC() (uint32, bool) {
	if p.inner.CRC32 == nil {
		return 0, false
	}
	return *p.inner.CRC32, true
}

// Version returns the plugin's description-derived version string, if any.
func (p *Plugin) Version() (string, bool) {
	if p.inner.DescriptionVersion == "" {
		return "", false
	}
	return p.inner.DescriptionVersion, true
}

// BashTags returns the Bash Tag suggestions embedded in the plugin's
// description field.
func (p *Plugin) BashTags() []string { return append([]string{}, p.inner.BashTags...) }

// IsActive reports whether the external load-order collaborator considers
// this plugin active.
func (p *Plugin) IsActive() bool { return p.inner.Active }

// Overlaps reports whether p and other share at least one record.
func (p *Plugin) Overlaps(other *Plugin) bool { return p.inner.Overlaps(other.inner) }
