package loot

// LoadOrderHandler is the external collaborator responsible for reading and
// writing the installation's actual load order and active-plugin state
// (spec.md §4.7 "External load-order handler"). A default, file-system
// based implementation is provided by internal/loadorder; callers embedding
// libloot in a mod manager that already tracks load order may supply their
// own.
type LoadOrderHandler interface {
	// CurrentOrder returns every installed plugin's current position, most
	// to least authoritative source first (spec.md: timestamps for
	// timestamp-based games, loadorder.txt/plugins.txt otherwise).
	CurrentOrder() ([]PluginFilename, error)
	// IsActive reports whether name is currently active.
	IsActive(name PluginFilename) bool
	// ActivePluginsFilePath returns the path to the file recording which
	// plugins are active (empty for timestamp-based games, which have no
	// separate active-plugins file).
	ActivePluginsFilePath() string
	// IsAmbiguous reports whether the current on-disk state does not
	// unambiguously define a single total order (e.g. two plugins sharing
	// an identical mtime on a timestamp-based game).
	IsAmbiguous() ([]PluginFilename, bool, error)
	// SetOrder persists a newly computed load order.
	SetOrder(order []PluginFilename) error
}

// AssetIndex is the external collaborator that resolves which archive
// (BSA/BA2) files a plugin loads and what assets those archives contain,
// used by the plugin graph builder's overlap-edge source (spec.md §4.5
// point 7). A default implementation backed by mholt/archiver/v4 is
// provided by internal/assetindex.
type AssetIndex interface {
	// ArchivesFor returns the archive file names a plugin with this base
	// name would load, per the game's archive-naming convention.
	ArchivesFor(pluginName PluginFilename) []string
	// AssetCount returns the number of assets contained across the given
	// archive names, summed per archive, used to compare two plugins' asset
	// footprints.
	AssetCount(archiveNames []string) (int, error)
}
