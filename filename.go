package loot

import "github.com/loot-core/libloot/internal/filename"

// PluginFilename is a Unicode case-insensitive plugin (or archive) file
// name. Equality and ordering both compare case-folded forms, so every map
// or sorted container keyed on PluginFilename behaves correctly regardless
// of how a given installation happens to have capitalised a file (spec.md
// §3 invariant).
type PluginFilename = filename.Filename

// NewPluginFilename constructs a PluginFilename from a raw string.
func NewPluginFilename(raw string) PluginFilename {
	return filename.New(raw)
}
