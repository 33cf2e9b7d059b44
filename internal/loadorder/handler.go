// Package loadorder implements the default, file-system based load-order
// collaborator (spec.md §4.7): timestamp-derived ordering for the games
// that use it, and plugins.txt/loadorder.txt parsing for the rest.
package loadorder

import (
	"os"
	"strings"

	"github.com/loot-core/libloot/internal/filename"
	"github.com/loot-core/libloot/internal/gameinfo"
)

// Handler is the default LoadOrderHandler implementation.
type Handler struct {
	rules                 gameinfo.Rules
	dataPath              string
	activePluginsFilePath string
	loadOrderFilePath     string // only used for games with a separate loadorder.txt (Oblivion/Skyrim LE style or OpenMW)
}

// New builds a Handler for the given game rules and paths. activePath is
// the plugins.txt-equivalent file; loadOrderPath is a separate
// loadorder.txt, or empty when the active-plugins file itself also encodes
// order (the common case for everything except old Oblivion-style installs
// and OpenMW's openmw.cfg, which callers handle via loadOrderPath).
func New(rules gameinfo.Rules, dataPath, activePath, loadOrderPath string) *Handler {
	return &Handler{
		rules:                 rules,
		dataPath:              dataPath,
		activePluginsFilePath: activePath,
		loadOrderFilePath:     loadOrderPath,
	}
}

// CurrentOrder returns every installed plugin's current position.
func (h *Handler) CurrentOrder() ([]filename.Filename, error) {
	if h.rules.TimestampBasedLoadOrder {
		return h.orderByTimestamp()
	}
	if h.loadOrderFilePath != "" {
		return readPluginList(h.loadOrderFilePath, false)
	}
	return readPluginList(h.activePluginsFilePath, true)
}

// IsActive reports whether name is currently active.
func (h *Handler) IsActive(name filename.Filename) bool {
	if h.rules.TimestampBasedLoadOrder && h.activePluginsFilePath == "" {
		// A game with no distinct activation concept treats every installed
		// plugin present in the data path as active.
		return true
	}
	active, err := readPluginList(h.activePluginsFilePath, true)
	if err != nil {
		return false
	}
	for _, a := range active {
		if a.Equal(name) {
			return true
		}
	}
	return false
}

// ActivePluginsFilePath returns the path of the active-plugins file.
func (h *Handler) ActivePluginsFilePath() string { return h.activePluginsFilePath }

// IsAmbiguous reports whether the on-disk state does not unambiguously
// define a single order: two files sharing an identical mtime under
// timestamp-based ordering.
func (h *Handler) IsAmbiguous() ([]filename.Filename, bool, error) {
	if !h.rules.TimestampBasedLoadOrder {
		return nil, false, nil
	}
	entries, err := pluginEntriesByMTime(h.dataPath, h.rules)
	if err != nil {
		return nil, false, err
	}
	var ambiguous []filename.Filename
	for i := 1; i < len(entries); i++ {
		if entries[i].mtime.Equal(entries[i-1].mtime) {
			ambiguous = append(ambiguous, entries[i].name, entries[i-1].name)
		}
	}
	return ambiguous, len(ambiguous) > 0, nil
}

// SetOrder persists a newly computed load order.
func (h *Handler) SetOrder(order []filename.Filename) error {
	if h.rules.TimestampBasedLoadOrder {
		return h.setTimestamps(order)
	}
	path := h.loadOrderFilePath
	if path == "" {
		path = h.activePluginsFilePath
	}
	return writePluginList(path, order)
}

func readPluginList(path string, prefixedWithAsterisk bool) ([]filename.Filename, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []filename.Filename
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if prefixedWithAsterisk {
			line = strings.TrimPrefix(line, "*")
		}
		out = append(out, filename.New(line))
	}
	return out, nil
}

func writePluginList(path string, order []filename.Filename) error {
	var b strings.Builder
	for _, f := range order {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
