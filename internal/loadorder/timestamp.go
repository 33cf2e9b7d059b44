package loadorder

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/loot-core/libloot/internal/filename"
	"github.com/loot-core/libloot/internal/gameinfo"
)

type timestampedPlugin struct {
	name  filename.Filename
	mtime time.Time
}

// pluginEntriesByMTime lists every plugin file in dataPath, sorted by mtime
// ascending (earliest-loading first), ties broken by case-insensitive name
// for determinism.
func pluginEntriesByMTime(dataPath string, rules gameinfo.Rules) ([]timestampedPlugin, error) {
	entries, err := os.ReadDir(dataPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []timestampedPlugin
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		display := name
		if rules.SupportsGhosting {
			if trimmed, ghosted := filename.TrimGhostSuffix(name); ghosted {
				display = trimmed
			}
		}
		ext := strings.ToLower(filepath.Ext(display))
		if !rules.IsPluginExtension(ext) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		out = append(out, timestampedPlugin{name: filename.New(display), mtime: info.ModTime()})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].mtime.Equal(out[j].mtime) {
			return out[i].mtime.Before(out[j].mtime)
		}
		return out[i].name.Less(out[j].name)
	})
	return out, nil
}

func (h *Handler) orderByTimestamp() ([]filename.Filename, error) {
	entries, err := pluginEntriesByMTime(h.dataPath, h.rules)
	if err != nil {
		return nil, err
	}
	out := make([]filename.Filename, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out, nil
}

// setTimestamps rewrites every plugin's mtime to encode order, one minute
// apart, starting from a fixed epoch; this mirrors the classic Oblivion/
// Fallout 3/FalloutNV approach of spacing timestamps to force a specific
// load order.
func (h *Handler) setTimestamps(order []filename.Filename) error {
	base := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, f := range order {
		stamp := base.Add(time.Duration(i) * time.Minute)
		path, err := h.resolvePluginPath(f)
		if err != nil {
			return err
		}
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) resolvePluginPath(f filename.Filename) (string, error) {
	candidates := []string{f.String(), f.String() + ".ghost"}
	for _, c := range candidates {
		p := filepath.Join(h.dataPath, c)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return filepath.Join(h.dataPath, f.String()), nil
}
