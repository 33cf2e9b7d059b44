package loot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/loot-core/libloot/internal/assetindex"
	"github.com/loot-core/libloot/internal/cache"
	"github.com/loot-core/libloot/internal/condition"
	"github.com/loot-core/libloot/internal/filename"
	"github.com/loot-core/libloot/internal/gameinfo"
	"github.com/loot-core/libloot/internal/loadorder"
	"github.com/loot-core/libloot/internal/metadata"
	"github.com/loot-core/libloot/internal/pluginfile"
)

// GameHandleConfig configures a new GameHandle (spec.md §4 "Game handle
// creation"). LoadOrderHandler and AssetIndex are optional collaborator
// overrides; when nil, the default filesystem-based implementations in
// internal/loadorder and internal/assetindex are used.
type GameHandleConfig struct {
	GameType GameType
	GamePath string

	// ActivePluginsFilePath and LoadOrderFilePath override the default
	// per-game locations for the active-plugins/load-order files; leave
	// empty to use the game's conventional path under GamePath.
	ActivePluginsFilePath string
	LoadOrderFilePath     string

	AdditionalDataPaths []string

	// PersistentCachePath, if set, backs the parsed-plugin cache with a
	// SQLite database at this path so plugins already parsed by a prior
	// process invocation are not re-parsed from scratch (spec.md §9
	// "register once" extended to repeated CLI runs against the same
	// installation). Leave empty to keep the cache in-process only.
	PersistentCachePath string

	LoadOrderHandler LoadOrderHandler
	AssetIndex       AssetIndex
}

// GameHandle is the entry point for sorting one game installation (spec.md
// §3 "Game handle", §4 operations). It owns the metadata store, condition
// cache, parsed-plugin cache and the external collaborators, and exposes
// the sorting pipeline end to end.
type GameHandle struct {
	gameType GameType
	rules    GameRules
	gamePath string
	dataPath string

	mu                  sync.RWMutex
	additionalDataPaths []string

	pluginCache     *pluginfile.HeaderCache
	persistentCache *cache.Cache
	conditionCache  *condition.Cache
	metadataStore   *metadata.Store

	loadOrderHandler LoadOrderHandler
	assetIndex       AssetIndex

	loadedPlugins map[string]*Plugin // keyed by filename.Filename.Folded()

	// generation changes every time LoadPlugins/ClearLoadedPlugins
	// invalidates the loaded-plugin set, so long-lived callers holding a
	// stale *Plugin can detect it (spec.md §9 "reference-counted handles
	// with an internal generation counter").
	generation uuid.UUID
}

// NewGameHandle constructs a GameHandle for one game installation,
// confirming the install path actually matches the declared game type by
// checking for its master file (spec.md §4 pre-condition).
func NewGameHandle(cfg GameHandleConfig) (*GameHandle, error) {
	if cfg.GamePath == "" {
		return nil, &InvalidArgumentError{Message: "game path must not be empty"}
	}
	rules := RulesForGame(cfg.GameType)
	dataPath := filepath.Join(cfg.GamePath, "Data")
	if rules.Type == gameinfo.OpenMW {
		dataPath = cfg.GamePath
	}

	if rules.MasterFileName != "" {
		if _, err := os.Stat(filepath.Join(dataPath, rules.MasterFileName)); err != nil {
			return nil, &GameDetectionError{GamePath: cfg.GamePath}
		}
	}

	var persistentCache *cache.Cache
	var err error
	if cfg.PersistentCachePath != "" {
		persistentCache, err = cache.New(cache.Config{DBPath: cfg.PersistentCachePath})
		if err != nil {
			return nil, &FileAccessError{Message: fmt.Sprintf("opening plugin cache: %v", err)}
		}
	}
	pluginCache, err := pluginfile.NewHeaderCacheWithPersistence(256, persistentCache)
	if err != nil {
		return nil, err
	}
	conditionCache, err := condition.New(1024)
	if err != nil {
		return nil, err
	}

	activePath := cfg.ActivePluginsFilePath
	if activePath == "" {
		activePath = defaultActivePluginsPath(cfg.GamePath, rules)
	}
	loadOrderPath := cfg.LoadOrderFilePath
	if loadOrderPath == "" {
		loadOrderPath = defaultLoadOrderPath(cfg.GamePath, rules)
	}

	h := &GameHandle{
		gameType:            cfg.GameType,
		rules:               rules,
		gamePath:            cfg.GamePath,
		dataPath:            dataPath,
		additionalDataPaths: append([]string{}, cfg.AdditionalDataPaths...),
		pluginCache:         pluginCache,
		persistentCache:     persistentCache,
		conditionCache:      conditionCache,
		metadataStore:       metadata.New(),
		loadedPlugins:       make(map[string]*Plugin),
		generation:          uuid.New(),
	}

	h.loadOrderHandler = cfg.LoadOrderHandler
	if h.loadOrderHandler == nil {
		h.loadOrderHandler = loadorder.New(rules, dataPath, activePath, loadOrderPath)
	}
	h.assetIndex = cfg.AssetIndex
	if h.assetIndex == nil {
		h.assetIndex = assetindex.New(h.allDataPaths(), rules)
	}

	return h, nil
}

func defaultActivePluginsPath(gamePath string, rules gameinfo.Rules) string {
	if rules.TimestampBasedLoadOrder {
		return ""
	}
	if rules.Type == gameinfo.OpenMW {
		return filepath.Join(gamePath, "openmw.cfg")
	}
	return filepath.Join(gamePath, "plugins.txt")
}

func defaultLoadOrderPath(gamePath string, rules gameinfo.Rules) string {
	if rules.Type == gameinfo.OpenMW {
		return filepath.Join(gamePath, "openmw.cfg")
	}
	return ""
}

// allDataPaths returns the primary data path followed by every additional
// data path, in precedence order (spec.md §4.6 "additional data paths").
func (h *GameHandle) allDataPaths() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, 1+len(h.additionalDataPaths))
	out = append(out, h.dataPath)
	out = append(out, h.additionalDataPaths...)
	return out
}

// GetAdditionalDataPaths returns the currently configured additional data
// paths.
func (h *GameHandle) GetAdditionalDataPaths() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string{}, h.additionalDataPaths...)
}

// SetAdditionalDataPaths replaces the additional data paths and clears the
// condition cache, since conditions may reference files under them.
func (h *GameHandle) SetAdditionalDataPaths(paths []string) {
	h.mu.Lock()
	h.additionalDataPaths = append([]string{}, paths...)
	h.mu.Unlock()
	h.conditionCache.Clear()
}

func (h *GameHandle) resolveDataPath(name string) (string, bool) {
	for _, dir := range h.allDataPaths() {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// IsValidPlugin reports whether path can be parsed as a plugin for this
// game, without keeping the result (spec.md §4 "IsValidPlugin"). A path whose
// extension this game's rules don't recognise as a plugin extension (e.g. an
// ".esl" for a game without light-plugin support) is never valid, regardless
// of what Read makes of its contents.
func (h *GameHandle) IsValidPlugin(path string) bool {
	base := filepath.Base(path)
	if h.rules.SupportsGhosting {
		base, _ = filename.TrimGhostSuffix(base)
	}
	if !h.rules.IsPluginExtension(strings.ToLower(filepath.Ext(base))) {
		return false
	}
	_, err := pluginfile.Read(path, h.rules, pluginfile.HeadersOnly, nil)
	return err == nil
}

// LoadPlugins parses every path in paths, replacing whatever was previously
// loaded. Every error encountered is collected and returned together rather
// than aborting at the first failure (spec.md §4 "LoadPlugins", §7 batch
// error policy), except for a duplicate (case-insensitively) name across
// paths, which is reported immediately since it is a caller mistake rather
// than a per-file failure.
func (h *GameHandle) LoadPlugins(paths []string, headersOnly bool) error {
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		key := filename.New(filepath.Base(p)).Folded()
		if existing, dup := seen[key]; dup {
			return &InvalidArgumentError{Message: fmt.Sprintf("duplicate plugin name: %s and %s", existing, p)}
		}
		seen[key] = p
	}

	mode := pluginfile.FullLoad
	if headersOnly {
		mode = pluginfile.HeadersOnly
	}

	loaded := make(map[string]*Plugin, len(paths))
	var loadedMasters []filename.Filename
	var errs []error

	for _, p := range paths {
		inner, err := h.pluginCache.Get(p, h.rules, mode, loadedMasters)
		if err != nil {
			errs = append(errs, translatePluginError(p, err))
			continue
		}

		if h.rules.HeaderMustLoadMasters {
			for _, m := range inner.Masters {
				if _, ok := loaded[m.Filename.Folded()]; !ok {
					errs = append(errs, &PluginParseError{
						Path:    p,
						Message: fmt.Sprintf("master %q must already be loaded", m.Filename.String()),
					})
					break
				}
			}
		}

		inner.Active = h.loadOrderHandler.IsActive(inner.Filename)
		loaded[inner.Filename.Folded()] = &Plugin{inner: inner}
		loadedMasters = append(loadedMasters, inner.Filename)
	}

	h.mu.Lock()
	h.loadedPlugins = loaded
	h.generation = uuid.New()
	h.mu.Unlock()

	if len(errs) == 0 {
		return nil
	}
	return joinErrors(errs)
}

func translatePluginError(path string, err error) error {
	return &PluginParseError{Path: path, Message: err.Error()}
}

// ClearLoadedPlugins discards every loaded plugin.
func (h *GameHandle) ClearLoadedPlugins() {
	h.mu.Lock()
	h.loadedPlugins = make(map[string]*Plugin)
	h.generation = uuid.New()
	h.mu.Unlock()
}

// GetPlugin returns the loaded plugin with the given name, case
// -insensitively.
func (h *GameHandle) GetPlugin(name string) (*Plugin, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.loadedPlugins[filename.New(name).Folded()]
	return p, ok
}

// GetLoadedPlugins returns every currently loaded plugin, sorted by name for
// determinism.
func (h *GameHandle) GetLoadedPlugins() []*Plugin {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Plugin, 0, len(h.loadedPlugins))
	for _, p := range h.loadedPlugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename().Less(out[j].Filename()) })
	return out
}

// IdentifyMainMasterFile returns the game's own hardcoded master file name,
// or the empty string for games without one.
func (h *GameHandle) IdentifyMainMasterFile() string {
	return h.rules.MasterFileName
}

// LoadCurrentLoadOrderState refreshes loaded plugins' Active flag and the
// tie-break index source from the load-order collaborator's current view.
func (h *GameHandle) LoadCurrentLoadOrderState() error {
	order, err := h.loadOrderHandler.CurrentOrder()
	if err != nil {
		return &FileAccessError{Message: "reading current load order", Path: h.loadOrderHandler.ActivePluginsFilePath()}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, name := range order {
		if p, ok := h.loadedPlugins[name.Folded()]; ok {
			p.inner.Active = h.loadOrderHandler.IsActive(name)
		}
	}
	return nil
}

// IsLoadOrderAmbiguous reports whether the on-disk state does not
// unambiguously define a single order.
func (h *GameHandle) IsLoadOrderAmbiguous() bool {
	_, ambiguous, err := h.loadOrderHandler.IsAmbiguous()
	return err == nil && ambiguous
}

// GetActivePluginsFilePath returns the active-plugins file path.
func (h *GameHandle) GetActivePluginsFilePath() string {
	return h.loadOrderHandler.ActivePluginsFilePath()
}

// IsPluginActive reports whether name is currently active.
func (h *GameHandle) IsPluginActive(name string) bool {
	return h.loadOrderHandler.IsActive(NewPluginFilename(name))
}

// GetLoadOrder returns the load-order collaborator's current view of plugin
// order.
func (h *GameHandle) GetLoadOrder() ([]PluginFilename, error) {
	order, err := h.loadOrderHandler.CurrentOrder()
	if err != nil {
		return nil, &FileAccessError{Message: "reading current load order"}
	}
	return order, nil
}

// SetLoadOrder persists a newly computed load order.
func (h *GameHandle) SetLoadOrder(order []PluginFilename) error {
	if err := h.loadOrderHandler.SetOrder(order); err != nil {
		return &FileAccessError{Message: "writing load order"}
	}
	return nil
}

// Close releases the handle's persistent plugin cache, if one was
// configured via GameHandleConfig.PersistentCachePath. It is a no-op
// otherwise.
func (h *GameHandle) Close() error {
	if h.persistentCache == nil {
		return nil
	}
	return h.persistentCache.Close()
}

// joinErrors aggregates per-file load failures without discarding their
// individual types (each is already a *PluginParseError, not a caller
// mistake, so it is never relabelled as an InvalidArgumentError).
func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	var result *multierror.Error
	for _, e := range errs {
		result = multierror.Append(result, e)
	}
	return result
}
