package loot

import (
	"encoding/json"
	"os"

	"github.com/loot-core/libloot/internal/groups"
	"github.com/loot-core/libloot/internal/metadata"
)

// Database exposes the masterlist/userlist metadata operations of a game
// handle (spec.md §4.3/§4.4, component C3+C4). It is owned by, and shares
// its condition cache with, the GameHandle it was obtained from.
type Database struct {
	handle *GameHandle
}

// GetDatabase returns the metadata database for this game handle.
func (h *GameHandle) GetDatabase() *Database {
	return &Database{handle: h}
}

// LoadLists replaces the masterlist and userlist contents wholesale
// (spec.md §4.3). Parsing the underlying YAML documents happens outside
// this module; callers supply already-decoded values.
func (d *Database) LoadLists(
	masterlistEntries []MetadataEntry, masterlistGroups []Group, generalMessages []Message, knownTags []string,
	userlistEntries []MetadataEntry, userlistGroups []Group,
) {
	d.handle.metadataStore.LoadMasterlist(masterlistEntries, masterlistGroups, generalMessages, knownTags)
	d.handle.metadataStore.LoadUserlist(userlistEntries, userlistGroups)
	d.handle.conditionCache.Clear()
}

// serializedList is the on-disk shape written by WriteUserMetadata and
// WriteMinimalList. YAML encoding of masterlist/userlist documents is an
// external collaborator's responsibility (spec.md §1 architecture
// boundary); this module persists the same filtered data as JSON so a
// round trip through LoadLists needs no extra dependency the pack never
// reaches for (DESIGN.md Open Question log).
type serializedList struct {
	Entries []MetadataEntry `json:"plugins"`
	Groups  []Group         `json:"groups"`
}

// WriteUserMetadata serialises the userlist-owned entries and groups to
// path (spec.md §4.3 "write_user_metadata"). overwrite=false with an
// existing target, or a read-only target, is reported as a FileAccessError.
func (d *Database) WriteUserMetadata(path string, overwrite bool) error {
	entries := d.handle.metadataStore.UserlistEntries()
	groups := d.handle.metadataStore.UserGroups()
	return writeList(path, overwrite, serializedList{Entries: entries, Groups: groups})
}

// WriteMinimalList serialises only entries carrying dirty/clean info or Bash
// Tag suggestions (spec.md §4.3 "write_minimal_list").
func (d *Database) WriteMinimalList(path string, overwrite bool) error {
	userEntries := d.handle.metadataStore.UserlistEntries()
	var minimal []MetadataEntry
	for _, e := range userEntries {
		if len(e.Dirty) > 0 || len(e.Clean) > 0 || len(e.BashTags) > 0 {
			minimal = append(minimal, MetadataEntry{
				PluginName: e.PluginName,
				BashTags:   e.BashTags,
				Dirty:      e.Dirty,
				Clean:      e.Clean,
			})
		}
	}
	return writeList(path, overwrite, serializedList{Entries: minimal})
}

func writeList(path string, overwrite bool, list serializedList) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return &FileAccessError{Path: path, Message: "target already exists and overwrite is false"}
		}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return &FileAccessError{Path: path, Message: "marshal metadata: " + err.Error()}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &FileAccessError{Path: path, Message: "write metadata: " + err.Error()}
	}
	return nil
}

// GetKnownBashTags returns every Bash Tag the masterlist declares as a
// recognised suggestion.
func (d *Database) GetKnownBashTags() []string {
	return d.handle.metadataStore.KnownBashTags()
}

// GetGeneralMessages returns the masterlist's general messages. If
// evaluateConditions is true, messages whose condition evaluates false are
// dropped, and evaluating them first clears the condition cache (spec.md
// §12 Supplemented Features: documented side effect of general-message
// evaluation).
func (d *Database) GetGeneralMessages(evaluateConditions bool) ([]Message, error) {
	messages := d.handle.metadataStore.GeneralMessages()
	if !evaluateConditions {
		return messages, nil
	}

	d.handle.conditionCache.Clear()
	var out []Message
	for _, m := range messages {
		if m.Condition == "" {
			out = append(out, m)
			continue
		}
		ok, err := d.handle.EvaluateCondition(m.Condition)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// GetGroups returns every group known to either the masterlist or the
// userlist.
func (d *Database) GetGroups() []Group {
	return d.handle.metadataStore.Groups()
}

// GetUserGroups returns only the groups defined by the userlist.
func (d *Database) GetUserGroups() []Group {
	return d.handle.metadataStore.UserGroups()
}

// SetUserGroups replaces the userlist's group definitions wholesale.
func (d *Database) SetUserGroups(groups []Group) {
	d.handle.metadataStore.SetUserGroups(groups)
}

// GetGroupsPath returns the minimum-cost path from one group to another,
// preferring userlist edges (spec.md §4.4 "groups_path"). Each vertex's
// EdgeKind is the kind of the edge leading to the next vertex; the last
// vertex's EdgeKind is empty. Returns an empty slice if no route exists.
func (d *Database) GetGroupsPath(from, to string) ([]CycleVertex, error) {
	allGroups := d.handle.metadataStore.Groups()
	userGroupEdges := make(map[[2]string]struct{})
	for _, g := range d.handle.metadataStore.UserGroups() {
		for _, after := range g.AfterGroups {
			userGroupEdges[[2]string{g.Name, after}] = struct{}{}
		}
	}
	graph, err := groups.Build(allGroups, func(group, after string) bool {
		_, ok := userGroupEdges[[2]string{group, after}]
		return ok
	})
	if err != nil {
		return nil, translateGroupError(err)
	}

	path, ok := graph.Path(from, to)
	if !ok {
		return nil, nil
	}
	out := make([]CycleVertex, len(path))
	for i, v := range path {
		var kind EdgeKind
		if i+1 < len(path) {
			kind = EdgeMasterlistHard
			if path[i+1].Provenance == groups.Userlist {
				kind = EdgeUserlistHard
			}
		}
		out[i] = CycleVertex{Name: v.Name, EdgeKind: kind}
	}
	return out, nil
}

// GetPluginMetadata returns the merged masterlist+userlist metadata for a
// plugin, optionally condition-filtered.
func (d *Database) GetPluginMetadata(pluginName string, evaluateConditions bool) (MetadataEntry, bool, error) {
	entry, ok := d.handle.metadataStore.Get(pluginName)
	if !ok {
		return MetadataEntry{}, false, nil
	}
	if !evaluateConditions {
		return entry, true, nil
	}
	filtered, err := metadata.FilterEntry(entry, conditionEvaluatorFor(d.handle))
	if err != nil {
		return MetadataEntry{}, true, &ConditionEvaluationError{Condition: pluginName, Cause: err}
	}
	return filtered, true, nil
}

// GetPluginUserMetadata returns only the userlist's unmerged view for a
// plugin.
func (d *Database) GetPluginUserMetadata(pluginName string) (MetadataEntry, bool) {
	return d.handle.metadataStore.GetUserlistEntry(pluginName)
}

// SetPluginUserMetadata overwrites the userlist entry for one plugin.
func (d *Database) SetPluginUserMetadata(entry MetadataEntry) {
	d.handle.metadataStore.SetUserMetadata(entry)
	d.handle.conditionCache.Clear()
}

// DiscardPluginUserMetadata removes any userlist entry for the named
// plugin.
func (d *Database) DiscardPluginUserMetadata(pluginName string) {
	d.handle.metadataStore.DiscardUserMetadata(pluginName)
	d.handle.conditionCache.Clear()
}

// DiscardAllUserMetadata clears the entire userlist, including groups.
func (d *Database) DiscardAllUserMetadata() {
	d.handle.metadataStore.DiscardAllUserMetadata()
	d.handle.conditionCache.Clear()
}

type conditionEvaluatorFunc func(string) (bool, error)

func (f conditionEvaluatorFunc) EvaluateCondition(condition string) (bool, error) { return f(condition) }

func conditionEvaluatorFor(h *GameHandle) metadata.ConditionEvaluator {
	return conditionEvaluatorFunc(h.EvaluateCondition)
}
