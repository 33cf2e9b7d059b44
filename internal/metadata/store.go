package metadata

import (
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/loot-core/libloot/internal/filename"
)

// Store holds the parsed masterlist and userlist and exposes merged,
// case-insensitive lookups (spec.md §4.3 "Plugin lookup. By case-insensitive
// filename."). Parsing the underlying YAML stays outside this package and
// outside the module entirely (spec.md §1 architecture boundary); callers
// populate a Store via LoadMasterlist/LoadUserlist with already-decoded
// Entry values.
type Store struct {
	mu sync.RWMutex

	masterlist map[string]Entry // keyed by filename.Filename.Folded()
	userlist   map[string]Entry

	masterlistGroups map[string]Group
	userlistGroups   map[string]Group

	generalMessages []Message
	bashTags        map[string]struct{}
}

// New builds an empty Store.
func New() *Store {
	return &Store{
		masterlist:       make(map[string]Entry),
		userlist:         make(map[string]Entry),
		masterlistGroups: make(map[string]Group),
		userlistGroups:   make(map[string]Group),
		bashTags:         make(map[string]struct{}),
	}
}

// LoadMasterlist replaces the masterlist contents: plugin entries, groups
// and the set of known Bash Tags and general messages it declares. Any
// previously loaded masterlist data is discarded first.
func (s *Store) LoadMasterlist(entries []Entry, groups []Group, generalMessages []Message, knownTags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.masterlist = make(map[string]Entry, len(entries))
	for _, e := range entries {
		s.masterlist[filename.New(e.PluginName).Folded()] = e
	}
	s.masterlistGroups = make(map[string]Group, len(groups)+1)
	s.masterlistGroups[DefaultGroupName] = NewDefaultGroup()
	for _, g := range groups {
		s.masterlistGroups[g.Name] = g
	}
	s.generalMessages = append([]Message{}, generalMessages...)
	s.bashTags = make(map[string]struct{}, len(knownTags))
	for _, t := range knownTags {
		s.bashTags[t] = struct{}{}
	}
}

// LoadUserlist replaces the userlist contents.
func (s *Store) LoadUserlist(entries []Entry, groups []Group) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userlist = make(map[string]Entry, len(entries))
	for _, e := range entries {
		s.userlist[filename.New(e.PluginName).Folded()] = e
	}
	s.userlistGroups = make(map[string]Group, len(groups))
	for _, g := range groups {
		s.userlistGroups[g.Name] = g
	}
}

// SetUserMetadata overwrites the userlist entry for one plugin.
func (s *Store) SetUserMetadata(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userlist[filename.New(entry.PluginName).Folded()] = entry
}

// DiscardUserMetadata removes any userlist entry for the named plugin.
func (s *Store) DiscardUserMetadata(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.userlist, filename.New(name).Folded())
}

// DiscardAllUserMetadata clears the entire userlist, including groups.
func (s *Store) DiscardAllUserMetadata() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userlist = make(map[string]Entry)
	s.userlistGroups = make(map[string]Group)
}

// Get returns the merged masterlist+userlist metadata for name.
func (s *Store) Get(name string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := filename.New(name).Folded()
	m, mok := s.masterlist[key]
	u, uok := s.userlist[key]
	if !mok && !uok {
		return Entry{}, false
	}
	return Merge(m, u), true
}

// GetMasterlistEntry returns only the masterlist's view, unmerged.
func (s *Store) GetMasterlistEntry(name string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.masterlist[filename.New(name).Folded()]
	return e, ok
}

// GetUserlistEntry returns only the userlist's view, unmerged.
func (s *Store) GetUserlistEntry(name string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.userlist[filename.New(name).Folded()]
	return e, ok
}

// Groups returns every group known to either list, merged by name: for a
// group defined in both, the after_groups of both lists are unioned and a
// non-empty userlist description replaces the masterlist one.
func (s *Store) Groups() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byName := make(map[string]Group, len(s.masterlistGroups)+len(s.userlistGroups))
	for name, g := range s.masterlistGroups {
		byName[name] = g
	}
	for name, g := range s.userlistGroups {
		if existing, ok := byName[name]; ok {
			existing.AfterGroups = append(append([]string{}, existing.AfterGroups...), g.AfterGroups...)
			if g.Description != "" {
				existing.Description = g.Description
			}
			byName[name] = existing
			continue
		}
		byName[name] = g
	}

	out := make([]Group, 0, len(byName))
	for _, g := range byName {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// UserGroups returns only the groups defined by the userlist.
func (s *Store) UserGroups() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Group, 0, len(s.userlistGroups))
	for _, g := range s.userlistGroups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetUserGroups replaces the userlist's group definitions wholesale.
func (s *Store) SetUserGroups(groups []Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userlistGroups = make(map[string]Group, len(groups))
	for _, g := range groups {
		s.userlistGroups[g.Name] = g
	}
}

// UserlistEntries returns every userlist plugin entry, sorted by plugin name
// for determinism (spec.md §4.3 "write_user_metadata"/"write_minimal_list",
// which serialise the userlist's own entries rather than the merged view).
func (s *Store) UserlistEntries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.userlist))
	for _, e := range s.userlist {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PluginName < out[j].PluginName })
	return out
}

// KnownBashTags returns every Bash Tag the masterlist declares as a
// recognised suggestion, sorted for determinism.
func (s *Store) KnownBashTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.bashTags))
	for t := range s.bashTags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// GeneralMessages returns the masterlist's general (not plugin-specific)
// messages, optionally condition-filtered by the caller.
func (s *Store) GeneralMessages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message{}, s.generalMessages...)
}

// ConditionEvaluator evaluates a single condition string to a boolean,
// abstracting over internal/condition so this package does not need to
// depend on an Environment directly in its exported surface.
type ConditionEvaluator interface {
	EvaluateCondition(condition string) (bool, error)
}

// FilterEntry evaluates every condition on entry's fields against eval,
// dropping the fields whose condition is false, and reports every
// evaluation error it encountered (spec.md §4.3 "Condition application").
// A file whose Constraint evaluates to false is dropped as well, per the
// same clause ("treated as not-installed for subsequent sorting
// decisions").
func FilterEntry(entry Entry, eval ConditionEvaluator) (Entry, error) {
	var errs *multierror.Error

	filterFiles := func(files []File) []File {
		var out []File
		for _, f := range files {
			if f.Condition != "" {
				ok, err := eval.EvaluateCondition(f.Condition)
				if err != nil {
					errs = multierror.Append(errs, err)
					continue
				}
				if !ok {
					continue
				}
			}
			if f.Constraint != "" {
				ok, err := eval.EvaluateCondition(f.Constraint)
				if err != nil {
					errs = multierror.Append(errs, err)
					continue
				}
				if !ok {
					continue
				}
			}
			out = append(out, f)
		}
		return out
	}

	filterMessages := func(messages []Message) []Message {
		var out []Message
		for _, m := range messages {
			if m.Condition != "" {
				ok, err := eval.EvaluateCondition(m.Condition)
				if err != nil {
					errs = multierror.Append(errs, err)
					continue
				}
				if !ok {
					continue
				}
			}
			out = append(out, m)
		}
		return out
	}

	filterTags := func(tags []Tag) []Tag {
		var out []Tag
		for _, t := range tags {
			if t.Condition != "" {
				ok, err := eval.EvaluateCondition(t.Condition)
				if err != nil {
					errs = multierror.Append(errs, err)
					continue
				}
				if !ok {
					continue
				}
			}
			out = append(out, t)
		}
		return out
	}

	filtered := Entry{
		PluginName:        entry.PluginName,
		Group:             entry.Group,
		LoadAfter:         filterFiles(entry.LoadAfter),
		Requirements:      filterFiles(entry.Requirements),
		Incompatibilities: filterFiles(entry.Incompatibilities),
		Messages:          filterMessages(entry.Messages),
		BashTags:          filterTags(entry.BashTags),
		Dirty:             entry.Dirty,
		Clean:             entry.Clean,
	}
	return filtered, errs.ErrorOrNil()
}
