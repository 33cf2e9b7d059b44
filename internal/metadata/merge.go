package metadata

// Merge combines a masterlist entry and a userlist entry for the same
// plugin into one effective Entry, per spec.md §4.3:
//   - File lists are unioned, de-duplicated by (display name, condition,
//     constraint).
//   - Messages and tag suggestions are unioned, masterlist-first.
//   - group follows the userlist if present, else the masterlist.
//   - dirty_info/clean_info are unioned, keyed by (crc, utility).
//
// Either argument may be the zero Entry if no metadata exists in that list.
func Merge(masterlist, userlist Entry) Entry {
	merged := Entry{PluginName: masterlist.PluginName}
	if merged.PluginName == "" {
		merged.PluginName = userlist.PluginName
	}

	merged.Group = masterlist.Group
	if userlist.Group != "" {
		merged.Group = userlist.Group
	}

	merged.LoadAfter = unionFiles(masterlist.LoadAfter, userlist.LoadAfter)
	merged.Requirements = unionFiles(masterlist.Requirements, userlist.Requirements)
	merged.Incompatibilities = unionFiles(masterlist.Incompatibilities, userlist.Incompatibilities)
	merged.Messages = append(append([]Message{}, masterlist.Messages...), userlist.Messages...)
	merged.BashTags = unionTags(masterlist.BashTags, userlist.BashTags)
	merged.Dirty = unionCleaning(masterlist.Dirty, userlist.Dirty)
	merged.Clean = unionCleaning(masterlist.Clean, userlist.Clean)

	return merged
}

type fileKey struct {
	display    string
	condition  string
	constraint string
}

func unionFiles(a, b []File) []File {
	seen := make(map[fileKey]struct{}, len(a)+len(b))
	var out []File
	add := func(files []File) {
		for _, f := range files {
			k := fileKey{display: f.Display, condition: f.Condition, constraint: f.Constraint}
			if f.Display == "" {
				k.display = f.Name
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, f)
		}
	}
	add(a)
	add(b)
	return out
}

type tagKey struct {
	name      string
	isAdd     bool
	condition string
}

func unionTags(a, b []Tag) []Tag {
	seen := make(map[tagKey]struct{}, len(a)+len(b))
	var out []Tag
	add := func(tags []Tag) {
		for _, t := range tags {
			k := tagKey{name: t.Name, isAdd: t.IsAddition, condition: t.Condition}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, t)
		}
	}
	add(a)
	add(b)
	return out
}

type cleaningKey struct {
	crc     uint32
	utility string
}

func unionCleaning(a, b []PluginCleaningData) []PluginCleaningData {
	seen := make(map[cleaningKey]struct{}, len(a)+len(b))
	var out []PluginCleaningData
	add := func(entries []PluginCleaningData) {
		for _, e := range entries {
			k := cleaningKey{crc: e.CRC, utility: e.Utility}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, e)
		}
	}
	add(a)
	add(b)
	return out
}
