// Package metadata implements the in-memory masterlist/userlist model and
// merge engine (spec.md §4.3, component C3), grounded on the teacher's
// conflict/types.go value-object style.
package metadata

// File is a reference to another plugin, carrying an optional condition
// gating whether the reference applies and an optional constraint
// (original_source/cpp/include/loot/metadata/file.h).
type File struct {
	Name       string
	Display    string
	Condition  string
	Constraint string
	Detail     []MessageContent
}

// MessageType classifies a Message's severity.
type MessageType int

const (
	MessageSay MessageType = iota
	MessageWarn
	MessageError
)

// MessageContent is a single localisation of a message's text.
type MessageContent struct {
	Language string
	Text     string
}

// Message is a user-facing note attached to a plugin or emitted generally,
// gated by an optional condition.
type Message struct {
	Type      MessageType
	Content   []MessageContent
	Condition string
}

// Tag is a Wrye Bash tag suggestion: either an addition or a removal
// suggestion, gated by an optional condition
// (original_source/include/loot/metadata/tag.h).
type Tag struct {
	Name       string
	IsAddition bool
	Condition  string
}

// PluginCleaningData records a cleaning utility's report for one CRC of a
// plugin (original_source/cpp/include/loot/metadata/plugin_cleaning_data.h).
type PluginCleaningData struct {
	CRC                 uint32
	ITMCount            uint32
	DeletedRefCount     uint32
	DeletedNavmeshCount uint32
	Utility             string
	Detail              []MessageContent
}

// Group is a named ordering bucket; see groups.Graph for the construction
// and shortest-path logic built on top of these.
type Group struct {
	Name        string
	Description string
	AfterGroups []string
}

// DefaultGroupName is the implicit group every plugin belongs to when it has
// no explicit group assignment (spec.md §3 "Group").
const DefaultGroupName = "default"

// NewDefaultGroup returns the implicit default group, which never has any
// after_groups of its own.
func NewDefaultGroup() Group {
	return Group{Name: DefaultGroupName}
}

// Entry is one plugin's metadata, before or after masterlist/userlist merge.
type Entry struct {
	PluginName        string
	Group             string
	LoadAfter         []File
	Requirements      []File
	Incompatibilities []File
	Messages          []Message
	BashTags          []Tag
	Dirty             []PluginCleaningData
	Clean             []PluginCleaningData
}

// HasGroup reports whether the entry explicitly assigns a group.
func (e Entry) HasGroup() bool { return e.Group != "" }
