package loot

import "github.com/loot-core/libloot/internal/metadata"

// The metadata value types are thin aliases over internal/metadata so the
// YAML-decoded documents a host parses externally (spec.md §1 architecture
// boundary: "YAML parsing of masterlist/userlist documents" is an external
// collaborator's job, not this module's) can be handed to Database.LoadLists
// without a conversion step.
type (
	MetadataEntry      = metadata.Entry
	Group              = metadata.Group
	File               = metadata.File
	Message            = metadata.Message
	MessageContent     = metadata.MessageContent
	MessageType        = metadata.MessageType
	Tag                = metadata.Tag
	PluginCleaningData = metadata.PluginCleaningData
)

const (
	MessageSay   = metadata.MessageSay
	MessageWarn  = metadata.MessageWarn
	MessageError = metadata.MessageError
)

// DefaultGroupName is the implicit group every plugin belongs to absent an
// explicit assignment.
const DefaultGroupName = metadata.DefaultGroupName
