package loot

import (
	"errors"
	"fmt"
)

// Sentinel errors that callers can match with errors.Is regardless of which
// typed error wraps them (spec.md §7).
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrFileAccess          = errors.New("file access error")
	ErrPluginParse         = errors.New("plugin parse error")
	ErrConditionSyntax     = errors.New("condition syntax error")
	ErrConditionEvaluation = errors.New("condition evaluation error")
	ErrCyclicInteraction   = errors.New("cyclic interaction")
	ErrUndefinedGroup      = errors.New("undefined group")
	ErrGameDetection       = errors.New("game detection error")
)

// InvalidArgumentError reports a bad path, a duplicate filename passed to
// LoadPlugins, or an empty string where one is required.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string { return "invalid argument: " + e.Message }
func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

// FileAccessError reports a missing or unreadable file, a read-only write
// target, or a path that is not of the expected kind (e.g. a file where a
// directory was required).
type FileAccessError struct {
	Path    string
	Message string
}

func (e *FileAccessError) Error() string {
	if e.Path == "" {
		return "file access error: " + e.Message
	}
	return fmt.Sprintf("file access error: %s: %s", e.Message, e.Path)
}
func (e *FileAccessError) Unwrap() error { return ErrFileAccess }

// PluginParseError reports a bad magic number, truncated file, unsupported
// version or unresolvable master index encountered while parsing a plugin.
type PluginParseError struct {
	Path    string
	Message string
}

func (e *PluginParseError) Error() string {
	return fmt.Sprintf("plugin parse error: %s: %s", e.Path, e.Message)
}
func (e *PluginParseError) Unwrap() error { return ErrPluginParse }

// ConditionSyntaxError reports a malformed condition string, carrying the
// offending string and the byte position the parser stopped at.
type ConditionSyntaxError struct {
	Condition string
	Position  int
	Message   string
}

func (e *ConditionSyntaxError) Error() string {
	return fmt.Sprintf("condition syntax error at position %d in %q: %s", e.Position, e.Condition, e.Message)
}
func (e *ConditionSyntaxError) Unwrap() error { return ErrConditionSyntax }

// ConditionEvaluationError reports a runtime failure evaluating an
// otherwise well-formed condition, e.g. permission denied reading a file
// referenced by a checksum predicate.
type ConditionEvaluationError struct {
	Condition string
	Cause     error
}

func (e *ConditionEvaluationError) Error() string {
	return fmt.Sprintf("condition evaluation error in %q: %v", e.Condition, e.Cause)
}
func (e *ConditionEvaluationError) Unwrap() error { return ErrConditionEvaluation }

// EdgeKind identifies the provenance and strength of an edge participating
// in a reported cycle or conflict.
type EdgeKind string

const (
	EdgeHard           EdgeKind = "hard"
	EdgeMaster         EdgeKind = "master"
	EdgeHardcoded      EdgeKind = "hardcoded"
	EdgeMasterlistHard EdgeKind = "masterlist"
	EdgeUserlistHard   EdgeKind = "userlist"
	EdgeGroup          EdgeKind = "group"
	EdgeOverlap        EdgeKind = "overlap"
	EdgeTieBreak       EdgeKind = "tie-break"
)

// CycleVertex is one participant in a reported cycle: the plugin (or group)
// name, and the kind of edge leading to the next vertex in the cycle.
type CycleVertex struct {
	Name     string
	EdgeKind EdgeKind
}

// CyclicInteractionError reports a cycle detected either in the group graph
// or among hard edges of the plugin graph (spec.md §4.4, §4.5). It carries
// the full cycle, in order, so the host can render a useful diagnostic.
type CyclicInteractionError struct {
	Cycle []CycleVertex
}

func (e *CyclicInteractionError) Error() string {
	names := make([]string, len(e.Cycle))
	for i, v := range e.Cycle {
		names[i] = v.Name
	}
	return fmt.Sprintf("cyclic interaction detected: %v", names)
}
func (e *CyclicInteractionError) Unwrap() error { return ErrCyclicInteraction }

// UndefinedGroupError reports a reference to a group name that was never
// defined (spec.md §4.4 pre-condition invariant).
type UndefinedGroupError struct {
	Group string
}

func (e *UndefinedGroupError) Error() string {
	return fmt.Sprintf("undefined group: %s", e.Group)
}
func (e *UndefinedGroupError) Unwrap() error { return ErrUndefinedGroup }

// GameDetectionError reports that a game's install path exists but its
// master file is missing, so the game type cannot be confirmed.
type GameDetectionError struct {
	GamePath string
}

func (e *GameDetectionError) Error() string {
	return fmt.Sprintf("game detection error: master file not found under %s", e.GamePath)
}
func (e *GameDetectionError) Unwrap() error { return ErrGameDetection }
