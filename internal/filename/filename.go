// Package filename implements a Unicode case-insensitive string type used
// everywhere a plugin or archive filename needs to be compared, sorted or
// used as a map key (spec.md §3: "equality and ordering are Unicode
// case-insensitive. Invariant: all lookups and de-duplication of plugins use
// this comparison").
package filename

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
)

// folder performs Unicode case folding so that comparisons are correct for
// more than the ASCII range a naive strings.ToLower would cover.
var folder = cases.Fold()

// Filename is a case-insensitive file name. The zero value is the empty
// filename. Two Filenames compare equal iff their Unicode case-folded forms
// are equal; ordering likewise compares folded forms, with ties broken by
// the original (unfolded) string so that Less has a total, deterministic
// order over any set of distinct raw strings.
type Filename struct {
	raw    string
	folded string
}

// New constructs a Filename from a raw string.
func New(raw string) Filename {
	return Filename{raw: raw, folded: folder.String(raw)}
}

// String returns the original, unfolded string the Filename was built from.
func (f Filename) String() string {
	return f.raw
}

// Folded returns the case-folded form, suitable for use as a map key.
func (f Filename) Folded() string {
	return f.folded
}

// Equal reports whether two Filenames are case-insensitively equal.
func (f Filename) Equal(other Filename) bool {
	return f.folded == other.folded
}

// Less implements a total order over Filenames: primarily by folded form,
// falling back to the raw form so that two different-cased spellings of an
// otherwise distinct name still order deterministically relative to a third
// name, and so repeated sorts of the same input are stable across runs.
func (f Filename) Less(other Filename) bool {
	if f.folded != other.folded {
		return f.folded < other.folded
	}
	return f.raw < other.raw
}

// IsEmpty reports whether the filename is the empty string.
func (f Filename) IsEmpty() bool {
	return f.raw == ""
}

// MarshalJSON serialises a Filename as its raw string, so a persisted
// Filename round-trips through the on-disk plugin cache intact.
func (f Filename) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.raw)
}

// UnmarshalJSON restores a Filename from its raw string, recomputing the
// folded form rather than trusting a persisted one.
func (f *Filename) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = New(raw)
	return nil
}

// TrimGhostSuffix removes a trailing ".ghost" extension (any case) from raw,
// returning the trimmed string and whether a suffix was present. Used by the
// plugin reader to recover the display/identity name of a ghosted plugin
// while still opening the file under its on-disk name (spec.md §4.1).
func TrimGhostSuffix(raw string) (trimmed string, wasGhosted bool) {
	const suffix = ".ghost"
	if len(raw) > len(suffix) && strings.EqualFold(raw[len(raw)-len(suffix):], suffix) {
		return raw[:len(raw)-len(suffix)], true
	}
	return raw, false
}
