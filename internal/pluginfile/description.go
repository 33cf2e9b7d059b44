package pluginfile

import (
	"regexp"
	"strings"
)

// versionKeywordPattern matches an explicit "Version X.Y.Z" (or "Ver X.Y",
// either with an optional colon) label followed by a dotted numeric version, the common case in plugin
// descriptions (spec.md §3 "description-derived version string"). No
// third-party regex library appears anywhere in the example pack, so this
// stays on the standard library's regexp package.
var versionKeywordPattern = regexp.MustCompile(`(?i)\bver(?:sion)?[:\s]+v?(\d+(?:\.\d+)+)`)

// bareVersionPattern falls back to the first standalone "vX.Y" or "X.Y.Z"
// token when no "Version:" label is present.
var bareVersionPattern = regexp.MustCompile(`\bv?(\d+(?:\.\d+){1,3})\b`)

// bashTagsPattern extracts the comma-separated tag list out of a
// "{{BASH:Tag1,Tag2}}" marker, the convention Wrye Bash and LOOT's
// masterlist generation both read out of a plugin's description.
var bashTagsPattern = regexp.MustCompile(`(?i)\{\{BASH:([^}]*)\}\}`)

// extractVersion pulls the description-derived version string out of a
// plugin's description field, or "" if none is present.
func extractVersion(description string) string {
	if m := versionKeywordPattern.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	if m := bareVersionPattern.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	return ""
}

// extractBashTags pulls the Bash Tag suggestions out of a plugin's
// description field, e.g. "{{BASH:Delev,Relev}}" yields ["Delev", "Relev"].
func extractBashTags(description string) []string {
	m := bashTagsPattern.FindStringSubmatch(description)
	if m == nil {
		return nil
	}
	var tags []string
	for _, raw := range strings.Split(m[1], ",") {
		tag := strings.TrimSpace(raw)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
