package event

import (
	"regexp"
	"strings"
)

// SentinelTag classifies events whose title carries no bracketed
// prefix.
const SentinelTag = "未分類"

var (
	tagPrefixRe = regexp.MustCompile(`^\s*\[([^\]]+)\]`)
	stripRe     = regexp.MustCompile(`^\s*\[[^\]]+\]\s*`)
)

// ExtractTag pulls the leading [label] prefix out of a title. Titles
// without one, and labels that trim to nothing, group under
// SentinelTag.
func ExtractTag(title string) string {
	m := tagPrefixRe.FindStringSubmatch(title)
	if m == nil {
		return SentinelTag
	}
	tag := strings.TrimSpace(m[1])
	if tag == "" {
		return SentinelTag
	}
	return tag
}

// StripTagPrefix removes a leading [label] prefix and the whitespace
// after it, recovering the display title.
func StripTagPrefix(title string) string {
	return stripRe.ReplaceAllString(title, "")
}

// BuildTaggedTitle prepends "[tag] " to a title unless the tag is
// empty or the title already starts with a bracketed prefix.
func BuildTaggedTitle(tag, title string) string {
	cleanTitle := strings.TrimSpace(title)
	cleanTag := strings.TrimSpace(tag)
	if cleanTag == "" {
		return cleanTitle
	}
	if tagPrefixRe.MatchString(cleanTitle) {
		return cleanTitle
	}
	return "[" + cleanTag + "] " + cleanTitle
}
