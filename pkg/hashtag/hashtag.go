package hashtag

import (
	"regexp"
	"strings"
)

const (
	MaxLength = 50
	MaxPerGif = 10
)

var tagRegex = regexp.MustCompile(`#([A-Za-z0-9_]{1,50})`)

// Extract returns the lowercased, de-duplicated hashtags of text in order of
// first appearance, capped at MaxPerGif.
func Extract(text string) []string {
	matches := tagRegex.FindAllStringSubmatchIndex(text, -1)
	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		// a tag longer than the limit is not a tag at all
		if m[1] < len(text) && isTagByte(text[m[1]]) {
			continue
		}
		name := strings.ToLower(text[m[2]:m[3]])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		tags = append(tags, name)
		if len(tags) == MaxPerGif {
			break
		}
	}
	return tags
}

// Normalize strips a leading '#' and lowercases a user supplied tag.
// It returns "" when the result is not a valid tag.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "#"))
	if name == "" || len(name) > MaxLength {
		return ""
	}
	for i := 0; i < len(name); i++ {
		if !isTagByte(name[i]) {
			return ""
		}
	}
	return name
}

func isTagByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
