package prompt

import (
	"regexp"
	"strings"
)

// Tag is an auxiliary <key:value> annotation found in model output. Tags are
// parsed and surfaced but not consumed downstream yet.
type Tag struct {
	Key   string
	Value string
}

var (
	assistantSectionRe = regexp.MustCompile(`(?is)assistant:\s*(.*)`)
	toneAnnotationRe   = regexp.MustCompile(`Tone:\s*\w+\s*\|\s*Emotion:\s*\w+`)
	angleTagRe         = regexp.MustCompile(`<([^:>]+):([^>]+)>`)
)

// Clean extracts the usable reply from raw generation output: everything
// after the first case-insensitive "assistant:" marker (or the whole output
// when absent), with inline "Tone: X | Emotion: Y" annotations stripped.
// Any <key:value> angle tags are collected as metadata.
func Clean(raw string) (string, []Tag) {
	section := strings.TrimSpace(raw)
	if m := assistantSectionRe.FindStringSubmatch(raw); m != nil {
		section = strings.TrimSpace(m[1])
	}
	section = strings.TrimSpace(toneAnnotationRe.ReplaceAllString(section, ""))

	var tags []Tag
	for _, m := range angleTagRe.FindAllStringSubmatch(section, -1) {
		tags = append(tags, Tag{Key: m[1], Value: m[2]})
	}
	return section, tags
}
