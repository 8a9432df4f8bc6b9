// Package jsonblock pulls the first well-formed JSON object or array out of
// free-form model output. A failed parse is a control-flow branch, not an
// error: callers get (candidate, true) or ("", false) and decide themselves
// whether to degrade or abort.
package jsonblock

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedRe = regexp.MustCompile("(?i)```(?:json)?\\s*(\\{[\\s\\S]*?\\}|\\[[\\s\\S]*?\\])\\s*```")

// Extract returns the substring of the first syntactically valid JSON object
// or array embedded in text. It first looks for a fenced ``` block (optionally
// tagged json); otherwise it scans from each occurrence of '{' (then '[')
// keeping a depth counter, and validates the candidate whenever depth returns
// to zero. An unparseable candidate is skipped and scanning resumes from the
// next occurrence of the opening character.
func Extract(text string) (string, bool) {
	if m := fencedRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	for _, pair := range [...][2]byte{{'{', '}'}, {'[', ']'}} {
		openCh, closeCh := pair[0], pair[1]
		start := strings.IndexByte(text, openCh)
		for start != -1 {
			depth := 0
		scan:
			for i := start; i < len(text); i++ {
				switch text[i] {
				case openCh:
					depth++
				case closeCh:
					depth--
					if depth == 0 {
						candidate := text[start : i+1]
						if json.Valid([]byte(candidate)) {
							return candidate, true
						}
						break scan
					}
				}
			}
			next := strings.IndexByte(text[start+1:], openCh)
			if next == -1 {
				break
			}
			start = start + 1 + next
		}
	}
	return "", false
}
