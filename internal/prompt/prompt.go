// Package prompt renders the on-disk prompt templates and cleans raw model
// output. Templates use {placeholder} tokens substituted verbatim, so JSON
// braces inside a template body are left alone.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ai-companion/internal/history"
)

const (
	responseTemplate   = "response_prompt.txt"
	analysisTemplate   = "analyze_memories.txt"
	extractionTemplate = "extract_memories.txt"
)

// Builder renders persona-aware prompts. Persona and user-profile text are
// read-only inputs loaded once per process.
type Builder struct {
	dir         string
	persona     string
	userProfile string
}

func NewBuilder(promptsDir, persona, userProfile string) *Builder {
	return &Builder{dir: promptsDir, persona: persona, userProfile: userProfile}
}

// Response builds the main reply prompt from the new input, pre-rendered
// history lines and the current mood (empty when none is known yet).
func (b *Builder) Response(newInput, formattedHistory, mood string) (string, error) {
	base, err := b.load(responseTemplate)
	if err != nil {
		return "", err
	}
	r := strings.NewReplacer(
		"{new_input}", newInput,
		"{personality}", b.persona,
		"{user_file}", b.userProfile,
		"{mood}", mood,
		"{history}", formattedHistory,
	)
	return r.Replace(base), nil
}

// Analysis builds the mood-analysis prompt. No history, persona or mood
// context is attached.
func (b *Builder) Analysis(input string) (string, error) {
	return b.bare(analysisTemplate, input)
}

// Extraction builds the memory-extraction prompt from a history transcript.
func (b *Builder) Extraction(transcript string) (string, error) {
	return b.bare(extractionTemplate, transcript)
}

func (b *Builder) bare(name, input string) (string, error) {
	base, err := b.load(name)
	if err != nil {
		return "", err
	}
	return strings.NewReplacer("{new_input}", input).Replace(base), nil
}

func (b *Builder) load(name string) (string, error) {
	path := filepath.Join(b.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("prompt template %s: %w", path, err)
	}
	return string(data), nil
}

var roleLabelRe = regexp.MustCompile(`(?i)\b(Assistant|User)\s*:\s*`)

// FormatHistory renders the last k turns as alternating role-labeled lines.
// Stray role-label tokens are stripped out of message bodies so a message
// cannot inject fake role markers into the prompt.
func FormatHistory(msgs []history.Message, k int) string {
	if k >= 0 && len(msgs) > k {
		msgs = msgs[len(msgs)-k:]
	}
	var b strings.Builder
	for _, m := range msgs {
		prefix := "assistant:"
		if m.Role == "user" {
			prefix = "User:"
		}
		clean := strings.TrimSpace(roleLabelRe.ReplaceAllString(m.Content, ""))
		b.WriteString(prefix)
		b.WriteString(" ")
		b.WriteString(clean)
		b.WriteString("\n")
	}
	return b.String()
}
