package session

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"ai-companion/internal/jsonblock"
	"ai-companion/internal/prompt"
)

type memoryItem struct {
	Text       string   `json:"text"`
	Tags       []string `json:"tags"`
	Importance float64  `json:"importance"`
}

// Consolidate asks the backend to extract concise facts from the recent
// history window and upserts each into the memory store. It returns the
// number of facts saved; every failure degrades to zero saves.
func (s *Session) Consolidate(ctx context.Context) int {
	msgs := s.history.Recent(s.extractWindow)
	if len(msgs) == 0 {
		return 0
	}
	transcript := prompt.FormatHistory(msgs, s.extractWindow)

	p, err := s.prompts.Extraction(transcript)
	if err != nil {
		log.Printf("[memory] extraction skipped: %v", err)
		return 0
	}
	resp, err := s.llm.Generate(ctx, p)
	if err != nil {
		log.Printf("[memory] extraction failed: %v", err)
		return 0
	}

	cleaned, _ := prompt.Clean(resp.Content)
	block, ok := jsonblock.Extract(cleaned)
	if !ok {
		log.Printf("[memory] no JSON found; skipping")
		return 0
	}

	items, ok := decodeMemoryItems(block)
	if !ok {
		log.Printf("[memory] JSON shape not recognized; skipping")
		return 0
	}

	saved := 0
	for _, item := range items {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		importance := item.Importance
		if importance == 0 {
			importance = 0.2
		}
		if _, err := s.memories.Upsert(text, item.Tags, importance, "conversation"); err != nil {
			log.Printf("[memory] save failed: %v", err)
			continue
		}
		saved++
	}
	return saved
}

// decodeMemoryItems accepts either {"memories":[...]} or a bare list.
func decodeMemoryItems(block string) ([]memoryItem, bool) {
	var wrapper struct {
		Memories []memoryItem `json:"memories"`
	}
	if err := json.Unmarshal([]byte(block), &wrapper); err == nil && wrapper.Memories != nil {
		return wrapper.Memories, true
	}
	var items []memoryItem
	if err := json.Unmarshal([]byte(block), &items); err == nil {
		return items, true
	}
	return nil, false
}
