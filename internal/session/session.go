// Package session drives one conversation: per inbound message it logs the
// user event, builds a persona-aware prompt, invokes the generation backend,
// cleans and delivers the reply, logs the assistant event and re-derives the
// mood from recent history. Each connection owns its own Session; there is
// no cross-session shared state.
package session

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"ai-companion/internal/history"
	"ai-companion/internal/jsonblock"
	"ai-companion/internal/llm"
	"ai-companion/internal/memory"
	"ai-companion/internal/prompt"
	"ai-companion/internal/state"
	"ai-companion/internal/storage"
)

// ExitCommand closes the session when received as a whole message.
const ExitCommand = "exit"

// Conn is the duplex text channel the session talks to. ReadMessage blocks
// until the next inbound utterance; errors from either method mean the peer
// is gone.
type Conn interface {
	ReadMessage() (string, error)
	WriteMessage(text string) error
}

type Params struct {
	LLM      llm.Client
	Ledger   storage.Ledger
	Memories *memory.Store
	State    *state.Store
	Prompts  *prompt.Builder
	History  *history.Log

	// HistoryWindow is the number of past turns rendered into the reply
	// prompt. AnalysisWindow is the number of recent events fed to mood
	// analysis. ExtractEvery triggers memory consolidation every N turns
	// when positive; ExtractWindow bounds its transcript.
	HistoryWindow  int
	AnalysisWindow int
	ExtractEvery   int
	ExtractWindow  int
}

type Session struct {
	llm      llm.Client
	ledger   storage.Ledger
	memories *memory.Store
	state    *state.Store
	prompts  *prompt.Builder
	history  *history.Log

	historyWindow  int
	analysisWindow int
	extractEvery   int
	extractWindow  int
}

func New(p Params) *Session {
	if p.History == nil {
		p.History = history.New()
	}
	if p.HistoryWindow <= 0 {
		p.HistoryWindow = 10
	}
	if p.AnalysisWindow <= 0 {
		p.AnalysisWindow = 1
	}
	if p.ExtractWindow <= 0 {
		p.ExtractWindow = 10
	}
	return &Session{
		llm:            p.LLM,
		ledger:         p.Ledger,
		memories:       p.Memories,
		state:          p.State,
		prompts:        p.Prompts,
		history:        p.History,
		historyWindow:  p.HistoryWindow,
		analysisWindow: p.AnalysisWindow,
		extractEvery:   p.ExtractEvery,
		extractWindow:  p.ExtractWindow,
	}
}

// Run processes inbound messages until the peer disconnects or sends the
// exit command. Turns are strictly sequential: no message is read until the
// previous turn has fully completed.
func (s *Session) Run(ctx context.Context, conn Conn) error {
	for {
		text, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if strings.EqualFold(strings.TrimSpace(text), ExitCommand) {
			return nil
		}
		s.HandleTurn(ctx, conn, text)
	}
}

// HandleTurn runs one full turn. The user event is appended before
// generation so input survives a backend failure; generation failure aborts
// only this turn, and every failure past the reply is a silent degrade.
func (s *Session) HandleTurn(ctx context.Context, conn Conn, text string) {
	if err := s.ledger.Append(storage.RoleUser, text); err != nil {
		log.Printf("failed to log user event: %v", err)
	}

	formatted := prompt.FormatHistory(s.history.Recent(s.historyWindow), s.historyWindow)
	p, err := s.prompts.Response(text, formatted, s.state.Mood())
	if err != nil {
		log.Printf("failed to build reply prompt, turn aborted: %v", err)
		return
	}

	resp, err := s.llm.Generate(ctx, p)
	if err != nil {
		log.Printf("generation failed, turn aborted: %v", err)
		return
	}

	reply, tags := prompt.Clean(resp.Content)
	if len(tags) > 0 {
		log.Printf("reply carried %d inline tag(s): %v", len(tags), tags)
	}

	if err := conn.WriteMessage("Assistant: " + reply); err != nil {
		log.Printf("failed to send reply: %v", err)
	}
	log.Printf("Assistant: %q", reply)

	if err := s.ledger.Append(storage.RoleAssistant, reply); err != nil {
		log.Printf("failed to log assistant event: %v", err)
	}
	// The rolling history gets the turn even when ledger writes were lost,
	// so the conversation stays coherent in-process.
	s.history.AppendUser(text)
	s.history.AppendAssistant(reply)

	s.analyzeMood(ctx)
	s.advanceTurn(ctx)
}

// analyzeMood asks the backend to assess the most recent events and persists
// the mood label when one comes back. Every failure here degrades to "no
// mood update this turn".
func (s *Session) analyzeMood(ctx context.Context) {
	var lines []string
	for _, ev := range s.ledger.ReadRecent(s.analysisWindow) {
		t := strings.TrimSpace(ev.Text)
		if t == "" {
			continue
		}
		lines = append(lines, ev.Role+": "+t)
	}
	if len(lines) == 0 {
		return
	}

	p, err := s.prompts.Analysis(strings.Join(lines, "\n"))
	if err != nil {
		log.Printf("mood analysis skipped: %v", err)
		return
	}
	resp, err := s.llm.Generate(ctx, p)
	if err != nil {
		log.Printf("mood analysis failed: %v", err)
		return
	}

	cleaned, _ := prompt.Clean(resp.Content)
	block, ok := jsonblock.Extract(strings.ToLower(cleaned))
	if !ok {
		return
	}
	var assessment map[string]any
	if err := json.Unmarshal([]byte(block), &assessment); err != nil {
		return
	}
	mood, _ := assessment["mood"].(string)
	if mood == "" {
		return
	}
	if err := s.state.Save(map[string]any{"mood": mood}); err != nil {
		log.Printf("failed to persist mood: %v", err)
		return
	}
	log.Printf("[mood] %s", mood)
}

// advanceTurn bumps the persisted turn counter and, when the every-N-turns
// trigger is enabled and reached, runs memory consolidation.
func (s *Session) advanceTurn(ctx context.Context) {
	turn := s.state.Turn() + 1
	if s.extractEvery > 0 && turn >= s.extractEvery {
		if n := s.Consolidate(ctx); n > 0 {
			log.Printf("[memory] consolidated %d fact(s)", n)
		}
		turn = 0
	}
	if err := s.state.Save(map[string]any{"turn": turn}); err != nil {
		log.Printf("failed to persist turn counter: %v", err)
	}
}
