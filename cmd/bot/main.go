package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"ai-companion/internal/config"
	"ai-companion/internal/history"
	"ai-companion/internal/llm"
	"ai-companion/internal/memory"
	"ai-companion/internal/prompt"
	"ai-companion/internal/scheduler"
	"ai-companion/internal/server"
	"ai-companion/internal/session"
	"ai-companion/internal/state"
	"ai-companion/internal/storage"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	persona := readTrim(cfg.PersonalityPath())
	if persona == "" {
		log.Printf("persona file missing or empty at %s", cfg.PersonalityPath())
	}
	userProfile := readTrim(cfg.UserProfilePath())
	if userProfile == "" {
		log.Printf("user profile missing or empty at %s", cfg.UserProfilePath())
	}

	memDir := cfg.MemoryDir()
	if err := os.MkdirAll(memDir, 0o755); err != nil {
		log.Fatalf("failed to create memory dir %s: %v", memDir, err)
	}

	ledger, err := storage.NewFileLedger(filepath.Join(memDir, "events.jsonl"))
	if err != nil {
		log.Fatalf("failed to init event ledger: %v", err)
	}
	memories, err := memory.NewStore(memDir)
	if err != nil {
		log.Fatalf("failed to init memory store: %v", err)
	}
	stateStore := state.NewStore(filepath.Join(memDir, "state.json"))

	llmClient := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.LLMStreaming)
	prompts := prompt.NewBuilder(cfg.PromptsDir, persona, userProfile)

	newSession := func() *session.Session {
		boot := ledger.ReadRecent(cfg.BootHistory)
		log.Printf("[init] loaded %d history messages from events file", len(boot))
		return session.New(session.Params{
			LLM:            llmClient,
			Ledger:         ledger,
			Memories:       memories,
			State:          stateStore,
			Prompts:        prompts,
			History:        history.FromEvents(boot),
			HistoryWindow:  cfg.HistoryWindow,
			AnalysisWindow: cfg.AnalysisWindow,
			ExtractEvery:   cfg.MemoryExtractEvery,
			ExtractWindow:  cfg.MemoryExtractWindow,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MemoryExtractCron != "" {
		sched := scheduler.New()
		err := sched.Start(cfg.MemoryExtractCron, func(ctx context.Context) error {
			n := newSession().Consolidate(ctx)
			log.Printf("[memory] scheduled consolidation saved %d fact(s)", n)
			return nil
		})
		if err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	srv := server.New(cfg.ListenAddr, newSession)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}

func readTrim(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
