package config

import (
	"log"
	"path/filepath"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:"0.0.0.0:5395"`

	// Generation backend (any OpenAI-compatible endpoint; defaults target a
	// local Ollama server).
	OpenAIAPIKey  string `env:"OPENAI_API_KEY" envDefault:"ollama"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"http://localhost:11434/v1"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"llama3"`
	LLMStreaming  bool   `env:"LLM_STREAMING" envDefault:"true"`

	// Static inputs
	ActivePersona string `env:"ACTIVE_PERSONA" envDefault:"default"`
	PersonasDir   string `env:"PERSONAS_DIR" envDefault:"personas"`
	ActiveUser    string `env:"ACTIVE_USER" envDefault:"default"`
	UsersDir      string `env:"USERS_DIR" envDefault:"users"`
	PromptsDir    string `env:"PROMPTS_DIR" envDefault:"prompts"`

	// Windows and triggers
	HistoryWindow       int    `env:"HISTORY_WINDOW" envDefault:"10"`
	BootHistory         int    `env:"BOOT_HISTORY" envDefault:"20"`
	AnalysisWindow      int    `env:"ANALYSIS_WINDOW" envDefault:"1"`
	MemoryExtractEvery  int    `env:"MEMORY_EXTRACT_EVERY" envDefault:"0"`
	MemoryExtractWindow int    `env:"MEMORY_EXTRACT_WINDOW" envDefault:"10"`
	MemoryExtractCron   string `env:"MEMORY_EXTRACT_CRON"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// PersonaDir is the directory of the active persona's files.
func (c *Config) PersonaDir() string {
	return filepath.Join(c.PersonasDir, c.ActivePersona)
}

// PersonalityPath is the persona description text file.
func (c *Config) PersonalityPath() string {
	return filepath.Join(c.PersonaDir(), "personality.txt")
}

// MemoryDir holds the persona's event ledger, memory ledger, index and state.
func (c *Config) MemoryDir() string {
	return filepath.Join(c.PersonaDir(), "memory")
}

// UserProfilePath is the active user's profile text file.
func (c *Config) UserProfilePath() string {
	return filepath.Join(c.UsersDir, c.ActiveUser+".txt")
}
