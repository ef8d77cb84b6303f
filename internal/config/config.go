// Package config loads application configuration from config.yaml, .env and
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	AI struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"ai"`
	Prompt struct {
		// SystemInstructionPath points at the drafting system instruction.
		// The file is required; a session cannot start without it.
		SystemInstructionPath string `yaml:"system_instruction_path"`
	} `yaml:"prompt"`
	Tender struct {
		Title     string `yaml:"title"`
		Number    string `yaml:"number"`
		IssueDate string `yaml:"issue_date"` // dd-mm-yyyy; empty means today
	} `yaml:"tender"`
}

// LoadConfig reads the YAML file, falling back to defaults when the file does
// not exist, then applies .env and environment overrides.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := defaults()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults + env only
	default:
		return nil, err
	}

	// 3. Override with environment variables if present
	if v := os.Getenv("TENDERGEN_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("TENDERGEN_AI_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := os.Getenv("TENDERGEN_AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("TENDERGEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TENDERGEN_SYSTEM_INSTRUCTION"); v != "" {
		cfg.Prompt.SystemInstructionPath = v
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.AI.Provider = "gemini"
	cfg.AI.Model = "gemini-2.0-flash"
	cfg.Prompt.SystemInstructionPath = "tender_prompt.txt"
	cfg.Tender.Title = "AI-Based Digital Infrastructure"
	cfg.Tender.Number = "TDR-2024-001"
	return cfg
}

// LoadSystemInstruction reads the drafting system instruction. A missing or
// empty file is fatal for session start.
func (c *Config) LoadSystemInstruction() (string, error) {
	b, err := os.ReadFile(c.Prompt.SystemInstructionPath)
	if err != nil {
		return "", fmt.Errorf("cannot load drafting system instruction: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", fmt.Errorf("drafting system instruction %s is empty", c.Prompt.SystemInstructionPath)
	}
	return text, nil
}

// IssueDate parses the configured issue date, defaulting to today.
func (c *Config) IssueDate() time.Time {
	if c.Tender.IssueDate == "" {
		return time.Now()
	}
	t, err := time.Parse("02-01-2006", c.Tender.IssueDate)
	if err != nil {
		return time.Now()
	}
	return t
}
