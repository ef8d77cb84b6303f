package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "tender_prompt.txt", cfg.Prompt.SystemInstructionPath)
}

func TestLoadConfig_YamlOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
ai:
  provider: openai
  model: gpt-4o-mini
tender:
  number: TDR-2025-042
`), 0o644))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "TDR-2025-042", cfg.Tender.Number)
}

func TestLoadConfig_EnvironmentWins(t *testing.T) {
	t.Setenv("TENDERGEN_AI_PROVIDER", "openai")
	t.Setenv("TENDERGEN_API_KEY", "sk-test")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
}

func TestLoadSystemInstruction_MissingFileIsFatal(t *testing.T) {
	cfg := defaults()
	cfg.Prompt.SystemInstructionPath = filepath.Join(t.TempDir(), "absent.txt")

	_, err := cfg.LoadSystemInstruction()

	assert.Error(t, err)
}

func TestLoadSystemInstruction_ReadsAndTrims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("You draft tenders.\n"), 0o644))
	cfg := defaults()
	cfg.Prompt.SystemInstructionPath = path

	text, err := cfg.LoadSystemInstruction()

	require.NoError(t, err)
	assert.Equal(t, "You draft tenders.", text)
}

func TestIssueDate_ParsesConfiguredDate(t *testing.T) {
	cfg := defaults()
	cfg.Tender.IssueDate = "05-03-2024"

	d := cfg.IssueDate()

	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, 5, d.Day())
}
