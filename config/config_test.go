package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NOTECHAT_CONFIG", "")
	t.Setenv("LLM_PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, StoreSQLite, cfg.Store.Provider)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 1000, cfg.Import.ChunkSize)
	assert.False(t, cfg.Synth.StrictGrounding)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NOTECHAT_CONFIG", "")
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_MODEL", "gemini-2.5-flash")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("NOTE_STORE", "memory")
	t.Setenv("SYNTH_STRICT_GROUNDING", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, StoreMemory, cfg.Store.Provider)
	assert.True(t, cfg.Synth.StrictGrounding)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notechat.yaml")
	content := `
server:
  port: "7000"
llm:
  provider: openai
  model: gpt-4o-mini
  api_key: from-file
store:
  provider: chroma
  collection: my-notes
import:
  path: /tmp/notes
  user_id: "42"
  watch: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("NOTECHAT_CONFIG", path)
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7001", cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "from-file", cfg.LLM.APIKey)
	assert.Equal(t, "my-notes", cfg.Store.Collection)
	assert.Equal(t, "42", cfg.Import.UserID)
	assert.True(t, cfg.Import.Watch)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, 1000, cfg.Import.ChunkSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("NOTECHAT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BadBool(t *testing.T) {
	t.Setenv("NOTECHAT_CONFIG", "")
	t.Setenv("INDEX_WATCH", "sometimes")
	_, err := Load()
	assert.ErrorContains(t, err, "INDEX_WATCH")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = ""
	cfg.LLM.Provider = "claude-local"
	cfg.Store.Provider = "mongo"
	cfg.Import.Path = "/notes"
	cfg.Import.ChunkOverlap = 5000

	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"server.port",
		"llm.provider",
		"store.provider",
		"import.user_id",
		"import.chunk_overlap",
	}, fields)
	assert.Contains(t, err.Error(), "found 5 configuration error(s)")
}

func TestValidate_APIKeyRequired(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = ProviderGemini
	cfg.LLM.APIKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.api_key")
}

func TestLoad_OllamaURLOnlyForOllama(t *testing.T) {
	t.Setenv("NOTECHAT_CONFIG", "")
	t.Setenv("LLM_BASE_URL", "")

	t.Setenv("LLM_PROVIDER", "ollama")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaURL, cfg.LLM.BaseURL)

	t.Setenv("LLM_PROVIDER", "openai")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.BaseURL)
}
