// Package config loads the service configuration from a .env file, an
// optional YAML file and the process environment, in that order of precedence
// (environment wins).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the main configuration structure for the service.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	LLM    LLMConfig    `yaml:"llm"`
	Store  StoreConfig  `yaml:"store"`
	Import ImportConfig `yaml:"import"`
	Synth  SynthConfig  `yaml:"synth"`
	// PDFLicenseKey is the metered UniDoc key used when importing PDF notes.
	PDFLicenseKey string `yaml:"pdf_license_key,omitempty"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// LLMConfig selects and configures the text-generation backend.
type LLMConfig struct {
	Provider string        `yaml:"provider"` // Available options: gemini, ollama, openai
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key,omitempty"`
	BaseURL  string        `yaml:"base_url,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// StoreConfig selects the note store backing keyword retrieval.
type StoreConfig struct {
	Provider       string `yaml:"provider"` // Available options: chroma, sqlite, memory
	ChromaURL      string `yaml:"chroma_url,omitempty"`
	Collection     string `yaml:"collection,omitempty"`
	SQLitePath     string `yaml:"sqlite_path,omitempty"`
	EmbeddingModel string `yaml:"embedding_model,omitempty"`
	EmbeddingURL   string `yaml:"embedding_url,omitempty"`
}

// ImportConfig controls the directory importer. An empty Path disables it.
type ImportConfig struct {
	Path         string `yaml:"path,omitempty"`
	UserID       string `yaml:"user_id,omitempty"`
	Watch        bool   `yaml:"watch"`
	ChunkSize    int    `yaml:"chunk_size,omitempty"`
	ChunkOverlap int    `yaml:"chunk_overlap,omitempty"`
}

type SynthConfig struct {
	StrictGrounding bool `yaml:"strict_grounding"`
}

// DefaultOllamaURL is the local Ollama server used when no base URL is set.
const DefaultOllamaURL = "http://localhost:11434"

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Log:    LogConfig{Level: "info"},
		LLM: LLMConfig{
			Provider: ProviderOllama,
			Model:    "deepseek-r1:1.5b",
			Timeout:  60 * time.Second,
		},
		Store: StoreConfig{
			Provider:       StoreSQLite,
			Collection:     "notes",
			SQLitePath:     "notes.db",
			EmbeddingModel: "nomic-embed-text:v1.5",
			EmbeddingURL:   DefaultOllamaURL,
		},
		Import: ImportConfig{
			ChunkSize:    1000,
			ChunkOverlap: 100,
		},
	}
}

// Load builds the configuration. A missing .env file is not an error; a
// missing file named by NOTECHAT_CONFIG is.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("NOTECHAT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if strings.EqualFold(cfg.LLM.Provider, ProviderOllama) && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultOllamaURL
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.Store.Provider, "NOTE_STORE")
	setString(&c.Store.ChromaURL, "CHROMA_URL")
	setString(&c.Store.Collection, "CHROMA_COLLECTION")
	setString(&c.Store.SQLitePath, "SQLITE_PATH")
	setString(&c.Store.EmbeddingModel, "EMBEDDING_MODEL")
	setString(&c.Store.EmbeddingURL, "EMBEDDING_URL")
	setString(&c.Import.Path, "INDEX_PATH")
	setString(&c.Import.UserID, "INDEX_USER_ID")
	setString(&c.PDFLicenseKey, "UNIDOC_LICENSE_KEY")

	// The API key variable depends on the provider.
	switch strings.ToLower(c.LLM.Provider) {
	case ProviderGemini:
		setString(&c.LLM.APIKey, "GEMINI_API_KEY")
	case ProviderOpenAI:
		setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	}

	if err := setBool(&c.Log.Development, "LOG_DEVELOPMENT"); err != nil {
		return err
	}
	if err := setBool(&c.Import.Watch, "INDEX_WATCH"); err != nil {
		return err
	}
	if err := setBool(&c.Synth.StrictGrounding, "SYNTH_STRICT_GROUNDING"); err != nil {
		return err
	}
	if err := setInt(&c.Import.ChunkSize, "INDEX_CHUNK_SIZE"); err != nil {
		return err
	}
	if err := setInt(&c.Import.ChunkOverlap, "INDEX_CHUNK_OVERLAP"); err != nil {
		return err
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LLM_TIMEOUT: %w", err)
		}
		c.LLM.Timeout = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
