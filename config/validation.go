package config

import (
	"fmt"
	"strings"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	StoreChroma = "chroma"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "found %d configuration error(s):\n", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&b, "  %d. [%s] %s\n", i+1, err.Field, err.Message)
	}
	return b.String()
}

// Validate checks the whole configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, ValidationError{Field: "server.port", Message: "port is required"})
	}

	errs = append(errs, c.validateLLM()...)
	errs = append(errs, c.validateStore()...)
	errs = append(errs, c.validateImport()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateLLM() []ValidationError {
	var errs []ValidationError
	switch strings.ToLower(c.LLM.Provider) {
	case ProviderGemini, ProviderOpenAI:
		if c.LLM.APIKey == "" {
			errs = append(errs, ValidationError{
				Field:   "llm.api_key",
				Message: fmt.Sprintf("api key is required for provider %q", c.LLM.Provider),
			})
		}
	case ProviderOllama:
		if c.LLM.BaseURL == "" {
			errs = append(errs, ValidationError{Field: "llm.base_url", Message: "base url is required for provider \"ollama\""})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider %q (available: gemini, ollama, openai)", c.LLM.Provider),
		})
	}
	if c.LLM.Model == "" {
		errs = append(errs, ValidationError{Field: "llm.model", Message: "model is required"})
	}
	if c.LLM.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "llm.timeout", Message: "timeout must not be negative"})
	}
	return errs
}

func (c *Config) validateStore() []ValidationError {
	var errs []ValidationError
	switch strings.ToLower(c.Store.Provider) {
	case StoreChroma:
		if c.Store.Collection == "" {
			errs = append(errs, ValidationError{Field: "store.collection", Message: "collection is required for chroma"})
		}
		if c.Store.EmbeddingModel == "" {
			errs = append(errs, ValidationError{Field: "store.embedding_model", Message: "embedding model is required for chroma"})
		}
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, ValidationError{Field: "store.sqlite_path", Message: "sqlite path is required"})
		}
	case StoreMemory:
	default:
		errs = append(errs, ValidationError{
			Field:   "store.provider",
			Message: fmt.Sprintf("unknown note store %q (available: chroma, sqlite, memory)", c.Store.Provider),
		})
	}
	return errs
}

func (c *Config) validateImport() []ValidationError {
	if c.Import.Path == "" {
		return nil
	}
	var errs []ValidationError
	if c.Import.UserID == "" {
		errs = append(errs, ValidationError{Field: "import.user_id", Message: "user id is required when an import path is set"})
	}
	if c.Import.ChunkSize <= 0 {
		errs = append(errs, ValidationError{Field: "import.chunk_size", Message: "chunk size must be positive"})
	}
	if c.Import.ChunkOverlap < 0 || c.Import.ChunkOverlap >= c.Import.ChunkSize {
		errs = append(errs, ValidationError{Field: "import.chunk_overlap", Message: "chunk overlap must be in [0, chunk_size)"})
	}
	return errs
}
