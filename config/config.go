package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the assistant.
type Config struct {
	Ingest    IngestConfig    `yaml:"ingest"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	IndexPath string          `yaml:"index_path"`
}

// IngestConfig holds document loading and chunking configuration.
type IngestConfig struct {
	DataDir      string   `yaml:"data_dir"`
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK          int `yaml:"top_k"`
	HistoryWindow int `yaml:"history_window"`
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "jina", "ollama", "custom"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for the API key
	BaseURL   string `yaml:"base_url"`    // Only for "ollama" and "custom"
	BatchSize int    `yaml:"batch_size"`
}

// LLMConfig holds answer-generation provider configuration.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "groq", "openai", "ollama", "custom"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			DataDir:      "./data",
			Includes:     []string{"**/*.pdf", "**/*.txt", "**/*.md"},
			Excludes:     []string{"**/.*/**"},
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Retrieve: RetrieveConfig{
			TopK:          4,
			HistoryWindow: 2,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			BatchSize: 100,
		},
		LLM: LLMConfig{
			Provider:  "groq",
			Model:     "llama-3.1-8b-instant",
			APIKeyEnv: "GROQ_API_KEY",
		},
		IndexPath: "my_vector_store.db",
	}
}

// Load loads configuration from a YAML file, then applies environment
// variable overrides. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			if err := cfg.validate(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for leximini.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "leximini.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".leximini", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with the recognized environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("DATA_DIRECTORY"); v != "" {
		c.Ingest.DataDir = v
	}
	if v := os.Getenv("VECTOR_STORE_PATH"); v != "" {
		c.IndexPath = v
	}
	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		c.Embedding.Provider = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		c.Embedding.Model = v
	}
	if v := os.Getenv("GROQ_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("TOP_K"); v != "" {
		// Non-positive values fall through to validate.
		if k, err := strconv.Atoi(v); err == nil {
			c.Retrieve.TopK = k
		}
	}
}

func (c *Config) validate() error {
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("ingest.chunk_size must be positive, got %d", c.Ingest.ChunkSize)
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap must be in [0, chunk_size), got %d", c.Ingest.ChunkOverlap)
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("retrieve.top_k must be positive, got %d", c.Retrieve.TopK)
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
