package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppInfo holds basic information about the running application.
type AppInfo struct {
	Name        string `yaml:"name"`        // application name
	Version     string `yaml:"version"`     // application version
	Environment string `yaml:"environment"` // "development", "production", ...
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address string `yaml:"address"` // listen address, e.g. ":8080"
}

// AuthConfig configures request identity resolution.
// Only bearer-token verification lives here; account management is handled
// by a separate service.
type AuthConfig struct {
	JwtSecret string `yaml:"jwtSecret"` // HMAC secret for bearer tokens
}

// LoggerConfig configures the structured logger.
type LoggerConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// OpenAIConfig holds credentials and the model name for an OpenAI-compatible
// provider.
type OpenAIConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// OllamaConfig holds connection details for a local Ollama instance.
type OllamaConfig struct {
	BaseURL string `yaml:"baseURL"` // defaults to http://localhost:11434
	Model   string `yaml:"model"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider string       `yaml:"provider"` // "openai" or "ollama"
	Dim      int          `yaml:"dim"`      // vector dimension of the chosen model
	OpenAI   OpenAIConfig `yaml:"openai"`
	Ollama   OllamaConfig `yaml:"ollama"`
}

// LLMConfig selects and configures the chat model provider.
type LLMConfig struct {
	Provider string       `yaml:"provider"` // "openai" or "ollama"
	OpenAI   OpenAIConfig `yaml:"openai"`
	Ollama   OllamaConfig `yaml:"ollama"`
}

// RAGConfig holds the knobs of the ingestion and retrieval pipelines.
//
// HistoryPersistLimit bounds how many stored messages are loaded per chat
// turn; HistoryPromptLimit bounds how many of those are forwarded to the
// model. They are distinct settings on purpose.
type RAGConfig struct {
	ChunkSize           int      `yaml:"chunkSize"`           // splitter segment bound, in runes
	ChunkOverlap        int      `yaml:"chunkOverlap"`        // shared trailing/leading runes between neighbours
	MaxContextChunks    int      `yaml:"maxContextChunks"`    // top-K retrieved per query
	HistoryPersistLimit int      `yaml:"historyPersistLimit"` // messages loaded from the store
	HistoryPromptLimit  int      `yaml:"historyPromptLimit"`  // messages forwarded to the model
	AllowedExtensions   []string `yaml:"allowedExtensions"`   // lowercased, with leading dot
	MaxUploadSize       int64    `yaml:"maxUploadSize"`       // bytes
}

// MySQLConfig holds the relational store connection settings.
type MySQLConfig struct {
	Address         string `yaml:"address"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // seconds
}

// MilvusConfig holds the vector index connection settings.
type MilvusConfig struct {
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
}

// MinIOConfig holds the object store connection settings used for raw
// uploaded files.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

// DatabaseConfigs groups every external store.
type DatabaseConfigs struct {
	MySQL  MySQLConfig  `yaml:"mysql"`
	Milvus MilvusConfig `yaml:"milvus"`
	MinIO  MinIOConfig  `yaml:"minio"`
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	App       AppInfo         `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Logger    LoggerConfig    `yaml:"logger"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	RAG       RAGConfig       `yaml:"rag"`
	Databases DatabaseConfigs `yaml:"databases"`
}

// Defaults mirror the original service settings and apply whenever the YAML
// omits a value.
const (
	DefaultChunkSize           = 1000
	DefaultChunkOverlap        = 200
	DefaultMaxContextChunks    = 5
	DefaultHistoryPersistLimit = 20
	DefaultHistoryPromptLimit  = 10
	DefaultMaxUploadSize       = 10 << 20 // 10 MiB
)

// DefaultAllowedExtensions lists the file types the extractor understands.
func DefaultAllowedExtensions() []string {
	return []string{".txt", ".md", ".pdf", ".docx", ".xlsx", ".png", ".jpg", ".jpeg", ".tiff"}
}

// LoadConfig reads and parses the YAML configuration file at path, filling
// in defaults for any omitted RAG settings.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %q: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = DefaultChunkSize
	}
	if c.RAG.ChunkOverlap <= 0 {
		c.RAG.ChunkOverlap = DefaultChunkOverlap
	}
	if c.RAG.MaxContextChunks <= 0 {
		c.RAG.MaxContextChunks = DefaultMaxContextChunks
	}
	if c.RAG.HistoryPersistLimit <= 0 {
		c.RAG.HistoryPersistLimit = DefaultHistoryPersistLimit
	}
	if c.RAG.HistoryPromptLimit <= 0 {
		c.RAG.HistoryPromptLimit = DefaultHistoryPromptLimit
	}
	if c.RAG.MaxUploadSize <= 0 {
		c.RAG.MaxUploadSize = DefaultMaxUploadSize
	}
	if len(c.RAG.AllowedExtensions) == 0 {
		c.RAG.AllowedExtensions = DefaultAllowedExtensions()
	}
}
