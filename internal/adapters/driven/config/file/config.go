// Package file provides the TOML configuration for izuchat. All
// tunables live in one typed structure with documented defaults, so
// quality targets and model choices can change without touching
// pipeline code.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/izu-labs/izuchat/internal/core/domain"
)

// Provider selects which backend implements a remote boundary.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// CorpusConfig locates the offline-built corpus artifacts.
type CorpusConfig struct {
	// ChunksPath is the passage corpus JSON file.
	ChunksPath string `toml:"chunks_path"`

	// IndexPath is the serialized similarity index.
	IndexPath string `toml:"index_path"`
}

// EmbeddingConfig configures the embedding service boundary.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// Dimensions overrides the model's default vector size.
	Dimensions int `toml:"dimensions"`

	// TimeoutSeconds bounds each embedding request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// LLMConfig configures the generation service boundary.
type LLMConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the chat model name.
	Model string `toml:"model"`

	// Temperature is the sampling temperature.
	Temperature float64 `toml:"temperature"`

	// MaxTokens bounds the generated answer length.
	MaxTokens int `toml:"max_tokens"`

	// TimeoutSeconds bounds each generation request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// PipelineConfig tunes retrieval.
type PipelineConfig struct {
	// TopK is the number of passages retrieved per question.
	TopK int `toml:"top_k"`

	// MinScore drops retrieved passages below this cosine similarity
	// before context assembly. Zero disables the cutoff, matching the
	// purely prompt-driven "not found" behaviour.
	MinScore float64 `toml:"min_score"`
}

// EvalConfig tunes the evaluation harness.
type EvalConfig struct {
	// QuestionsPath is the evaluation question set JSON file.
	QuestionsPath string `toml:"questions_path"`

	// ReportDir is where report artifacts are written.
	ReportDir string `toml:"report_dir"`

	// HistoryPath is the SQLite file keeping past run results.
	HistoryPath string `toml:"history_path"`

	// Concurrency is the number of questions evaluated in parallel.
	Concurrency int `toml:"concurrency"`

	// RequestsPerSecond throttles pipeline calls across workers.
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// Thresholds are the pass/fail targets.
	Thresholds domain.EvalThresholds `toml:"thresholds"`

	// Pricing is the per-token rate table used for cost estimates.
	Pricing domain.ModelPricing `toml:"pricing"`
}

// ServerConfig configures the HTTP chat endpoint.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`
}

// Config is the full izuchat configuration.
type Config struct {
	Corpus    CorpusConfig    `toml:"corpus"`
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Pipeline  PipelineConfig  `toml:"pipeline"`
	Eval      EvalConfig      `toml:"eval"`
	Server    ServerConfig    `toml:"server"`
}

// Default returns the documented defaults. Paths are relative to the
// data directory.
func Default(dataDir string) Config {
	return Config{
		Corpus: CorpusConfig{
			ChunksPath: filepath.Join(dataDir, "chunks.json"),
			IndexPath:  filepath.Join(dataDir, "index.bin"),
		},
		Embedding: EmbeddingConfig{
			Provider:       ProviderOpenAI,
			Model:          "text-embedding-3-small",
			TimeoutSeconds: 60,
		},
		LLM: LLMConfig{
			Provider:       ProviderOpenAI,
			Model:          "gpt-4o-mini",
			Temperature:    0.3,
			MaxTokens:      500,
			TimeoutSeconds: 120,
		},
		Pipeline: PipelineConfig{
			TopK: 5,
		},
		Eval: EvalConfig{
			QuestionsPath:     filepath.Join(dataDir, "questions.json"),
			ReportDir:         filepath.Join(dataDir, "reports"),
			HistoryPath:       filepath.Join(dataDir, "eval_history.db"),
			Concurrency:       4,
			RequestsPerSecond: 2,
			Thresholds:        domain.DefaultEvalThresholds(),
			Pricing:           domain.DefaultModelPricing(),
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
	}
}

// DefaultDataDir returns ~/.izuchat.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".izuchat"), nil
}

// Load reads the config file at path, layered over the defaults for
// dataDir. A missing file yields pure defaults; a malformed file is an
// error.
func Load(path, dataDir string) (Config, error) {
	cfg := Default(dataDir)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// APIKey resolves the OpenAI API key from the environment. Keys never
// live in the config file.
func APIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}
