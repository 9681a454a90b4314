package cli

import (
	"fmt"
	"time"

	configfile "github.com/izu-labs/izuchat/internal/adapters/driven/config/file"
	"github.com/izu-labs/izuchat/internal/adapters/driven/corpus/jsonfile"
	embedollama "github.com/izu-labs/izuchat/internal/adapters/driven/embedding/ollama"
	embedopenai "github.com/izu-labs/izuchat/internal/adapters/driven/embedding/openai"
	llmollama "github.com/izu-labs/izuchat/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/izu-labs/izuchat/internal/adapters/driven/llm/openai"
	"github.com/izu-labs/izuchat/internal/adapters/driven/vector/flat"
	"github.com/izu-labs/izuchat/internal/adapters/driving/httpapi"
	"github.com/izu-labs/izuchat/internal/core/domain"
	"github.com/izu-labs/izuchat/internal/core/ports/driven"
	"github.com/izu-labs/izuchat/internal/core/services"
	"github.com/izu-labs/izuchat/internal/logger"
)

// system is the fully wired pipeline plus everything a command might
// need alongside it.
type system struct {
	cfg      configfile.Config
	corpus   *domain.Corpus
	index    *flat.Index
	embedder driven.EmbeddingService
	model    driven.ChatModel
	pipeline *services.ChatPipeline
}

// loadConfig resolves flags into a Config.
func loadConfig() (configfile.Config, error) {
	dir := dataDir
	if dir == "" {
		var err error
		dir, err = configfile.DefaultDataDir()
		if err != nil {
			return configfile.Config{}, err
		}
	}

	path := configPath
	if path == "" {
		path = dir + "/config.toml"
	}
	return configfile.Load(path, dir)
}

// buildSystem loads the corpus and index and wires the full pipeline.
func buildSystem() (*system, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	corpus, err := jsonfile.LoadCorpus(cfg.Corpus.ChunksPath)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	logger.Info("Loaded %d passages from %s", corpus.Len(), cfg.Corpus.ChunksPath)

	index, err := flat.Load(cfg.Corpus.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	logger.Info("Loaded index: %d rows, %d dimensions", index.Len(), index.Dimensions())

	embedder, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	model, err := buildChatModel(cfg.LLM)
	if err != nil {
		return nil, err
	}

	retriever, err := services.NewRetriever(corpus, index, embedder, float32(cfg.Pipeline.MinScore))
	if err != nil {
		return nil, err
	}

	pipeline := services.NewChatPipeline(retriever, model, services.ChatPipelineConfig{
		TopK:        cfg.Pipeline.TopK,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})

	return &system{
		cfg:      cfg,
		corpus:   corpus,
		index:    index,
		embedder: embedder,
		model:    model,
		pipeline: pipeline,
	}, nil
}

func buildEmbedder(cfg configfile.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case configfile.ProviderOpenAI:
		return embedopenai.NewEmbeddingService(embedopenai.Config{
			APIKey:     configfile.APIKey(),
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		})
	case configfile.ProviderOllama:
		return embedollama.NewEmbeddingService(embedollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func buildChatModel(cfg configfile.LLMConfig) (driven.ChatModel, error) {
	switch cfg.Provider {
	case configfile.ProviderOpenAI:
		return llmopenai.NewChatModel(llmopenai.Config{
			APIKey:  configfile.APIKey(),
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		})
	case configfile.ProviderOllama:
		return llmollama.NewChatModel(llmollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// systemInfo summarises the loaded system for the HTTP endpoints.
func (s *system) systemInfo() httpapi.SystemInfo {
	var totalLen int
	for _, p := range s.corpus.Passages() {
		totalLen += len(p.Content)
	}
	var avgLen float64
	if s.corpus.Len() > 0 {
		avgLen = float64(totalLen) / float64(s.corpus.Len())
	}

	return httpapi.SystemInfo{
		ChunksLoaded:        s.corpus.Len(),
		IndexSize:           s.index.Len(),
		EmbeddingModel:      s.embedder.ModelName(),
		EmbeddingDimensions: s.embedder.Dimensions(),
		LLMModel:            s.model.ModelName(),
		AvgChunkLength:      avgLen,
	}
}

// close releases adapter resources.
func (s *system) close() {
	s.embedder.Close()
	s.model.Close()
	s.index.Close()
}
