package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jrvmalik/manifold-learning/diffusion"
	"github.com/jrvmalik/manifold-learning/embedding"
	"github.com/jrvmalik/manifold-learning/huggingface"
	"github.com/jrvmalik/manifold-learning/ollama"
	"github.com/jrvmalik/manifold-learning/projection"
)

// Environment variables that override the file configuration.
const (
	OllamaURLEnv     = "DIFFMAP_OLLAMA_URL"
	QdrantAddressEnv = "DIFFMAP_QDRANT_ADDRESS"
	HFTokenEnv       = "HF_TOKEN"
)

// Text embedding providers accepted in embedding.provider.
const (
	ProviderOllama      = "ollama"
	ProviderHuggingFace = "huggingface"
)

// DefaultMaxPoints caps the point count of a run. The eigensolver works on a
// dense n x n operator, so memory grows as 8n² bytes (800 MB at 10000 points).
const DefaultMaxPoints = 10000

// EmbeddingConfig holds the diffusion-map pipeline parameters.
type EmbeddingConfig struct {
	Neighbors     int    `yaml:"neighbors"`
	Dimensions    int    `yaml:"dimensions"`
	Searcher      string `yaml:"searcher"`
	UnitNorm      bool   `yaml:"unit_norm"`
	PCAComponents int    `yaml:"pca_components"`
	Clusters      int    `yaml:"clusters"`
	MaxPoints     int    `yaml:"max_points"`
	Provider      string `yaml:"provider"`
}

// OllamaConfig contains connection details for the Ollama text embedder.
type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// HuggingFaceConfig contains connection details for the Hugging Face
// Inference API embedder and the Dataset Viewer text source. Empty URLs select
// the public endpoints.
type HuggingFaceConfig struct {
	Model        string `yaml:"model"`
	Token        string `yaml:"token"`
	InferenceURL string `yaml:"inference_url"`
	DatasetsURL  string `yaml:"datasets_url"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
	VectorSize uint64 `yaml:"vector_size"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Ollama      OllamaConfig      `yaml:"ollama"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	Qdrant      QdrantConfig      `yaml:"qdrant"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

// Save writes the config to path.
func Save(path string, cfg *AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv loads envFiles (".env" when none are given) into the process
// environment and applies the overrides it knows about. Missing files are
// ignored.
func (cfg *AppConfig) ApplyEnv(envFiles ...string) {
	_ = godotenv.Load(envFiles...)

	if url := os.Getenv(OllamaURLEnv); url != "" {
		cfg.Ollama.URL = url
	}
	if address := os.Getenv(QdrantAddressEnv); address != "" {
		cfg.Qdrant.Address = address
	}
	if token := os.Getenv(HFTokenEnv); token != "" && cfg.HuggingFace.Token == "" {
		cfg.HuggingFace.Token = token
	}
}

// Validate rejects settings that no run could use.
func (cfg *AppConfig) Validate() error {
	if _, err := cfg.NeighborSearcher(); err != nil {
		return err
	}
	e := cfg.Embedding
	if e.Neighbors < 1 {
		return fmt.Errorf("embedding.neighbors must be positive, got %d", e.Neighbors)
	}
	if e.Dimensions < 1 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", e.Dimensions)
	}
	if e.PCAComponents < 0 {
		return fmt.Errorf("embedding.pca_components must not be negative, got %d", e.PCAComponents)
	}
	if e.Clusters < 0 {
		return fmt.Errorf("embedding.clusters must not be negative, got %d", e.Clusters)
	}
	if e.MaxPoints < 0 {
		return fmt.Errorf("embedding.max_points must not be negative, got %d", e.MaxPoints)
	}
	if _, err := cfg.TextEmbedder(); err != nil {
		return err
	}
	if cfg.Qdrant.VectorSize == 0 {
		return errors.New("qdrant.vector_size must be positive")
	}
	return nil
}

// TextEmbedder maps embedding.provider to a text embedding client.
func (cfg *AppConfig) TextEmbedder() (embedding.Embedder, error) {
	switch cfg.Embedding.Provider {
	case ProviderOllama, "":
		return ollama.NewClient(cfg.Ollama.URL, cfg.Ollama.Model), nil
	case ProviderHuggingFace:
		return huggingface.NewEmbeddingsClient(cfg.HuggingFace.InferenceURL, cfg.HuggingFace.Model, cfg.HuggingFace.Token), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (want %s or %s)", cfg.Embedding.Provider, ProviderOllama, ProviderHuggingFace)
	}
}

// NeighborSearcher maps embedding.searcher to an implementation.
func (cfg *AppConfig) NeighborSearcher() (diffusion.NeighborSearcher, error) {
	switch cfg.Embedding.Searcher {
	case "brute", "":
		return diffusion.BruteForce{}, nil
	case "kdtree":
		return diffusion.KDTree{}, nil
	default:
		return nil, fmt.Errorf("unknown searcher %q (want brute or kdtree)", cfg.Embedding.Searcher)
	}
}

// Projection assembles the pipeline configuration. Call Validate first.
func (cfg *AppConfig) Projection() projection.Config {
	searcher, _ := cfg.NeighborSearcher()
	return projection.Config{
		Diffusion: diffusion.Config{
			Neighbors:       cfg.Embedding.Neighbors,
			Dimensions:      cfg.Embedding.Dimensions,
			Searcher:        searcher,
			UnitNormColumns: cfg.Embedding.UnitNorm,
		},
		PCAComponents: cfg.Embedding.PCAComponents,
		Clusters:      cfg.Embedding.Clusters,
	}
}

func applyDefaults(cfg *AppConfig) {
	defaults := diffusion.DefaultConfig()
	if cfg.Embedding.Neighbors == 0 {
		cfg.Embedding.Neighbors = defaults.Neighbors
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = defaults.Dimensions
	}
	if cfg.Embedding.Searcher == "" {
		cfg.Embedding.Searcher = "brute"
	}
	if cfg.Embedding.MaxPoints == 0 {
		cfg.Embedding.MaxPoints = DefaultMaxPoints
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderOllama
	}
	if cfg.HuggingFace.Model == "" {
		cfg.HuggingFace.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = "http://localhost:11434"
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = "nomic-embed-text"
	}
	if cfg.Qdrant.Address == "" {
		cfg.Qdrant.Address = "localhost:6334"
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "embeddings"
	}
	if cfg.Qdrant.VectorSize == 0 {
		cfg.Qdrant.VectorSize = 768
	}
}
