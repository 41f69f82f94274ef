package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// InferenceAPIBaseURL is the public Hugging Face Inference API endpoint.
const InferenceAPIBaseURL = "https://api-inference.huggingface.co"

// EmbeddingsClient handles HTTP communication with the Hugging Face Inference API
// for generating text embeddings. It satisfies embedding.Embedder.
type EmbeddingsClient struct {
	baseURL    string
	modelID    string
	token      string
	httpClient *http.Client
}

// embeddingsRequest represents the JSON payload sent to the HF Inference API.
type embeddingsRequest struct {
	Inputs  string          `json:"inputs"`
	Options map[string]bool `json:"options,omitempty"`
}

// NewEmbeddingsClient creates a Hugging Face embeddings client for modelID.
// An empty baseURL selects the public Inference API; an empty token sends
// anonymous requests.
func NewEmbeddingsClient(baseURL, modelID, token string) *EmbeddingsClient {
	if baseURL == "" {
		baseURL = InferenceAPIBaseURL
	}
	return &EmbeddingsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		modelID:    modelID,
		token:      token,
		httpClient: &http.Client{},
	}
}

// Embed converts the provided text into a vector with the feature-extraction
// pipeline. If the input text is empty, Embed returns nil without making a
// request.
func (c *EmbeddingsClient) Embed(ctx context.Context, inputText string) ([]float32, error) {
	if inputText == "" {
		return nil, nil
	}

	jsonBody, err := json.Marshal(embeddingsRequest{
		Inputs:  inputText,
		Options: map[string]bool{"wait_for_model": true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", c.baseURL, c.modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errorBody)
		return nil, fmt.Errorf("API error %d: %v", resp.StatusCode, errorBody)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return decodeEmbedding(raw)
}

// decodeEmbedding accepts both shapes the pipeline returns for one input: a
// flat vector from sentence-transformer models, or a batch of one.
func decodeEmbedding(raw json.RawMessage) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(raw, &flat); err == nil {
		if len(flat) == 0 {
			return nil, fmt.Errorf("no embeddings returned")
		}
		return flat, nil
	}

	var batch [][]float32
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(batch) == 0 || len(batch[0]) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return batch[0], nil
}
