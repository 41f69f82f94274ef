// Package ollama provides an HTTP client for the Ollama embedding API, used to
// turn text corpora into point sets.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Client handles HTTP communication with the Ollama embedding API.
type Client struct {
	baseURL    string       // e.g. "http://localhost:11434"
	modelName  string       // e.g. "nomic-embed-text"
	httpClient *http.Client // reused across requests
}

// embeddingRequest is the JSON payload sent to /api/embed.
type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// embeddingResponse is the JSON body returned by /api/embed. Embeddings is a
// batch; a single input yields one vector.
type embeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewClient creates a new Ollama client for the given server and model.
func NewClient(baseURL, modelName string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		modelName:  modelName,
		httpClient: &http.Client{},
	}
}

// Embed converts text into a vector using the Ollama API.
// If the input text is empty, Embed returns nil without making a request.
func (ollamaClient *Client) Embed(ctx context.Context, inputText string) ([]float32, error) {
	if inputText == "" {
		return nil, nil
	}

	jsonRequestBody, err := json.Marshal(embeddingRequest{
		Model: ollamaClient.modelName,
		Input: inputText,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, ollamaClient.baseURL+"/api/embed", bytes.NewReader(jsonRequestBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	httpResponse, err := ollamaClient.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("post request: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", httpResponse.StatusCode)
	}

	var parsedResponse embeddingResponse
	if err := json.NewDecoder(httpResponse.Body).Decode(&parsedResponse); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsedResponse.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return parsedResponse.Embeddings[0], nil
}
