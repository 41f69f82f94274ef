// Package huggingface talks to two Hugging Face services: the Dataset Viewer
// API, which supplies text corpora, and the Inference API, which embeds text.
package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DatasetsAPIBaseURL is the public Dataset Viewer endpoint.
const DatasetsAPIBaseURL = "https://datasets-server.huggingface.co"

// rowsPageSize is the largest page the /rows endpoint serves.
const rowsPageSize = 100

// Client interacts with the Hugging Face Dataset Viewer API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Dataset Viewer client. An empty baseURL selects the
// public endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DatasetsAPIBaseURL
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: &http.Client{}}
}

// SplitsResponse represents the response from the /splits endpoint.
type SplitsResponse struct {
	Splits []Split `json:"splits"`
}

// Split represents a dataset split.
type Split struct {
	Dataset string `json:"dataset"`
	Config  string `json:"config"`
	Split   string `json:"split"`
}

// RowsResponse represents the response from the /rows endpoint.
type RowsResponse struct {
	Rows []RowWrapper `json:"rows"`
}

// RowWrapper wraps an individual row from the dataset.
type RowWrapper struct {
	RowIdx int            `json:"row_idx"`
	Row    map[string]any `json:"row"`
}

// GetSplits fetches available splits for a dataset.
func (c *Client) GetSplits(ctx context.Context, dataset string) (*SplitsResponse, error) {
	query := url.Values{"dataset": {dataset}}

	var result SplitsResponse
	if err := c.getJSON(ctx, "/splits", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRows fetches length rows from a dataset split starting at offset.
func (c *Client) GetRows(ctx context.Context, dataset, config, split string, offset, length int) (*RowsResponse, error) {
	query := url.Values{
		"dataset": {dataset},
		"config":  {config},
		"split":   {split},
		"offset":  {strconv.Itoa(offset)},
		"length":  {strconv.Itoa(length)},
	}

	var result RowsResponse
	if err := c.getJSON(ctx, "/rows", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchTexts pages through a split and returns the non-empty string values
// of column, up to maxRows rows (0 means the whole split).
func (c *Client) FetchTexts(ctx context.Context, dataset, config, split, column string, maxRows int) ([]string, error) {
	var texts []string
	offset := 0

	for maxRows <= 0 || offset < maxRows {
		length := rowsPageSize
		if maxRows > 0 && offset+length > maxRows {
			length = maxRows - offset
		}

		rows, err := c.GetRows(ctx, dataset, config, split, offset, length)
		if err != nil {
			return nil, err
		}
		texts = append(texts, columnTexts(rows, column)...)

		offset += len(rows.Rows)
		if len(rows.Rows) < length {
			break
		}
	}

	return texts, nil
}

// columnTexts extracts the non-empty string values of column.
func columnTexts(rows *RowsResponse, column string) []string {
	var texts []string
	for _, wrapper := range rows.Rows {
		if text, ok := wrapper.Row[column].(string); ok && text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
