package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks docvector/internal/llm Embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentBatches bounds parallel embedding requests per call.
const maxConcurrentBatches = 4

// Embedder generates embedding vectors for chunk texts.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingsClient is a client for an OpenAI-compatible embeddings API.
// It implements Embedder.
type EmbeddingsClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	ExpectedSize int // expected vector size for validation
	BatchSize    int // inputs per request
	client       *http.Client
}

// NewEmbeddingsClient creates a new embeddings client. expectedSize is the
// vector size every returned embedding is validated against; batchSize
// caps how many inputs are sent per request.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize, batchSize int) *EmbeddingsClient {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &EmbeddingsClient{
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
		APIKey:       apiKey,
		Model:        model,
		ExpectedSize: expectedSize,
		BatchSize:    batchSize,
		client:       http.DefaultClient,
	}
}

// EmbeddingsRequest represents the request payload for the embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// EmbedTexts generates embeddings for the given texts, splitting them into
// batches requested concurrently. The result preserves input order, one
// vector per text, each validated against the expected size.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	// Embedding APIs handle newlines poorly.
	cleaned := make([]string, len(texts))
	for i, t := range texts {
		cleaned[i] = strings.ReplaceAll(t, "\n", " ")
	}

	result := make([][]float32, len(cleaned))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBatches)

	for start := 0; start < len(cleaned); start += c.BatchSize {
		end := start + c.BatchSize
		if end > len(cleaned) {
			end = len(cleaned)
		}
		start, end := start, end
		g.Go(func() error {
			vecs, err := c.embedBatch(gctx, cleaned[start:end])
			if err != nil {
				return err
			}
			copy(result[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *EmbeddingsClient) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)

	body, err := json.Marshal(EmbeddingsRequest{Model: c.Model, Input: batch})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var embeddingsResp EmbeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embeddingsResp.Data) != len(batch) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(batch), len(embeddingsResp.Data))
	}

	result := make([][]float32, len(embeddingsResp.Data))
	for i, data := range embeddingsResp.Data {
		if len(data.Embedding) != c.ExpectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.ExpectedSize)
		}
		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[i] = vec
	}
	return result, nil
}
