package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestNewEmbeddingsClient(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:8080/", "test-key", "test-model", 768, 50)
	if client == nil {
		t.Fatal("NewEmbeddingsClient() returned nil")
	}
	if client.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %v, want trailing slash trimmed", client.BaseURL)
	}
	if client.ExpectedSize != 768 {
		t.Errorf("ExpectedSize = %v, want 768", client.ExpectedSize)
	}
	if client.BatchSize != 50 {
		t.Errorf("BatchSize = %v, want 50", client.BatchSize)
	}
}

func TestNewEmbeddingsClient_DefaultBatchSize(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:8080", "k", "m", 768, 0)
	if client.BatchSize != 100 {
		t.Errorf("BatchSize = %v, want default 100", client.BatchSize)
	}
}

func TestEmbeddingsClient_EmbedTexts(t *testing.T) {
	tests := []struct {
		name       string
		texts      []string
		serverResp func(t *testing.T, w http.ResponseWriter, r *http.Request)
		wantErr    bool
		wantCount  int
	}{
		{
			name:  "successful embedding",
			texts: []string{"Hello", "World"},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/v1/embeddings" {
					t.Errorf("expected /v1/embeddings, got %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
					t.Errorf("Authorization = %q", got)
				}

				resp := EmbeddingsResponse{
					Data: []EmbeddingData{
						{Embedding: make([]float64, 8)},
						{Embedding: make([]float64, 8)},
					},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantErr:   false,
			wantCount: 2,
		},
		{
			name:  "empty input",
			texts: []string{},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				t.Error("server should not be called for empty input")
			},
			wantErr: true,
		},
		{
			name:  "wrong embedding count",
			texts: []string{"Hello", "World"},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				resp := EmbeddingsResponse{
					Data: []EmbeddingData{{Embedding: make([]float64, 8)}},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantErr: true,
		},
		{
			name:  "wrong vector size",
			texts: []string{"Hello"},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				resp := EmbeddingsResponse{
					Data: []EmbeddingData{{Embedding: make([]float64, 4)}},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantErr: true,
		},
		{
			name:  "server error",
			texts: []string{"Hello"},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.serverResp(t, w, r)
			}))
			defer server.Close()

			client := NewEmbeddingsClient(server.URL, "test-key", "test-model", 8, 100)
			vecs, err := client.EmbedTexts(context.Background(), tt.texts)

			if tt.wantErr {
				if err == nil {
					t.Error("EmbedTexts() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("EmbedTexts() error = %v", err)
			}
			if len(vecs) != tt.wantCount {
				t.Errorf("EmbedTexts() returned %d vectors, want %d", len(vecs), tt.wantCount)
			}
			for i, vec := range vecs {
				if len(vec) != 8 {
					t.Errorf("vector %d has size %d, want 8", i, len(vec))
				}
			}
		})
	}
}

func TestEmbeddingsClient_EmbedTexts_BatchingPreservesOrder(t *testing.T) {
	var mu sync.Mutex
	var batchSizes []int

	// Each vector encodes the numeric suffix of its input text so the caller
	// can verify position i holds the embedding of text i.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req EmbeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		batchSizes = append(batchSizes, len(req.Input))
		mu.Unlock()

		resp := EmbeddingsResponse{Data: make([]EmbeddingData, len(req.Input))}
		for i, text := range req.Input {
			var n float64
			if _, err := fmt.Sscanf(text, "text %f", &n); err != nil {
				t.Errorf("unexpected input %q", text)
			}
			resp.Data[i] = EmbeddingData{Embedding: []float64{n, 0}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	texts := make([]string, 25)
	for i := range texts {
		texts[i] = fmt.Sprintf("text %d", i)
	}

	client := NewEmbeddingsClient(server.URL, "k", "m", 2, 10)
	vecs, err := client.EmbedTexts(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(vecs) != 25 {
		t.Fatalf("got %d vectors, want 25", len(vecs))
	}
	for i, vec := range vecs {
		if int(vec[0]) != i {
			t.Errorf("vector %d encodes input %d, order not preserved", i, int(vec[0]))
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batchSizes) != 3 {
		t.Errorf("got %d requests, want 3 batches of up to 10", len(batchSizes))
	}
	var total int
	for _, n := range batchSizes {
		total += n
	}
	if total != 25 {
		t.Errorf("batches covered %d inputs, want 25", total)
	}
}

func TestEmbeddingsClient_EmbedTexts_StripsNewlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req EmbeddingsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, text := range req.Input {
			if strings.Contains(text, "\n") {
				t.Errorf("input %q still contains newlines", text)
			}
		}
		resp := EmbeddingsResponse{Data: []EmbeddingData{{Embedding: make([]float64, 2)}}}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "k", "m", 2, 100)
	if _, err := client.EmbedTexts(context.Background(), []string{"line one\nline two"}); err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
}
