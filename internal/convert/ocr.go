package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"docvector/internal/contextutil"
)

// OCRClient calls a Mistral-compatible OCR API that accepts a base64 data URL
// and returns per-page markdown with inline image references and base64 image
// payloads.
type OCRClient struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewOCRClient creates an OCR client for the given endpoint.
func NewOCRClient(baseURL, apiKey, model string) *OCRClient {
	return &OCRClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

// OCRPage is one page of the OCR response.
type OCRPage struct {
	Index    int        `json:"index"`
	Markdown string     `json:"markdown"`
	Images   []OCRImage `json:"images"`
}

// OCRImage is an extracted image with its base64 payload. ID matches the
// image reference the page markdown uses.
type OCRImage struct {
	ID          string `json:"id"`
	ImageBase64 string `json:"image_base64"`
}

type ocrDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

type ocrRequest struct {
	Model              string      `json:"model"`
	Document           ocrDocument `json:"document"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
}

type ocrResponse struct {
	Pages []OCRPage `json:"pages"`
}

// ProcessDocument submits a PDF and returns its pages in order.
func (c *OCRClient) ProcessDocument(ctx context.Context, pdf []byte) ([]OCRPage, error) {
	logger := contextutil.LoggerFromContext(ctx)

	reqBody := ocrRequest{
		Model: c.Model,
		Document: ocrDocument{
			Type:        "document_url",
			DocumentURL: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdf),
		},
		IncludeImageBase64: true,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OCR request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/ocr", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	logger.InfoContext(ctx, "submitting document for OCR", "model", c.Model, "size_bytes", len(pdf))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("OCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var ocrResp ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&ocrResp); err != nil {
		return nil, fmt.Errorf("failed to decode OCR response: %w", err)
	}

	logger.InfoContext(ctx, "OCR completed", "pages", len(ocrResp.Pages))
	return ocrResp.Pages, nil
}
