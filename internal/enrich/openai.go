package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"docvector/internal/chunker"
	"docvector/internal/contextutil"
)

const (
	// maxPromptChars bounds how much chunk text is sent to the model.
	maxPromptChars = 10000

	systemPrompt = "Analyze the provided scientific text and extract the requested metadata. " +
		"Respond with a JSON object containing \"summary\" (a concise 1-sentence summary), " +
		"\"hypothetical_questions\" (a list of 2-4 questions this text answers) and " +
		"\"keywords\" (a list of 3-5 key entities/keywords found in the text)."
)

// ClientConfig holds configuration for the enrichment client.
type ClientConfig struct {
	APIKey      string
	BaseURL     string // optional, for OpenAI-compatible endpoints
	Model       string
	VisionModel string // defaults to Model
	MaxRetries  int
	RetryDelay  time.Duration
}

// Client generates chunk and image metadata through an OpenAI-compatible
// chat API. It implements Enricher and ImageCaptioner.
type Client struct {
	client      *openai.Client
	model       string
	visionModel string
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates an enrichment client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("enrichment API key is required")
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = model
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &Client{
		client:      openai.NewClientWithConfig(apiCfg),
		model:       model,
		visionModel: visionModel,
		maxRetries:  maxRetries,
		retryDelay:  retryDelay,
	}, nil
}

// EnrichChunk asks the model for chunk metadata, retrying transient
// failures with a short delay. Question and keyword lists are clamped to
// their caps.
func (c *Client) EnrichChunk(ctx context.Context, rec chunker.ChunkRecord) (Metadata, error) {
	logger := contextutil.LoggerFromContext(ctx)

	text := rec.Text
	if len(text) > maxPromptChars {
		cut := maxPromptChars
		// Back up to a rune boundary so the truncated prompt stays valid
		// UTF-8.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	userPrompt := fmt.Sprintf("Context/Header Path: %s\n\nText:\n%s", rec.HeadingPath.String(), text)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			logger.WarnContext(ctx, "retrying chunk enrichment",
				"chunk_index", rec.Index, "attempt", attempt+1, "error", lastErr)
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return Metadata{}, ctx.Err()
			}
		}

		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			lastErr = fmt.Errorf("chat completion: %w", err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("chat completion returned no choices")
			continue
		}

		var meta Metadata
		if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &meta); err != nil {
			lastErr = fmt.Errorf("decode enrichment response: %w", err)
			continue
		}
		if len(meta.HypotheticalQuestions) > MaxQuestions {
			meta.HypotheticalQuestions = meta.HypotheticalQuestions[:MaxQuestions]
		}
		if len(meta.Keywords) > MaxKeywords {
			meta.Keywords = meta.Keywords[:MaxKeywords]
		}
		return meta, nil
	}

	return Metadata{}, fmt.Errorf("enrichment failed after %d attempts: %w", c.maxRetries, lastErr)
}
