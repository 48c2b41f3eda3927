package enrich

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_image_captioner.go -package=mocks docvector/internal/enrich ImageCaptioner

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"docvector/internal/contextutil"
)

// MaxKeyElements caps the key elements kept per captioned image.
const MaxKeyElements = 7

const (
	visionSystemPrompt = "You are an expert at analyzing scientific and technical images. " +
		"Provide detailed, accurate descriptions."

	visionUserPrompt = "Analyze this image. Respond with a JSON object containing " +
		"\"caption\" (a detailed caption describing the image content, context, and any visible text or data), " +
		"\"key_elements\" (a list of 3-7 key elements, objects, or concepts visible in the image) and " +
		"\"image_type\" (graph, diagram, chart, photograph, illustration, table or equation)."
)

// ImageMetadata is the captioning result for one extracted image.
type ImageMetadata struct {
	Caption     string   `json:"caption"`
	KeyElements []string `json:"key_elements"`
	ImageType   string   `json:"image_type"`
}

// ImageCaptioner generates retrieval metadata for an extracted image. The
// caption stands in for the image in the embedding space, so it should read
// like text a retrieval query could match.
type ImageCaptioner interface {
	CaptionImage(ctx context.Context, data []byte, mimeType string) (ImageMetadata, error)
}

// CaptionImage describes an image through the vision model, retrying
// transient failures like EnrichChunk does. The image is sent inline as a
// base64 data URL.
func (c *Client) CaptionImage(ctx context.Context, data []byte, mimeType string) (ImageMetadata, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if mimeType == "" {
		mimeType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			logger.WarnContext(ctx, "retrying image caption",
				"attempt", attempt+1, "error", lastErr)
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return ImageMetadata{}, ctx.Err()
			}
		}

		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:     c.visionModel,
			MaxTokens: 500,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: visionSystemPrompt},
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{Type: openai.ChatMessagePartTypeText, Text: visionUserPrompt},
						{
							Type:     openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
						},
					},
				},
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

		var meta ImageMetadata
		if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &meta); err != nil {
			lastErr = fmt.Errorf("decode caption response: %w", err)
			continue
		}
		if len(meta.KeyElements) > MaxKeyElements {
			meta.KeyElements = meta.KeyElements[:MaxKeyElements]
		}
		return meta, nil
	}

	return ImageMetadata{}, fmt.Errorf("image captioning failed after %d attempts: %w", c.maxRetries, lastErr)
}
