// Package ocr extracts query text from customer-submitted images
// (screenshots of errors, photos of invoices).
package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// NoTextFound is the explicit sentinel returned when an image contains no
// readable text. Callers receive this instead of an empty string.
const NoTextFound = "[No readable text found in the image]"

type Extractor interface {
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

// VisionExtractor reads image text through a vision-capable chat model.
type VisionExtractor struct {
	client *openai.Client
	model  string
}

func NewVision(apiKey, baseURL, model string) *VisionExtractor {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &VisionExtractor{client: openai.NewClientWithConfig(config), model: model}
}

func (e *VisionExtractor) ExtractText(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(imagePath))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Extract all readable text from this image. Return only the text, no commentary. If there is no readable text, return nothing.",
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision extraction failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision extraction returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return NoTextFound, nil
	}
	return text, nil
}
