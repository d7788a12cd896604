package genaiclient

import (
	"context"
	"fmt"

	"github.com/MalinduDS/styleshot/internal/providers"
	"google.golang.org/genai"
)

// Client generates images through the google.golang.org/genai SDK, asking for image-only output.
type Client struct {
	apiKey string
}

func New(apiKey string) *Client {
	return &Client{apiKey: apiKey}
}

func (c *Client) Name() string { return "genai" }

func (c *Client) GenerateImage(ctx context.Context, req providers.Request) (*providers.Image, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(req.Image, req.MIMEType),
		genai.NewPartFromText(req.Prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	res, err := client.Models.GenerateContent(ctx, req.Model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(res.Candidates) > 0 && res.Candidates[0].Content != nil {
		for _, part := range res.Candidates[0].Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &providers.Image{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}, nil
			}
		}
	}

	return nil, providers.ErrNoImage
}
