package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MalinduDS/styleshot/internal/providers"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini is a provider for Google Gemini image models
type Gemini struct {
	apiKey string
}

// New returns a new Gemini provider
func New(apiKey string) *Gemini {
	return &Gemini{apiKey: apiKey}
}

func (g *Gemini) Name() string { return "gemini" }

// GenerateImage sends the product photo and prompt to Gemini and returns the first image part
func (g *Gemini) GenerateImage(ctx context.Context, req providers.Request) (*providers.Image, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: req.MIMEType, Data: req.Image},
		genai.Text(req.Prompt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("empty content returned from Gemini")
	}

	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Blob:
			if len(p.Data) > 0 {
				return &providers.Image{Data: p.Data, MIMEType: p.MIMEType}, nil
			}
		case genai.Text:
			slog.Debug("Gemini returned text alongside image", "text", string(p))
		}
	}

	return nil, providers.ErrNoImage
}
