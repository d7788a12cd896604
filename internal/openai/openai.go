package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"

	"github.com/MalinduDS/styleshot/internal/providers"
	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI is a provider for the OpenAI image edit endpoint
type OpenAI struct {
	apiKey  string
	baseURL string
}

// New returns a new OpenAI provider. An empty baseURL uses the public API.
func New(apiKey, baseURL string) *OpenAI {
	return &OpenAI{apiKey: apiKey, baseURL: baseURL}
}

func (o *OpenAI) Name() string { return "openai" }

// namedReader gives the multipart encoder a file name and content type.
type namedReader struct {
	*bytes.Reader
	name        string
	contentType string
}

func (r namedReader) Name() string { return r.name }

func (r namedReader) ContentType() string { return r.contentType }

// GenerateImage edits the uploaded product photo according to the prompt
func (o *OpenAI) GenerateImage(ctx context.Context, req providers.Request) (*providers.Image, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	cfg := goopenai.DefaultConfig(o.apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	client := goopenai.NewClientWithConfig(cfg)

	ext := ".png"
	if exts, err := mime.ExtensionsByType(req.MIMEType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}

	resp, err := client.CreateEditImage(ctx, goopenai.ImageEditRequest{
		Image:  namedReader{Reader: bytes.NewReader(req.Image), name: "product" + ext, contentType: req.MIMEType},
		Prompt: req.Prompt,
		Model:  req.Model,
		N:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	for _, d := range resp.Data {
		if d.B64JSON == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(d.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data: %w", err)
		}
		return &providers.Image{Data: data, MIMEType: "image/png"}, nil
	}

	return nil, providers.ErrNoImage
}
