package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/MalinduDS/styleshot/internal/providers"
	"golang.org/x/time/rate"
)

// Source points at a stored upload.
type Source struct {
	Path     string
	MIMEType string
}

// Payload is the output of the read stage: the upload bytes plus the prompt to send.
type Payload struct {
	Data     []byte
	MIMEType string
	Prompt   string
}

// Base64 returns the transfer encoding of the image bytes.
func (p *Payload) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// Result is a generated image.
type Result struct {
	Data     []byte
	MIMEType string
	Prompt   string
	Provider string
	Model    string
	Duration time.Duration
}

type Options struct {
	Model string
	// Timeout bounds one provider call. Zero means no extra deadline.
	Timeout time.Duration
	// Interval is the minimum spacing between provider calls. Zero disables the limiter.
	Interval time.Duration
}

// Pipeline reads an upload and then requests a generated image, one stage at a time.
type Pipeline struct {
	provider providers.Provider
	model    string
	timeout  time.Duration
	limiter  *rate.Limiter
}

func NewPipeline(provider providers.Provider, opts Options) *Pipeline {
	p := &Pipeline{
		provider: provider,
		model:    opts.Model,
		timeout:  opts.Timeout,
	}
	if opts.Interval > 0 {
		p.limiter = rate.NewLimiter(rate.Every(opts.Interval), 1)
	}
	return p
}

// Provider returns the name of the backing provider.
func (p *Pipeline) Provider() string { return p.provider.Name() }

func (p *Pipeline) Model() string { return p.model }

// Read loads the upload bytes for src.
func (p *Pipeline) Read(src Source, prompt string) (*Payload, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, &Error{Kind: KindFileRead, Err: err}
	}
	if len(data) == 0 {
		return nil, &Error{Kind: KindFileRead, Err: fmt.Errorf("upload %s is empty", src.Path)}
	}
	return &Payload{Data: data, MIMEType: src.MIMEType, Prompt: prompt}, nil
}

// Request sends payload to the provider. Every failure collapses into ErrGeneration.
func (p *Pipeline) Request(ctx context.Context, payload *Payload) (*Result, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindGeneration, Err: fmt.Errorf("rate limiter wait: %w", err)}
		}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	img, err := p.provider.GenerateImage(ctx, providers.Request{
		Model:    p.model,
		Prompt:   payload.Prompt,
		Image:    payload.Data,
		MIMEType: payload.MIMEType,
	})
	if err == nil && (img == nil || len(img.Data) == 0) {
		err = providers.ErrNoImage
	}
	if err != nil {
		slog.Error("Image generation failed", "provider", p.provider.Name(), "model", p.model, "err", err)
		return nil, &Error{Kind: KindGeneration, Err: err}
	}

	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}

	return &Result{
		Data:     img.Data,
		MIMEType: mimeType,
		Prompt:   payload.Prompt,
		Provider: p.provider.Name(),
		Model:    p.model,
		Duration: time.Since(start),
	}, nil
}

// Run chains Read and Request.
func (p *Pipeline) Run(ctx context.Context, src Source, prompt string) (*Result, error) {
	payload, err := p.Read(src, prompt)
	if err != nil {
		return nil, err
	}
	res, err := p.Request(ctx, payload)
	if err != nil {
		return nil, err
	}
	slog.Info("Image generated", "provider", res.Provider, "model", res.Model, "bytes", len(res.Data), "duration", res.Duration)
	return res, nil
}
