package providers

import (
	"context"
	"errors"
)

// ErrNoImage is returned when a provider answered without any image data.
var ErrNoImage = errors.New("no image data found in the response")

// Request represents one image generation call
type Request struct {
	Model    string
	Prompt   string
	Image    []byte
	MIMEType string
}

// Image is the generated output of a provider
type Image struct {
	Data     []byte
	MIMEType string
}

// Provider defines the interface for an image generation provider
type Provider interface {
	Name() string
	GenerateImage(ctx context.Context, req Request) (*Image, error)
}
