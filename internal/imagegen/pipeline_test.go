package imagegen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MalinduDS/styleshot/internal/config"
	"github.com/MalinduDS/styleshot/internal/providers"
)

type fakeProvider struct {
	calls   int
	lastReq providers.Request
	img     *providers.Image
	err     error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GenerateImage(ctx context.Context, req providers.Request) (*providers.Image, error) {
	f.calls++
	f.lastReq = req
	return f.img, f.err
}

func writeUpload(t *testing.T, data []byte) Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.jpg")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return Source{Path: path, MIMEType: "image/jpeg"}
}

func TestRunSuccess(t *testing.T) {
	fp := &fakeProvider{img: &providers.Image{Data: []byte("png-bytes")}}
	p := NewPipeline(fp, Options{Model: "test-model"})

	res, err := p.Run(context.Background(), writeUpload(t, []byte("jpeg-bytes")), "a prompt")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if fp.calls != 1 {
		t.Errorf("Expected exactly one provider call, got %d", fp.calls)
	}
	if fp.lastReq.Model != "test-model" || fp.lastReq.Prompt != "a prompt" || fp.lastReq.MIMEType != "image/jpeg" {
		t.Errorf("Unexpected request: %+v", fp.lastReq)
	}
	if string(fp.lastReq.Image) != "jpeg-bytes" {
		t.Errorf("Expected upload bytes to be forwarded, got %q", fp.lastReq.Image)
	}
	if string(res.Data) != "png-bytes" || res.MIMEType != "image/png" {
		t.Errorf("Unexpected result: %+v", res)
	}
	if res.Provider != "fake" {
		t.Errorf("Expected provider fake, got %s", res.Provider)
	}
}

func TestReadFailures(t *testing.T) {
	p := NewPipeline(&fakeProvider{}, Options{})

	tests := []struct {
		name string
		src  Source
	}{
		{"missing file", Source{Path: filepath.Join(t.TempDir(), "gone.png"), MIMEType: "image/png"}},
		{"empty file", writeUpload(t, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Read(tt.src, "prompt")
			if !errors.Is(err, ErrFileRead) {
				t.Fatalf("Expected ErrFileRead, got %v", err)
			}
			if UserMessage(err) != "Could not read the uploaded image." {
				t.Errorf("Unexpected user message: %s", UserMessage(err))
			}
		})
	}
}

func TestRunDoesNotCallProviderWhenReadFails(t *testing.T) {
	fp := &fakeProvider{}
	p := NewPipeline(fp, Options{})

	_, err := p.Run(context.Background(), Source{Path: filepath.Join(t.TempDir(), "missing")}, "prompt")
	if !errors.Is(err, ErrFileRead) {
		t.Fatalf("Expected ErrFileRead, got %v", err)
	}
	if fp.calls != 0 {
		t.Errorf("Expected no provider calls, got %d", fp.calls)
	}
}

func TestRequestFailuresCollapse(t *testing.T) {
	tests := []struct {
		name string
		fp   *fakeProvider
	}{
		{"provider error", &fakeProvider{err: errors.New("429 resource exhausted: key=sk-secret")}},
		{"nil image", &fakeProvider{}},
		{"empty image", &fakeProvider{img: &providers.Image{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(tt.fp, Options{})
			_, err := p.Request(context.Background(), &Payload{Data: []byte("x"), MIMEType: "image/png", Prompt: "p"})
			if !errors.Is(err, ErrGeneration) {
				t.Fatalf("Expected ErrGeneration, got %v", err)
			}
			msg := UserMessage(err)
			if strings.Contains(msg, "secret") || strings.Contains(msg, "429") {
				t.Errorf("User message leaks provider details: %s", msg)
			}
			if msg != KindGeneration.Message() {
				t.Errorf("Unexpected user message: %s", msg)
			}
		})
	}
}

func TestPayloadBase64(t *testing.T) {
	p := &Payload{Data: []byte("hi")}
	if p.Base64() != "aGk=" {
		t.Errorf("Unexpected base64: %s", p.Base64())
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	err := &Error{Kind: KindFileRead, Err: os.ErrNotExist}

	if errors.Is(err, ErrGeneration) {
		t.Error("File read error must not match ErrGeneration")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("Expected wrapped cause to be reachable")
	}
	if UserMessage(ErrMissingInput) != "Please upload an image and provide a prompt." {
		t.Errorf("Unexpected missing input message: %s", UserMessage(ErrMissingInput))
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
		wantErr  bool
	}{
		{"", "gemini", false},
		{"gemini", "gemini", false},
		{"genai", "genai", false},
		{"openai", "openai", false},
		{"ollama", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewProvider(&config.Config{Provider: tt.provider})
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error for unsupported provider")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, p.Name())
			}
		})
	}
}

func TestProvidersRequireKey(t *testing.T) {
	for _, name := range []string{"gemini", "genai", "openai"} {
		t.Run(name, func(t *testing.T) {
			p, err := NewProvider(&config.Config{Provider: name})
			if err != nil {
				t.Fatal(err)
			}
			_, err = p.GenerateImage(context.Background(), providers.Request{Image: []byte("x"), MIMEType: "image/png"})
			if err == nil || !strings.Contains(err.Error(), "API_KEY") {
				t.Errorf("Expected missing key error, got %v", err)
			}
		})
	}
}
