package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Fetcher retrieves product photos from a URL or a local path.
type Fetcher struct {
	HTTPClient *http.Client
	// MaxBytes caps how much of a download is read. Zero means no cap.
	MaxBytes int64
}

// NewFetcher creates a new image fetcher
func NewFetcher(maxBytes int64) *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxBytes: maxBytes,
	}
}

// IsURL reports whether src looks like an http(s) URL rather than a file path.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Fetch loads src, downloading it when it is a URL. It returns the bytes and a file
// name suitable for display.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, string, error) {
	if IsURL(src) {
		return f.Download(ctx, src)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
		return nil, "", fmt.Errorf("image too large (max %d bytes)", f.MaxBytes)
	}
	return data, filepath.Base(src), nil
}

// Download fetches an image over HTTP.
func (f *Fetcher) Download(ctx context.Context, imageURL string) ([]byte, string, error) {
	u, err := url.Parse(imageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, "", fmt.Errorf("invalid image URL %q", imageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", "StyleShot/1.0")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if f.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}
	if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
		return nil, "", fmt.Errorf("image too large (max %d bytes)", f.MaxBytes)
	}

	filename := path.Base(u.Path)
	if filename == "" || filename == "/" || filename == "." {
		filename = "image.jpg"
	}

	slog.Debug("Downloaded image", "url", imageURL, "bytes", len(data))
	return data, filename, nil
}
