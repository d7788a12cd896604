package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"regexp"
	"strings"

	"github.com/MalinduDS/styleshot/internal/catalog"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

const filePrefix = "styleshot-"

var whitespace = regexp.MustCompile(`\s`)

// File is one rendered download.
type File struct {
	Preset catalog.ExportPreset
	Name   string
	Data   []byte
}

// FileName derives the download name from the preset label and size,
// e.g. "Instagram Post (1:1)" at 1080x1080 -> styleshot-instagram_post_1080x1080.png.
func FileName(p catalog.ExportPreset) string {
	label, _, _ := strings.Cut(p.Name, "(")
	slug := strings.ToLower(whitespace.ReplaceAllString(strings.TrimSpace(label), "_"))
	return fmt.Sprintf("%s%s_%dx%d.png", filePrefix, slug, p.Width, p.Height)
}

// Render decodes src and stretches it onto a width x height PNG.
func Render(src []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid export size %dx%d", width, height)
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return renderImage(img, width, height)
}

func renderImage(img image.Image, width, height int) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Exporter renders generated images at the catalog's fixed sizes.
type Exporter struct{}

func New() *Exporter {
	return &Exporter{}
}

// Export renders src for a single preset.
func (e *Exporter) Export(ctx context.Context, src []byte, preset catalog.ExportPreset) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := Render(src, preset.Width, preset.Height)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", preset.Key, err)
	}

	slog.Debug("Export rendered", "preset", preset.Key, "width", preset.Width, "height", preset.Height, "bytes", len(data))
	return &File{Preset: preset, Name: FileName(preset), Data: data}, nil
}

// ExportAll renders every preset concurrently. Results keep the order of presets.
func (e *Exporter) ExportAll(ctx context.Context, src []byte, presets []catalog.ExportPreset) ([]File, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	files := make([]File, len(presets))
	eg, egCtx := errgroup.WithContext(ctx)

	for i, preset := range presets {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			if preset.Width <= 0 || preset.Height <= 0 {
				return fmt.Errorf("export %s: invalid export size %dx%d", preset.Key, preset.Width, preset.Height)
			}
			data, err := renderImage(img, preset.Width, preset.Height)
			if err != nil {
				return fmt.Errorf("export %s: %w", preset.Key, err)
			}
			files[i] = File{Preset: preset, Name: FileName(preset), Data: data}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
