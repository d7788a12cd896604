package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MalinduDS/styleshot/internal/catalog"
	"github.com/MalinduDS/styleshot/internal/images"
	"github.com/MalinduDS/styleshot/internal/imagegen"
	"github.com/MalinduDS/styleshot/internal/lighting"
	"github.com/MalinduDS/styleshot/internal/studio"
)

const noModel = "none"

// RowResult is the outcome of one manifest row.
type RowResult struct {
	ID       string
	Prompt   string
	Error    string
	Files    []string
	Duration time.Duration
}

// Runner processes manifest rows strictly one at a time, each through a fresh session.
type Runner struct {
	Catalog  *catalog.Catalog
	Pipeline *imagegen.Pipeline
	Fetcher  *images.Fetcher
	// OutDir receives one sub-directory of exports per row.
	OutDir string
}

// Run processes every row. A failed row is recorded and the batch continues; only a
// cancelled context stops it early.
func (r *Runner) Run(ctx context.Context, rows []Row) ([]RowResult, error) {
	workDir, err := os.MkdirTemp("", "styleshot-batch-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	results := make([]RowResult, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		id := uniqueID(seen, rowID(row, i), i)
		slog.Info("Processing row", "row", i+1, "total", len(rows), "id", id)

		start := time.Now()
		res := r.runRow(ctx, workDir, id, row)
		res.Duration = time.Since(start)
		if res.Error != "" {
			slog.Warn("Row failed", "id", id, "error", res.Error)
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) runRow(ctx context.Context, workDir, id string, row Row) RowResult {
	res := RowResult{ID: id}
	fail := func(err error) RowResult {
		res.Error = err.Error()
		return res
	}

	sess := studio.New(id, studio.Options{
		Catalog:    r.Catalog,
		Pipeline:   r.Pipeline,
		UploadsDir: workDir,
	})
	defer sess.Close()

	if err := Configure(ctx, sess, r.Fetcher, row.ImagePath, row.ModelID, row.Scene, row.Lighting()); err != nil {
		return fail(err)
	}
	res.Prompt = sess.Prompt()

	if _, err := sess.Generate(ctx); err != nil {
		res.Error = imagegen.UserMessage(err)
		return res
	}

	files, err := WriteOutputs(ctx, sess, filepath.Join(r.OutDir, id))
	if err != nil {
		return fail(err)
	}
	res.Files = files
	return res
}

// Configure loads the product photo into sess and applies the model, scene and lighting.
func Configure(ctx context.Context, sess *studio.Session, fetcher *images.Fetcher, imagePath, modelID, scene string, l lighting.State) error {
	if imagePath == "" {
		return imagegen.ErrMissingInput
	}
	data, filename, err := fetcher.Fetch(ctx, imagePath)
	if err != nil {
		return err
	}
	if _, err := sess.Upload(filename, data); err != nil {
		return err
	}

	switch modelID {
	case "":
	case noModel:
		if err := sess.SelectModel(""); err != nil {
			return err
		}
	default:
		if err := sess.SelectModel(modelID); err != nil {
			return err
		}
	}

	if scene != "" {
		if err := sess.SelectBackground(scene); err != nil {
			if err := sess.SetScene(scene); err != nil {
				return err
			}
		}
	}

	if err := sess.AdjustLighting(lighting.Partial{
		Brightness: &l.Brightness,
		Contrast:   &l.Contrast,
		Warmth:     &l.Warmth,
	}); err != nil {
		return err
	}
	sess.CommitLighting()
	return nil
}

// WriteOutputs writes the generated image and one file per export preset into dir.
func WriteOutputs(ctx context.Context, sess *studio.Session, dir string) ([]string, error) {
	res, err := sess.Result()
	if err != nil {
		return nil, err
	}
	exports, err := sess.ExportAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	generated := filepath.Join(dir, "styleshot-generated"+extensionFor(res.MIMEType))
	if err := os.WriteFile(generated, res.Data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write generated image: %w", err)
	}
	files := []string{generated}

	for _, f := range exports {
		p := filepath.Join(dir, f.Name)
		if err := os.WriteFile(p, f.Data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write export %s: %w", f.Name, err)
		}
		files = append(files, p)
	}
	return files, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

// rowID keeps ids usable as a single directory name.
// uniqueID suffixes a repeated id with the row number so rows never share an output
// directory.
func uniqueID(seen map[string]bool, id string, index int) string {
	candidate := id
	for n := 0; seen[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", id, index+1)
		if n > 0 {
			candidate = fmt.Sprintf("%s-%d-%d", id, index+1, n)
		}
	}
	seen[candidate] = true
	return candidate
}

func rowID(row Row, index int) string {
	id := strings.TrimSpace(filepath.Base(filepath.Clean("/" + row.ID)))
	if id == "" || id == "/" || id == "." {
		return fmt.Sprintf("row-%d", index+1)
	}
	return id
}
