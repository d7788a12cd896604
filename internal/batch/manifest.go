package batch

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/MalinduDS/styleshot/internal/lighting"
	"github.com/parquet-go/parquet-go"
)

// Row is one styling job in a batch manifest.
type Row struct {
	ID        string `json:"id" parquet:"id"`
	ImagePath string `json:"image_path" parquet:"image_path"`
	// ModelID selects a catalog model. Empty keeps the default, "none" uses no model.
	ModelID string `json:"model_id" parquet:"model_id,optional"`
	// Scene is either freeform text or a catalog background key. Empty keeps the default.
	Scene      string `json:"scene" parquet:"scene,optional"`
	Brightness int64  `json:"brightness" parquet:"brightness,optional"`
	Contrast   int64  `json:"contrast" parquet:"contrast,optional"`
	Warmth     int64  `json:"warmth" parquet:"warmth,optional"`
}

// Lighting returns the row's lighting values.
func (r Row) Lighting() lighting.State {
	return lighting.State{
		Brightness: int(r.Brightness),
		Contrast:   int(r.Contrast),
		Warmth:     int(r.Warmth),
	}
}

// Loader reads a manifest file.
type Loader struct {
	manifestPath string
}

func NewLoader(manifestPath string) *Loader {
	return &Loader{manifestPath: manifestPath}
}

// Load loads rows from a manifest file (JSONL or Parquet)
func (l *Loader) Load() ([]Row, error) {
	ext := strings.ToLower(filepath.Ext(l.manifestPath))

	switch ext {
	case ".parquet":
		return l.loadParquet()
	case ".jsonl", ".json":
		return l.loadJSONL()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

func (l *Loader) loadJSONL() ([]Row, error) {
	slog.Debug("Opening JSONL manifest", "path", l.manifestPath)

	file, err := os.Open(l.manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest file: %w", err)
	}
	defer file.Close()

	var rows []Row
	scanner := bufio.NewScanner(file)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var row Row
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}

	slog.Debug("Finished reading JSONL manifest", "rows", len(rows))
	return rows, nil
}

func (l *Loader) loadParquet() ([]Row, error) {
	slog.Debug("Opening Parquet manifest", "path", l.manifestPath)

	file, err := os.Open(l.manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	var rows []Row
	buf := make([]Row, 64)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			rows = append(rows, buf[:n]...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet manifest", "rows", len(rows), "num_rows", pf.NumRows())
	return rows, nil
}
