package studio

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/MalinduDS/styleshot/internal/catalog"
	"github.com/MalinduDS/styleshot/internal/export"
	"github.com/MalinduDS/styleshot/internal/imagegen"
	"github.com/MalinduDS/styleshot/internal/lighting"
	"github.com/MalinduDS/styleshot/internal/models"
	"github.com/MalinduDS/styleshot/internal/prompt"
	_ "golang.org/x/image/webp"
)

var (
	ErrUnsupportedMedia   = errors.New("unsupported image type: upload a PNG, JPEG or WEBP file")
	ErrSceneTooLong       = errors.New("scene description is too long")
	ErrUnknownModel       = errors.New("unknown virtual model")
	ErrUnknownBackground  = errors.New("unknown studio background")
	ErrUnknownPreset      = errors.New("unknown export preset")
	ErrGenerationInFlight = errors.New("a generation request is already in progress")
	ErrNoResult           = errors.New("no generated image yet")
)

// accepted maps sniffed content types to the extension used on disk.
var accepted = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// UploadedImage is the product photo a session is working from.
type UploadedImage struct {
	Filename   string
	Path       string
	PreviewURL string
	MIMEType   string
	Width      int
	Height     int
	Size       int
}

// GeneratedImage is the last successful generation.
type GeneratedImage struct {
	Data        []byte
	MIMEType    string
	Provider    string
	Model       string
	Prompt      string
	GeneratedAt time.Time
}

// Options are the collaborators shared by every session.
type Options struct {
	Catalog  *catalog.Catalog
	Pipeline *imagegen.Pipeline
	Exporter *export.Exporter
	// UploadsDir is the root directory; each session writes below UploadsDir/<id>.
	UploadsDir string
	// UploadsURL is the public prefix the uploads directory is served under.
	UploadsURL string
}

// Session owns all state of one styling session. Every mutation goes through a method
// and is serialised by mu; the provider call runs with mu released.
type Session struct {
	mu sync.Mutex

	id         string
	catalog    *catalog.Catalog
	pipeline   *imagegen.Pipeline
	exporter   *export.Exporter
	uploadsDir string
	uploadsURL string

	upload    *UploadedImage
	modelID   string
	scene     string
	history   *lighting.History
	generated *GeneratedImage
	loading   bool
	errMsg    string

	createdAt time.Time
	updatedAt time.Time
}

func New(id string, opts Options) *Session {
	now := time.Now()
	exporter := opts.Exporter
	if exporter == nil {
		exporter = export.New()
	}
	uploadsURL := opts.UploadsURL
	if uploadsURL == "" {
		uploadsURL = "/uploads"
	}
	return &Session{
		id:         id,
		catalog:    opts.Catalog,
		pipeline:   opts.Pipeline,
		exporter:   exporter,
		uploadsDir: filepath.Join(opts.UploadsDir, id),
		uploadsURL: uploadsURL,
		modelID:    opts.Catalog.DefaultModelID(),
		scene:      opts.Catalog.DefaultScene(),
		history:    lighting.NewHistory(),
		createdAt:  now,
		updatedAt:  now,
	}
}

func (s *Session) ID() string { return s.id }

// Upload stores a new product photo, replacing the previous one and clearing any result.
func (s *Session) Upload(filename string, data []byte) (*UploadedImage, error) {
	if len(data) == 0 {
		return nil, imagegen.ErrMissingInput
	}

	mimeType := http.DetectContentType(data)
	ext, ok := accepted[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w (got %s)", ErrUnsupportedMedia, mimeType)
	}

	width, height := 0, 0
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		slog.Warn("Failed to get image dimensions", "session_id", s.id, "error", err)
	} else {
		width, height = cfg.Width, cfg.Height
	}

	sum := md5.Sum(data)
	name := hex.EncodeToString(sum[:]) + ext

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.uploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	filePath := filepath.Join(s.uploadsDir, name)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	if s.upload != nil && s.upload.Path != filePath {
		if err := os.Remove(s.upload.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to remove previous upload", "session_id", s.id, "path", s.upload.Path, "err", err)
		}
	}

	s.upload = &UploadedImage{
		Filename:   filename,
		Path:       filePath,
		PreviewURL: path.Join(s.uploadsURL, s.id, name),
		MIMEType:   mimeType,
		Width:      width,
		Height:     height,
		Size:       len(data),
	}
	s.generated = nil
	s.errMsg = ""
	s.touch()

	slog.Info("Image uploaded", "session_id", s.id, "filename", filename, "mime_type", mimeType, "width", width, "height", height)
	u := *s.upload
	return &u, nil
}

// SelectModel picks a virtual model. An empty id clears the selection.
func (s *Session) SelectModel(id string) error {
	if id != "" {
		if _, ok := s.catalog.Model(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownModel, id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.modelID = id
	s.touch()
	return nil
}

// SetScene replaces the freeform scene description.
func (s *Session) SetScene(text string) error {
	if n := utf8.RuneCountInString(text); n > s.catalog.SceneMaxLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrSceneTooLong, n, s.catalog.SceneMaxLength)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene = text
	s.touch()
	return nil
}

// SelectBackground sets the scene to a catalog background.
func (s *Session) SelectBackground(key string) error {
	b, ok := s.catalog.Background(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBackground, key)
	}
	return s.SetScene(b.Full)
}

func (s *Session) AdjustLighting(p lighting.Partial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.history.Adjust(p); err != nil {
		return err
	}
	s.touch()
	return nil
}

func (s *Session) CommitLighting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.history.Commit()
}

func (s *Session) UndoLighting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.history.Undo()
}

func (s *Session) RedoLighting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.history.Redo()
}

// Lighting returns the live lighting values.
func (s *Session) Lighting() lighting.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Current()
}

// Prompt returns the prompt a Generate call would send right now.
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promptLocked()
}

func (s *Session) promptLocked() string {
	var model *catalog.VirtualModel
	if m, ok := s.catalog.Model(s.modelID); ok {
		model = m
	}
	return prompt.Compose(model, s.scene, s.history.Current())
}

// Generate reads the current upload and requests one generated image. Only one
// request may be outstanding per session.
func (s *Session) Generate(ctx context.Context) (*GeneratedImage, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, ErrGenerationInFlight
	}

	if s.upload == nil || strings.TrimSpace(s.scene) == "" {
		s.errMsg = imagegen.KindMissingInput.Message()
		s.touch()
		s.mu.Unlock()
		return nil, imagegen.ErrMissingInput
	}

	s.loading = true
	s.errMsg = ""
	s.generated = nil
	s.touch()

	payload, err := s.pipeline.Read(imagegen.Source{Path: s.upload.Path, MIMEType: s.upload.MIMEType}, s.promptLocked())
	if err != nil {
		s.loading = false
		s.errMsg = imagegen.UserMessage(err)
		s.mu.Unlock()
		slog.Error("Failed to read upload", "session_id", s.id, "err", err)
		return nil, err
	}
	s.mu.Unlock()

	slog.Info("Generating image", "session_id", s.id, "provider", s.pipeline.Provider(), "model", s.pipeline.Model())
	res, err := s.pipeline.Request(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.touch()

	if err != nil {
		s.errMsg = imagegen.UserMessage(err)
		return nil, err
	}

	s.generated = &GeneratedImage{
		Data:        res.Data,
		MIMEType:    res.MIMEType,
		Provider:    res.Provider,
		Model:       res.Model,
		Prompt:      res.Prompt,
		GeneratedAt: time.Now(),
	}
	slog.Info("Image generated", "session_id", s.id, "bytes", len(res.Data), "duration", res.Duration)
	g := *s.generated
	return &g, nil
}

// Result returns the last generated image.
func (s *Session) Result() (*GeneratedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generated == nil {
		return nil, ErrNoResult
	}
	g := *s.generated
	return &g, nil
}

// Export renders the current result for one preset.
func (s *Session) Export(ctx context.Context, presetKey string) (*export.File, error) {
	preset, ok := s.catalog.ExportPreset(presetKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, presetKey)
	}
	res, err := s.Result()
	if err != nil {
		return nil, err
	}
	return s.exporter.Export(ctx, res.Data, *preset)
}

// ExportAll renders the current result for every catalog preset.
func (s *Session) ExportAll(ctx context.Context) ([]export.File, error) {
	res, err := s.Result()
	if err != nil {
		return nil, err
	}
	return s.exporter.ExportAll(ctx, res.Data, s.catalog.ExportPresets)
}

// Snapshot returns the JSON view of the session.
func (s *Session) Snapshot() models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := models.SessionView{
		ID:          s.id,
		ModelID:     s.modelID,
		Scene:       s.scene,
		SceneLength: utf8.RuneCountInString(s.scene),
		SceneMax:    s.catalog.SceneMaxLength,
		Lighting: models.LightingView{
			Current: s.history.Current(),
			History: s.history.Entries(),
			Cursor:  s.history.Cursor(),
			CanUndo: s.history.CanUndo(),
			CanRedo: s.history.CanRedo(),
			Min:     lighting.MinValue,
			Max:     lighting.MaxValue,
		},
		Prompt:    s.promptLocked(),
		Loading:   s.loading,
		Error:     s.errMsg,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}

	if s.upload != nil {
		view.Upload = &models.UploadItem{
			Filename:   s.upload.Filename,
			PreviewURL: s.upload.PreviewURL,
			MIMEType:   s.upload.MIMEType,
			Width:      s.upload.Width,
			Height:     s.upload.Height,
			Size:       s.upload.Size,
		}
	}

	if s.generated != nil {
		view.Result = &models.ResultItem{
			URL:         "/api/sessions/" + s.id + "/result",
			MIMEType:    s.generated.MIMEType,
			Provider:    s.generated.Provider,
			Model:       s.generated.Model,
			Prompt:      s.generated.Prompt,
			GeneratedAt: s.generated.GeneratedAt,
		}
	}

	return view
}

// Close discards the session's stored uploads.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upload = nil
	s.generated = nil
	if err := os.RemoveAll(s.uploadsDir); err != nil {
		return fmt.Errorf("failed to remove uploads for session %s: %w", s.id, err)
	}
	return nil
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}
