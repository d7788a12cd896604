package studio

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MalinduDS/styleshot/internal/catalog"
	"github.com/MalinduDS/styleshot/internal/imagegen"
	"github.com/MalinduDS/styleshot/internal/lighting"
	"github.com/MalinduDS/styleshot/internal/providers"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	err     error
	out     []byte
	// release, when set, blocks GenerateImage until it is closed.
	release chan struct{}
	started chan struct{}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GenerateImage(ctx context.Context, req providers.Request) (*providers.Image, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &providers.Image{Data: f.out, MIMEType: "image/png"}, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestSession(t *testing.T, fp *fakeProvider) *Session {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	if fp.out == nil {
		fp.out = encodePNG(t, 4, 4)
	}
	return New("sess-1", Options{
		Catalog:    c,
		Pipeline:   imagegen.NewPipeline(fp, imagegen.Options{Model: "test-model"}),
		UploadsDir: t.TempDir(),
	})
}

func intPtr(v int) *int { return &v }

func TestNewSessionDefaults(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})
	view := s.Snapshot()

	if view.ModelID != "arab-1" {
		t.Errorf("Expected default model arab-1, got %s", view.ModelID)
	}
	if !strings.HasPrefix(view.Scene, "in a chic Parisian apartment") {
		t.Errorf("Unexpected default scene %q", view.Scene)
	}
	if view.SceneMax != 300 || view.SceneLength != len([]rune(view.Scene)) {
		t.Errorf("Unexpected scene counter %d/%d", view.SceneLength, view.SceneMax)
	}
	if view.Lighting.CanUndo || view.Lighting.CanRedo {
		t.Error("Fresh session should not allow undo/redo")
	}
	if view.Upload != nil || view.Result != nil || view.Loading {
		t.Errorf("Fresh session should be empty: %+v", view)
	}
}

func TestUpload(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})

	u, err := s.Upload("dress.jpg", encodeJPEG(t, 12, 7))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if u.MIMEType != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", u.MIMEType)
	}
	if u.Width != 12 || u.Height != 7 {
		t.Errorf("Expected 12x7, got %dx%d", u.Width, u.Height)
	}
	if !strings.HasPrefix(u.PreviewURL, "/uploads/sess-1/") || !strings.HasSuffix(u.PreviewURL, ".jpg") {
		t.Errorf("Unexpected preview URL %s", u.PreviewURL)
	}
	if _, err := os.Stat(u.Path); err != nil {
		t.Errorf("Expected upload stored on disk: %v", err)
	}
}

func TestUploadAcceptsWebP(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})
	webp := append([]byte("RIFF\x00\x00\x00\x00WEBPVP8 "), make([]byte, 16)...)

	u, err := s.Upload("shirt.webp", webp)
	if err != nil {
		t.Fatalf("Expected webp to be accepted, got %v", err)
	}
	if u.MIMEType != "image/webp" {
		t.Errorf("Expected image/webp, got %s", u.MIMEType)
	}
}

func TestUploadRejectsUnsupportedMedia(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})

	_, err := s.Upload("notes.txt", []byte("just some text"))
	if !errors.Is(err, ErrUnsupportedMedia) {
		t.Fatalf("Expected ErrUnsupportedMedia, got %v", err)
	}
	if s.Snapshot().Upload != nil {
		t.Error("Rejected upload must not replace the session upload")
	}
}

func TestReuploadReplacesAndClearsResult(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})

	first, err := s.Upload("a.jpg", encodeJPEG(t, 4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Generate(context.Background()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	second, err := s.Upload("b.png", encodePNG(t, 5, 5))
	if err != nil {
		t.Fatal(err)
	}

	view := s.Snapshot()
	if view.Result != nil {
		t.Error("Expected new upload to clear the generated image")
	}
	if view.Upload.Filename != "b.png" {
		t.Errorf("Expected b.png, got %s", view.Upload.Filename)
	}
	if _, err := os.Stat(first.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected previous upload to be removed, stat err=%v", err)
	}
	if _, err := os.Stat(second.Path); err != nil {
		t.Errorf("Expected new upload on disk: %v", err)
	}
}

func TestSelectModel(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})

	if err := s.SelectModel("euro-2"); err != nil {
		t.Fatalf("SelectModel failed: %v", err)
	}
	if !strings.HasPrefix(s.Prompt(), "A chic European model, age 21") {
		t.Errorf("Prompt does not use selected model: %s", s.Prompt())
	}

	if err := s.SelectModel("missing"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("Expected ErrUnknownModel, got %v", err)
	}

	if err := s.SelectModel(""); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(s.Prompt(), "A professional photo of this clothing item, ") {
		t.Errorf("Expected fallback prompt, got %s", s.Prompt())
	}
}

func TestSetScene(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})

	if err := s.SetScene(strings.Repeat("é", 300)); err != nil {
		t.Errorf("Expected 300 characters to be accepted, got %v", err)
	}
	if err := s.SetScene(strings.Repeat("a", 301)); !errors.Is(err, ErrSceneTooLong) {
		t.Errorf("Expected ErrSceneTooLong, got %v", err)
	}
	if got := s.Snapshot().SceneLength; got != 300 {
		t.Errorf("Expected rejected scene to leave length 300, got %d", got)
	}

	if err := s.SelectBackground("runway-show"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(s.Snapshot().Scene, "on a high-fashion runway") {
		t.Errorf("Unexpected scene after background selection: %s", s.Snapshot().Scene)
	}
	if err := s.SelectBackground("moon"); !errors.Is(err, ErrUnknownBackground) {
		t.Errorf("Expected ErrUnknownBackground, got %v", err)
	}
}

func TestLightingOperations(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})
	_ = s.SelectModel("")
	_ = s.SetScene("X")

	if err := s.AdjustLighting(lighting.Partial{Brightness: intPtr(30), Contrast: intPtr(-30)}); err != nil {
		t.Fatal(err)
	}
	if got := s.Prompt(); got != "A professional photo of this clothing item, X, bright lighting, low contrast, soft focus" {
		t.Errorf("Unexpected prompt with live lighting: %s", got)
	}
	if s.Snapshot().Lighting.CanUndo {
		t.Error("Adjust alone must not create history")
	}

	if !s.CommitLighting() {
		t.Fatal("Expected commit to record a snapshot")
	}
	if s.CommitLighting() {
		t.Error("Expected repeated commit to be a no-op")
	}
	if !s.UndoLighting() {
		t.Fatal("Expected undo to succeed")
	}
	if s.Lighting() != (lighting.State{}) {
		t.Errorf("Expected zero lighting after undo, got %+v", s.Lighting())
	}
	if !s.RedoLighting() {
		t.Fatal("Expected redo to succeed")
	}
	if s.RedoLighting() {
		t.Error("Expected redo at newest entry to be a no-op")
	}

	err := s.AdjustLighting(lighting.Partial{Warmth: intPtr(80)})
	if !errors.Is(err, lighting.ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
}

func TestGenerateRequiresUpload(t *testing.T) {
	fp := &fakeProvider{}
	s := newTestSession(t, fp)

	_, err := s.Generate(context.Background())
	if !errors.Is(err, imagegen.ErrMissingInput) {
		t.Fatalf("Expected ErrMissingInput, got %v", err)
	}
	if fp.callCount() != 0 {
		t.Errorf("Expected no provider calls, got %d", fp.callCount())
	}
	if s.Snapshot().Error != "Please upload an image and provide a prompt." {
		t.Errorf("Unexpected error message: %s", s.Snapshot().Error)
	}
}

func TestGenerateRequiresScene(t *testing.T) {
	fp := &fakeProvider{}
	s := newTestSession(t, fp)
	if _, err := s.Upload("a.jpg", encodeJPEG(t, 4, 4)); err != nil {
		t.Fatal(err)
	}
	_ = s.SetScene("   ")

	if _, err := s.Generate(context.Background()); !errors.Is(err, imagegen.ErrMissingInput) {
		t.Fatalf("Expected ErrMissingInput, got %v", err)
	}
	if fp.callCount() != 0 {
		t.Errorf("Expected no provider calls, got %d", fp.callCount())
	}
}

func TestGenerateSuccess(t *testing.T) {
	fp := &fakeProvider{}
	s := newTestSession(t, fp)
	if _, err := s.Upload("a.jpg", encodeJPEG(t, 4, 4)); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectModel("arab-2"); err != nil {
		t.Fatal(err)
	}

	g, err := s.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if fp.callCount() != 1 {
		t.Errorf("Expected exactly one provider call, got %d", fp.callCount())
	}
	if !strings.HasPrefix(fp.prompts[0], "A poised Arab model, around 22 years old") {
		t.Errorf("Unexpected prompt sent: %s", fp.prompts[0])
	}
	if g.Provider != "fake" || g.Model != "test-model" {
		t.Errorf("Unexpected generated metadata: %+v", g)
	}

	view := s.Snapshot()
	if view.Result == nil || view.Result.URL != "/api/sessions/sess-1/result" {
		t.Errorf("Expected result in view, got %+v", view.Result)
	}
	if view.Loading || view.Error != "" {
		t.Errorf("Expected idle session without error, got loading=%v error=%q", view.Loading, view.Error)
	}
}

func TestGenerateFailureKeepsResultCleared(t *testing.T) {
	fp := &fakeProvider{}
	s := newTestSession(t, fp)
	if _, err := s.Upload("a.jpg", encodeJPEG(t, 4, 4)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}

	fp.err = errors.New("upstream 503 with api key AIza-secret")
	_, err := s.Generate(context.Background())
	if !errors.Is(err, imagegen.ErrGeneration) {
		t.Fatalf("Expected ErrGeneration, got %v", err)
	}

	view := s.Snapshot()
	if view.Result != nil {
		t.Error("Expected previous result to stay cleared after a failure")
	}
	if strings.Contains(view.Error, "secret") {
		t.Errorf("Error message leaks provider details: %s", view.Error)
	}
	if view.Error != imagegen.KindGeneration.Message() {
		t.Errorf("Unexpected error message: %s", view.Error)
	}
	if _, err := s.Result(); !errors.Is(err, ErrNoResult) {
		t.Errorf("Expected ErrNoResult, got %v", err)
	}

	fp.err = nil
	if _, err := s.Generate(context.Background()); err != nil {
		t.Errorf("Expected retry to succeed, got %v", err)
	}
}

func TestGenerateFileReadFailure(t *testing.T) {
	fp := &fakeProvider{}
	s := newTestSession(t, fp)
	u, err := s.Upload("a.jpg", encodeJPEG(t, 4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(u.Path); err != nil {
		t.Fatal(err)
	}

	_, err = s.Generate(context.Background())
	if !errors.Is(err, imagegen.ErrFileRead) {
		t.Fatalf("Expected ErrFileRead, got %v", err)
	}
	if fp.callCount() != 0 {
		t.Errorf("Expected no provider calls, got %d", fp.callCount())
	}
	if s.Snapshot().Loading {
		t.Error("Expected loading to be reset after a read failure")
	}
}

func TestGenerateRejectsConcurrentRequest(t *testing.T) {
	fp := &fakeProvider{release: make(chan struct{}), started: make(chan struct{}, 1)}
	s := newTestSession(t, fp)
	if _, err := s.Upload("a.jpg", encodeJPEG(t, 4, 4)); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Generate(context.Background())
		done <- err
	}()

	select {
	case <-fp.started:
	case <-time.After(5 * time.Second):
		t.Fatal("Provider was never called")
	}

	if !s.Snapshot().Loading {
		t.Error("Expected session to report loading while a request is outstanding")
	}
	if _, err := s.Generate(context.Background()); !errors.Is(err, ErrGenerationInFlight) {
		t.Errorf("Expected ErrGenerationInFlight, got %v", err)
	}

	// A new upload while in flight clears the displayed result but does not cancel the request.
	if _, err := s.Upload("b.png", encodePNG(t, 3, 3)); err != nil {
		t.Fatal(err)
	}

	close(fp.release)
	if err := <-done; err != nil {
		t.Fatalf("Outstanding request failed: %v", err)
	}
	if fp.callCount() != 1 {
		t.Errorf("Expected exactly one provider call, got %d", fp.callCount())
	}
	if s.Snapshot().Result == nil {
		t.Error("Expected the completed request to publish its result")
	}
}

func TestExport(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})

	if _, err := s.Export(context.Background(), "square"); !errors.Is(err, ErrNoResult) {
		t.Errorf("Expected ErrNoResult before generation, got %v", err)
	}
	if _, err := s.Export(context.Background(), "billboard"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Expected ErrUnknownPreset, got %v", err)
	}

	if _, err := s.Upload("a.jpg", encodeJPEG(t, 4, 4)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}

	f, err := s.Export(context.Background(), "square")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if f.Name != "styleshot-instagram_post_1080x1080.png" {
		t.Errorf("Unexpected file name %s", f.Name)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(f.Data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1080 || cfg.Height != 1080 {
		t.Errorf("Expected 1080x1080, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestClose(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})
	u, err := s.Upload("a.jpg", encodeJPEG(t, 4, 4))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(u.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected upload removed on close, stat err=%v", err)
	}
}
