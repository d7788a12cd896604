package storage

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"testing"
	"time"

	"github.com/MalinduDS/styleshot/internal/catalog"
	"github.com/MalinduDS/styleshot/internal/studio"
)

func newSession(t *testing.T, id, dir string) *studio.Session {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	return studio.New(id, studio.Options{Catalog: c, UploadsDir: dir})
}

func uploadPNG(t *testing.T, s *studio.Session) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	u, err := s.Upload("a.png", buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	return u.Path
}

func TestSessionStore(t *testing.T) {
	dir := t.TempDir()
	store := New(time.Hour)

	a := newSession(t, "a", dir)
	b := newSession(t, "b", dir)
	store.Set("a", a)
	store.Set("b", b)

	if got, ok := store.Get("a"); !ok || got != a {
		t.Errorf("Expected to get session a back")
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("Expected missing session lookup to fail")
	}
	if store.Count() != 2 {
		t.Errorf("Expected 2 sessions, got %d", store.Count())
	}

	all := store.GetAll()
	if len(all) != 2 || all["b"] != b {
		t.Errorf("Unexpected GetAll result: %v", all)
	}
}

func TestDeleteRemovesUploads(t *testing.T) {
	store := New(time.Hour)
	s := newSession(t, "a", t.TempDir())
	store.Set("a", s)
	path := uploadPNG(t, s)

	store.Delete("a")

	if _, ok := store.Get("a"); ok {
		t.Error("Expected session to be gone")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected upload removed, stat err=%v", err)
	}
}

func TestIdleSessionsExpire(t *testing.T) {
	store := New(50 * time.Millisecond)
	s := newSession(t, "a", t.TempDir())
	store.Set("a", s)
	path := uploadPNG(t, s)

	deadline := time.Now().Add(5 * time.Second)
	for {
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Expected expired session uploads to be cleaned up")
		}
		time.Sleep(20 * time.Millisecond)
	}

	if _, ok := store.Get("a"); ok {
		t.Error("Expected expired session lookup to fail")
	}
}

func TestNoExpiry(t *testing.T) {
	store := New(0)
	store.Set("a", newSession(t, "a", t.TempDir()))
	time.Sleep(10 * time.Millisecond)
	if _, ok := store.Get("a"); !ok {
		t.Error("Expected session to persist without a TTL")
	}

	store.Close()
	if store.Count() != 0 {
		t.Errorf("Expected Close to evict everything, got %d", store.Count())
	}
}

func TestCloseRemovesExpiredUploads(t *testing.T) {
	store := newStore(20*time.Millisecond, 0)
	s := newSession(t, "a", t.TempDir())
	store.Set("a", s)
	path := uploadPNG(t, s)

	time.Sleep(50 * time.Millisecond)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected upload to survive until Close without a janitor, stat err=%v", err)
	}

	store.Close()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected Close to remove expired session uploads, stat err=%v", err)
	}
}
