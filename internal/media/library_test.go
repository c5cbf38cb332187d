package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"styleshot/internal/domain"
)

type denyAll struct{}

func (denyAll) CanWrite(context.Context) (bool, error) { return false, nil }

type captureSharer struct {
	paths []string
}

func (s *captureSharer) Share(_ context.Context, path string) error {
	s.paths = append(s.paths, path)
	return nil
}

func newTestLibrary(t *testing.T, opts Options) *Library {
	t.Helper()
	if opts.Root == "" {
		opts.Root = t.TempDir()
	}
	l, err := NewLibrary(opts)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	return l
}

func TestSaveImageRoundTrip(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}
	fixed := time.UnixMilli(1700000000123)
	l := newTestLibrary(t, Options{Now: func() time.Time { return fixed }})

	payload := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)
	path, err := l.SaveImage(context.Background(), payload, "Anime", 2)
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	wantName := "styleshot-anime-1700000000123-3.jpg"
	if filepath.Base(path) != wantName {
		t.Fatalf("filename = %q, want %q", filepath.Base(path), wantName)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("saved bytes differ from decoded payload")
	}
}

func TestSaveImageBareBase64(t *testing.T) {
	l := newTestLibrary(t, Options{})
	path, err := l.SaveImage(context.Background(), base64.StdEncoding.EncodeToString([]byte("pixels")), "lego", 0)
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if !strings.HasSuffix(filepath.Base(path), "-1.jpg") {
		t.Fatalf("slot 0 should produce a -1 suffix, got %q", filepath.Base(path))
	}
}

func TestSaveImagePermissionDenied(t *testing.T) {
	root := t.TempDir()
	l := newTestLibrary(t, Options{Root: root, Perms: denyAll{}})

	_, err := l.SaveImage(context.Background(), base64.StdEncoding.EncodeToString([]byte("x")), "anime", 0)
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	entries, readErr := os.ReadDir(filepath.Join(root, albumDir))
	if readErr != nil {
		t.Fatalf("read album dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("album should stay empty on denial, found %d entries", len(entries))
	}
}

func TestSaveImageInvalidPayload(t *testing.T) {
	l := newTestLibrary(t, Options{})
	for _, payload := range []string{"", "   ", "data:image/jpeg;base64", "not-base-64!!"} {
		if _, err := l.SaveImage(context.Background(), payload, "anime", 0); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("payload %q: err = %v, want ErrInvalidInput", payload, err)
		}
	}
}

func TestShareImageStagesCopy(t *testing.T) {
	sharer := &captureSharer{}
	l := newTestLibrary(t, Options{Sharer: sharer})

	raw := []byte("share me")
	path, err := l.ShareImage(context.Background(), base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("ShareImage: %v", err)
	}
	if len(sharer.paths) != 1 || sharer.paths[0] != path {
		t.Fatalf("sharer received %v, want [%s]", sharer.paths, path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("staged bytes differ from payload")
	}
}
