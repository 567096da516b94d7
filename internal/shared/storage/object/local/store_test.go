package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"scriptorium-backend/internal/shared/storage/object"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	key, size, _, err := store.Save(ctx, "user-1", "sample.mp3", bytes.NewReader([]byte("audio-bytes")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len("audio-bytes")) {
		t.Fatalf("size = %d, want %d", size, len("audio-bytes"))
	}
	if strings.Contains(key, "\\") {
		t.Fatalf("storage key must use forward slashes, got %q", key)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Fatalf("got %q, want %q", data, "audio-bytes")
	}
}

func TestSaveWithKeyOverwriteIsIdempotent(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	key := "tts-output/abc.mp3"

	if _, err := store.SaveWithKey(ctx, key, "audio/mpeg", strings.NewReader("first")); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := store.SaveWithKey(ctx, key, "audio/mpeg", strings.NewReader("second")); err != nil {
		t.Fatalf("second save: %v", err)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "second" {
		t.Fatalf("got %q, want last write to win", data)
	}
}

func TestOpenMissingKeyIsNotFound(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Open(context.Background(), "tts-output/missing.mp3")
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected object.ErrNotFound, got %v", err)
	}
}

func TestSaveWithKeyRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())

	if _, err := store.SaveWithKey(context.Background(), "../escape.mp3", "audio/mpeg", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for traversal key")
	}
	if _, err := store.Open(context.Background(), "/etc/passwd"); err == nil {
		t.Fatal("expected error for absolute key")
	}
}

func TestSaveRejectsBadFileName(t *testing.T) {
	store := New(t.TempDir())

	if _, _, _, err := store.Save(context.Background(), "user-1", "../../x.mp3", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for traversal file name")
	}
}
