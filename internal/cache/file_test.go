package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return fs
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	if fs.Exists(ctx, "actas/acta_1.html") {
		t.Fatal("fresh store must not report the key")
	}
	if _, err := fs.Read(ctx, "actas/acta_1.html"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read on missing key: got %v, want ErrNotFound", err)
	}

	if err := fs.Write(ctx, "actas/acta_1.html", []byte("<table></table>")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !fs.Exists(ctx, "actas/acta_1.html") {
		t.Fatal("Exists must be true after Write")
	}
	data, err := fs.Read(ctx, "actas/acta_1.html")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "<table></table>" {
		t.Errorf("Read = %q", data)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	if err := fs.Write(ctx, "k", []byte("old")); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if err := fs.Write(ctx, "k", []byte("new")); err != nil {
		t.Fatalf("second Write: %v", err)
	}
	data, err := fs.Read(ctx, "k")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("Read after overwrite = %q", data)
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFileStore(root)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := fs.Write(context.Background(), "standings/standings_14110.html", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "standings"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "standings_14110.html" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestFileStoreConfinesKeys(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFileStore(root)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	if err := fs.Write(ctx, "../escape.html", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "escape.html")); err == nil {
		t.Fatal("key escaped the cache root")
	}
	if _, err := fs.Read(ctx, "../escape.html"); err != nil {
		t.Errorf("Read through the same key: %v", err)
	}
}
