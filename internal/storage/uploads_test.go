package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAllowedFile(t *testing.T) {
	tests := []struct {
		filename string
		expected bool
	}{
		{"shoe.png", true},
		{"shoe.JPG", true},
		{"shoe.jpeg", true},
		{"shoe.gif", true},
		{"shoe.txt", false},
		{"shoe", false},
		{"shoe.", false},
		{"", false},
		{"archive.png.exe", false},
	}

	for _, tc := range tests {
		t.Run(tc.filename, func(t *testing.T) {
			if got := AllowedFile(tc.filename); got != tc.expected {
				t.Errorf("AllowedFile(%q) = %v, expected %v", tc.filename, got, tc.expected)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"My Sneakers.png", "My_Sneakers.png"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\air max.jpg`, "air_max.jpg"},
		{"naïve shoe.gif", "nave_shoe.gif"},
		{"..hidden.png", "hidden.png"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := SanitizeFilename(tc.in); got != tc.expected {
				t.Errorf("SanitizeFilename(%q) = %q, expected %q", tc.in, got, tc.expected)
			}
		})
	}
}

func TestUploadStore_SaveReadRemove(t *testing.T) {
	store, err := NewUploadStore(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	up, err := store.Save(strings.NewReader("PNGDATA"), "air max.JPG")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if up.MIMEType != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", up.MIMEType)
	}
	if !strings.HasSuffix(up.Name, "_air_max.JPG") {
		t.Errorf("expected uuid-prefixed sanitized name, got %q", up.Name)
	}
	if filepath.Dir(up.Path) != store.Dir() {
		t.Errorf("upload written outside store dir: %s", up.Path)
	}

	data, err := up.Read()
	if err != nil || string(data) != "PNGDATA" {
		t.Fatalf("read back mismatch: %q, %v", data, err)
	}

	if err := up.Remove(); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := os.Stat(up.Path); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed")
	}
	if err := up.Remove(); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
}

func TestUploadStore_SaveRejectsDisallowedType(t *testing.T) {
	store, _ := NewUploadStore(t.TempDir())

	if _, err := store.Save(strings.NewReader("hello"), "notes.txt"); err == nil {
		t.Fatal("expected error for .txt upload")
	}

	entries, _ := os.ReadDir(store.Dir())
	if len(entries) != 0 {
		t.Fatalf("expected no files written, found %d", len(entries))
	}
}

func TestUploadStore_SaveUniqueNames(t *testing.T) {
	store, _ := NewUploadStore(t.TempDir())

	a, _ := store.Save(strings.NewReader("a"), "shoe.png")
	b, _ := store.Save(strings.NewReader("b"), "shoe.png")
	if a.Path == b.Path {
		t.Fatalf("expected unique paths, both %s", a.Path)
	}
}

func TestUploadStore_SaveUnnamableFallsBackToUUID(t *testing.T) {
	store, _ := NewUploadStore(t.TempDir())

	up, err := store.Save(strings.NewReader("x"), "ботинки.png")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasSuffix(up.Name, ".png") {
		t.Fatalf("expected .png suffix, got %q", up.Name)
	}
}

func TestUploadStore_RemoveOlderThan(t *testing.T) {
	store, _ := NewUploadStore(t.TempDir())

	old, _ := store.Save(strings.NewReader("old"), "old.png")
	fresh, _ := store.Save(strings.NewReader("new"), "new.png")

	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(old.Path, past, past); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}

	removed, err := store.RemoveOlderThan(time.Hour)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 file removed, got %d", removed)
	}
	if _, err := os.Stat(old.Path); !os.IsNotExist(err) {
		t.Errorf("expected old upload to be removed")
	}
	if _, err := os.Stat(fresh.Path); err != nil {
		t.Errorf("expected fresh upload to be kept: %v", err)
	}
}
