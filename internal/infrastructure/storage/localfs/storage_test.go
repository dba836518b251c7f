package localfs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndRemoveCase(t *testing.T) {
	base := t.TempDir()
	s, err := New(base)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := s.Save(ctx, "case-1/identity_id.png", bytes.NewBufferString("png bytes")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := s.PathFor("case-1/identity_id.png")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(raw) != "png bytes" {
		t.Fatalf("content = %q", raw)
	}

	if err := s.RemoveCase(ctx, "case-1"); err != nil {
		t.Fatalf("RemoveCase: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "case-1")); !os.IsNotExist(err) {
		t.Fatalf("case dir should be gone, stat err = %v", err)
	}
}

func TestRemoveCaseIsIdempotent(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.RemoveCase(context.Background(), "never-existed"); err != nil {
		t.Fatalf("RemoveCase on a missing case: %v", err)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := s.Save(ctx, "../outside.txt", bytes.NewBufferString("x")); err == nil {
		t.Fatal("traversal key must be rejected")
	}
	if err := s.Save(ctx, "", bytes.NewBufferString("x")); err == nil {
		t.Fatal("empty key must be rejected")
	}
	if err := s.RemoveCase(ctx, ".."); err == nil {
		t.Fatal("traversal case id must be rejected")
	}
}
