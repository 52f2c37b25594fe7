package storage

import (
	"testing"
)

func tempDir(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempDir(t)
	content := []byte("# Hello\nWorld\n")
	if err := s.Write("note.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestNestedNamesRejected(t *testing.T) {
	s := tempDir(t)
	for _, name := range []string{"a/b.md", "../escape.md", "..", ""} {
		if err := s.Write(name, []byte("x")); err == nil {
			t.Errorf("Write(%q) succeeded, want error", name)
		}
		if _, err := s.Read(name); err == nil {
			t.Errorf("Read(%q) succeeded, want error", name)
		}
	}
}

func TestDelete(t *testing.T) {
	s := tempDir(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
	if err := s.Delete("del.md"); err == nil {
		t.Error("expected error deleting missing file")
	}
}

func TestRename(t *testing.T) {
	s := tempDir(t)
	_ = s.Write("old.md", []byte("data"))
	if err := s.Rename("old.md", "new.md"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	got, err := s.Read("new.md")
	if err != nil {
		t.Fatalf("Read after rename: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if s.Exists("old.md") {
		t.Error("old name should not exist")
	}
}

func TestListFiltersByExtension(t *testing.T) {
	s := tempDir(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("b.md", []byte("b"))
	_ = s.Write("c.txt", []byte("c"))

	infos, err := s.List(".md")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("len = %d, want 2", len(infos))
	}
	for _, info := range infos {
		if info.Checksum == "" {
			t.Errorf("%s: empty checksum", info.Name)
		}
		if info.Size != 1 {
			t.Errorf("%s: size = %d, want 1", info.Name, info.Size)
		}
	}

	all, err := s.List("")
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
}

func TestStat(t *testing.T) {
	s := tempDir(t)
	_ = s.Write("s.md", []byte("12345"))
	info, err := s.Stat("s.md")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size != 5 {
		t.Errorf("size = %d, want 5", info.Size)
	}
	if info.ModTime.IsZero() {
		t.Error("zero modtime")
	}
	if _, err := s.Stat("missing.md"); err == nil {
		t.Error("expected error for missing file")
	}
}
