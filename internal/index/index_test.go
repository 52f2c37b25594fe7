package index

import (
	"log/slog"
	"os"
	"testing"

	"github.com/soverin/inkpot/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "inkpot-index-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertAndSearch(t *testing.T) {
	db := testDB(t)

	if err := IndexFile(db, "groceries.md", []byte("# Groceries\nbuy oat milk")); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}

	results, err := db.Search("oat", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Filename != "groceries.md" {
		t.Errorf("filename = %q", results[0].Filename)
	}
	if results[0].Title != "groceries" {
		t.Errorf("title = %q, want filename stem", results[0].Title)
	}
}

func TestSearchByTitle(t *testing.T) {
	db := testDB(t)
	_ = IndexFile(db, "meeting-notes.md", []byte("agenda"))

	results, err := db.Search("meeting", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
}

func TestDeleteNote(t *testing.T) {
	db := testDB(t)
	_ = IndexFile(db, "gone.md", []byte("disposable text"))

	if err := db.DeleteNote("gone.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	results, err := db.Search("disposable", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestSyncAddsAndRemoves(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	notes, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	_ = notes.Write("a.md", []byte("alpha content"))
	_ = notes.Write("b.md", []byte("beta content"))

	if err := Sync(db, notes, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if len(checksums) != 2 {
		t.Fatalf("indexed = %d, want 2", len(checksums))
	}

	// Remove one file on disk; a second sync drops the stale row.
	_ = notes.Delete("a.md")
	if err := Sync(db, notes, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	checksums, _ = db.AllChecksums()
	if _, ok := checksums["a.md"]; ok {
		t.Error("stale entry a.md survived sync")
	}
	if _, ok := checksums["b.md"]; !ok {
		t.Error("b.md missing after sync")
	}
}

func TestSyncSkipsUnchanged(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	notes, _ := storage.NewFS(dir)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	_ = notes.Write("a.md", []byte("stable"))
	if err := Sync(db, notes, logger); err != nil {
		t.Fatal(err)
	}
	// Second sync with identical checksums must not fail.
	if err := Sync(db, notes, logger); err != nil {
		t.Fatal(err)
	}
}
