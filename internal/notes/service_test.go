package notes

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/soverin/inkpot/internal/apperr"
	"github.com/soverin/inkpot/internal/images"
	"github.com/soverin/inkpot/internal/storage"
	"github.com/soverin/inkpot/internal/testutil"
)

func testService(t *testing.T) (*Service, *storage.FS, *storage.FS) {
	t.Helper()
	_, noteFS := testutil.TestDir(t)
	_, imageFS := testutil.TestDir(t)
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(noteFS, images.NewStore(imageFS), db, logger)
	return svc, noteFS, imageFS
}

func TestCreate(t *testing.T) {
	svc, noteFS, _ := testService(t)

	note, err := svc.Create("foo")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if note.Filename != "foo.md" {
		t.Errorf("filename = %q, want foo.md", note.Filename)
	}
	if note.Path != "/file/foo.md" {
		t.Errorf("path = %q", note.Path)
	}
	if note.ID == "" {
		t.Error("empty id")
	}
	if !noteFS.Exists("foo.md") {
		t.Error("file not written")
	}
}

func TestCreateDisambiguatesCollision(t *testing.T) {
	svc, _, _ := testService(t)

	first, err := svc.Create("foo")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Create("foo")
	if err != nil {
		t.Fatal(err)
	}
	if first.Filename == second.Filename {
		t.Fatalf("both creates yielded %q", first.Filename)
	}
	// The second filename embeds a millisecond timestamp before the
	// extension.
	if !strings.HasPrefix(second.Filename, "foo") || second.Filename == "foo.md" {
		t.Errorf("second filename = %q", second.Filename)
	}
	if !strings.HasSuffix(second.Filename, Ext) {
		t.Errorf("second filename = %q, missing extension", second.Filename)
	}
}

func TestReadMissing(t *testing.T) {
	svc, _, _ := testService(t)
	if _, err := svc.Read("absent.md"); err != apperr.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveAndRead(t *testing.T) {
	svc, _, _ := testService(t)
	_, _ = svc.Create("n")

	if err := svc.Save("n.md", []byte("# updated")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := svc.Read("n.md")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "# updated" {
		t.Errorf("content = %q", got)
	}
}

func TestListPagination(t *testing.T) {
	svc, noteFS, _ := testService(t)
	for _, name := range []string{"a.md", "b.md", "c.md"} {
		if err := noteFS.Write(name, []byte(name)); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond) // distinct modtimes
	}

	res, err := svc.List(1, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(res.Items))
	}
	if res.Total != 3 {
		t.Errorf("total = %d, want 3", res.Total)
	}
	if !res.HasMore {
		t.Error("hasMore = false, want true")
	}
	// Newest first.
	if res.Items[0].Filename != "c.md" {
		t.Errorf("first item = %q, want c.md", res.Items[0].Filename)
	}

	last, err := svc.List(3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if last.HasMore {
		t.Error("hasMore on last page")
	}

	beyond, err := svc.List(5, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(beyond.Items) != 0 {
		t.Errorf("items beyond end = %d", len(beyond.Items))
	}
}

func TestListDefaults(t *testing.T) {
	svc, _, _ := testService(t)
	res, err := svc.List(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Page != 1 || res.PageSize != 20 {
		t.Errorf("defaults = %d/%d, want 1/20", res.Page, res.PageSize)
	}
}

func TestDeleteRemovesReferencedImages(t *testing.T) {
	svc, noteFS, imageFS := testService(t)
	_ = imageFS.Write("abc.png", []byte("png bytes"))
	_ = imageFS.Write("kept.png", []byte("png bytes"))
	_ = noteFS.Write("n.md", []byte("x ![x](/image/abc.png) y"))

	if err := svc.Delete("n.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if noteFS.Exists("n.md") {
		t.Error("note still present")
	}
	if imageFS.Exists("abc.png") {
		t.Error("referenced image not collected")
	}
	if !imageFS.Exists("kept.png") {
		t.Error("unreferenced image removed")
	}
}

func TestDeleteWithMissingImage(t *testing.T) {
	svc, noteFS, _ := testService(t)
	_ = noteFS.Write("n.md", []byte("![x](/image/ghost.png)"))

	if err := svc.Delete("n.md"); err != nil {
		t.Fatalf("Delete with missing attachment: %v", err)
	}
}

func TestDeleteMissingNote(t *testing.T) {
	svc, _, _ := testService(t)
	if err := svc.Delete("absent.md"); err != apperr.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRename(t *testing.T) {
	svc, noteFS, _ := testService(t)
	_ = noteFS.Write("old.md", []byte("content"))

	note, err := svc.Rename("old.md", "new")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if note.Filename != "new.md" {
		t.Errorf("filename = %q", note.Filename)
	}
	if noteFS.Exists("old.md") || !noteFS.Exists("new.md") {
		t.Error("rename did not move the file")
	}
}

func TestRenameMissingSource(t *testing.T) {
	svc, _, _ := testService(t)
	if _, err := svc.Rename("absent.md", "x"); err != apperr.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRenameCollision(t *testing.T) {
	svc, noteFS, _ := testService(t)
	_ = noteFS.Write("a.md", []byte("a"))
	_ = noteFS.Write("b.md", []byte("b"))

	note, err := svc.Rename("a.md", "b")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if note.Filename == "b.md" {
		t.Error("collision not disambiguated")
	}
	if !strings.HasPrefix(note.Filename, "b") {
		t.Errorf("filename = %q", note.Filename)
	}
	if !noteFS.Exists("b.md") {
		t.Error("existing target clobbered")
	}
}

func TestCreateFromUpload(t *testing.T) {
	svc, _, _ := testService(t)

	note, err := svc.CreateFromUpload("up.md", []byte("uploaded"))
	if err != nil {
		t.Fatalf("CreateFromUpload: %v", err)
	}
	if note.Title != "up" {
		t.Errorf("title = %q", note.Title)
	}

	// Upload rejects collisions instead of disambiguating.
	if _, err := svc.CreateFromUpload("up.md", []byte("again")); err != apperr.ErrAlreadyExists {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestCreateFromUploadRequiresExtension(t *testing.T) {
	svc, _, _ := testService(t)
	if _, err := svc.CreateFromUpload("file.txt", []byte("x")); err == nil {
		t.Error("expected error for non-note extension")
	}
}
