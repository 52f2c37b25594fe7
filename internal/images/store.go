// Package images manages note image attachments: generated filenames,
// extension filtering, and Markdown reference extraction.
package images

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/soverin/inkpot/internal/storage"
)

// refRe matches embedded Markdown image links of the form
// ![alt](/image/<filename>).
var refRe = regexp.MustCompile(`!\[.*?\]\(/image/([^)]+)\)`)

var allowedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Store saves and removes attachment files in the images directory.
type Store struct {
	files storage.Provider
	now   func() time.Time
}

// NewStore creates a store over the given images directory provider.
func NewStore(files storage.Provider) *Store {
	return &Store{files: files, now: time.Now}
}

// Save stores content under a generated name, keeping the original
// extension, and returns the stored filename.
func (s *Store) Save(originalName string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("images: unsupported extension: %s", ext)
	}
	name := fmt.Sprintf("%d_%s%s", s.now().UnixMilli(), randSuffix(8), ext)
	if err := s.files.Write(name, content); err != nil {
		return "", err
	}
	return name, nil
}

// Remove deletes the named attachment if it exists. Missing files are
// ignored.
func (s *Store) Remove(name string) error {
	if !s.files.Exists(name) {
		return nil
	}
	return s.files.Delete(name)
}

// Exists reports whether the named attachment is present.
func (s *Store) Exists(name string) bool {
	return s.files.Exists(name)
}

// ExtractRefs returns every attachment filename referenced by the given
// note content.
func ExtractRefs(content []byte) []string {
	matches := refRe.FindAllSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, string(m[1]))
	}
	return out
}

// ContentType returns the MIME type for an attachment filename, falling
// back to image/jpeg for unknown extensions.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "image/jpeg"
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randSuffix(n int) string {
	var b strings.Builder
	for range n {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return b.String()
}
