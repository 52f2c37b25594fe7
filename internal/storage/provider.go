// Package storage provides flat-directory file stores for notes and images.
package storage

import "time"

// FileInfo is the metadata returned by list operations.
type FileInfo struct {
	Name     string
	Size     int64
	ModTime  time.Time
	Checksum string
}

// Provider is the interface for data-directory file operations.
// All names are bare filenames; nested paths are rejected.
type Provider interface {
	// List returns metadata for every file whose name ends in ext
	// (every file when ext is empty).
	List(ext string) ([]FileInfo, error)
	// Read returns the raw bytes of the named file.
	Read(name string) ([]byte, error)
	// Write atomically writes content to the named file.
	Write(name string, content []byte) error
	// Delete removes the named file.
	Delete(name string) error
	// Rename renames oldName to newName within the directory.
	Rename(oldName, newName string) error
	// Exists reports whether the named file exists.
	Exists(name string) bool
	// Stat returns metadata for the named file.
	Stat(name string) (FileInfo, error)
}
