// Package storage defines the data-directory abstraction the pipeline
// writes its derived artifacts to.
package storage

import "time"

// FileInfo is lightweight metadata for one file under the data root.
type FileInfo struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for data-directory file operations. All paths
// are relative to the data root.
type Provider interface {
	// List walks dir and returns metadata for every .json file.
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
	// RemoveAll deletes the directory at path and everything under it.
	RemoveAll(path string) error
}
