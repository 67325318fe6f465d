// Package storage defines the vault file-system abstraction.
package storage

import "github.com/WallySa7/alrawi/internal/models"

// Provider is the interface for vault document operations. All paths are
// relative to the vault root.
type Provider interface {
	// List returns metadata for every .md document under dir (recursive).
	List(dir string) ([]models.DocumentInfo, error)
	// Read returns the raw bytes of the document at path.
	Read(path string) ([]byte, error)
	// Write atomically overwrites the document at path.
	Write(path string, content []byte) error
	// Create writes a new document; it fails when path already exists.
	Create(path string, content []byte) error
	// Delete removes the document at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
