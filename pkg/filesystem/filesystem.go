// Package filesystem puts local, SFTP and in-memory trees behind one
// interface so the sync pipeline never touches os directly.
package filesystem

import (
	"fmt"
	"io"
	"os"
	"time"
)

// File is an open file on any FileSystem.
type File interface {
	io.Reader
	io.Writer
	io.Closer
	Stat() (os.FileInfo, error)
}

// FileSystem is the set of operations the sync pipeline performs on a root.
type FileSystem interface {
	// Scan returns an iterator over every entry beneath root, depth-first.
	// root itself is not yielded.
	Scan(root string) FileScanner

	Open(path string) (File, error)
	Create(path string) (File, error)
	// Mkdir creates exactly one directory; the parent must already exist.
	Mkdir(path string, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Chtimes(path string, atime, mtime time.Time) error
	// Remove deletes a file or an empty directory.
	Remove(path string) error
	Stat(path string) (os.FileInfo, error)

	// Separator is the byte used to join path components on this filesystem.
	Separator() byte
	// ModTimePrecision is the granularity at which this filesystem stores
	// modification times. Zero means full precision.
	ModTimePrecision() time.Duration
}

// RealFileSystem is the local disk.
type RealFileSystem struct{}

// NewRealFileSystem creates a new RealFileSystem instance.
func NewRealFileSystem() *RealFileSystem {
	return &RealFileSystem{}
}

// Chtimes changes the access and modification times of a file.
func (fs *RealFileSystem) Chtimes(path string, atime, mtime time.Time) error {
	err := os.Chtimes(path, atime, mtime)
	if err != nil {
		return fmt.Errorf("failed to change times for %s: %w", path, err)
	}

	return nil
}

// Create creates or truncates a file for writing.
func (fs *RealFileSystem) Create(path string) (File, error) {
	file, err := os.Create(path) // #nosec G304 - path is derived from configured roots
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return file, nil
}

// Mkdir creates a single directory.
func (fs *RealFileSystem) Mkdir(path string, perm os.FileMode) error {
	err := os.Mkdir(path, perm)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	return nil
}

// MkdirAll creates a directory and all necessary parents.
func (fs *RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	err := os.MkdirAll(path, perm)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	return nil
}

// Open opens a file for reading.
func (fs *RealFileSystem) Open(path string) (File, error) {
	file, err := os.Open(path) // #nosec G304 - path is derived from configured roots
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return file, nil
}

// Remove removes a file or empty directory.
func (fs *RealFileSystem) Remove(path string) error {
	err := os.Remove(path)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}

// Scan returns an iterator over all entries in a directory tree.
func (fs *RealFileSystem) Scan(root string) FileScanner {
	return newRealFileScanner(root)
}

// Separator returns os.PathSeparator.
func (fs *RealFileSystem) Separator() byte {
	return os.PathSeparator
}

// ModTimePrecision returns 0; local mtimes round-trip exactly.
func (fs *RealFileSystem) ModTimePrecision() time.Duration {
	return 0
}

// Stat returns file information.
func (fs *RealFileSystem) Stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return info, nil
}
