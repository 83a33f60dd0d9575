// Package fileops provides the file-level operations of a sync: content
// hashing, whole-file copy, mkdir and remove, all through the filesystem
// abstraction so source and target may live on different filesystems.
package fileops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/joe/quickcopy/pkg/filesystem"
)

// Exported constants.
const (
	// BufferSize is the copy buffer and the hash chunk size (32KB).
	BufferSize = 32 * 1024
	// DefaultDirPermissions is the permission mode for created directories.
	DefaultDirPermissions = 0o750
)

// ErrCopyCancelled is returned when the context ends mid-copy.
var ErrCopyCancelled = errors.New("copy cancelled")

// CopyStats contains timing information about a copy operation.
type CopyStats struct {
	BytesCopied int64
	ReadTime    time.Duration
	WriteTime   time.Duration
}

// ProgressCallback reports bytes copied so far for the file at path.
type ProgressCallback func(bytesTransferred int64, totalBytes int64, path string)

// FileOps runs file operations against a source and a destination
// filesystem.
type FileOps struct {
	Source filesystem.FileSystem
	Dest   filesystem.FileSystem
}

// New returns FileOps reading from source and writing to dest.
func New(source, dest filesystem.FileSystem) *FileOps {
	return &FileOps{Source: source, Dest: dest}
}

// ChunkedHash streams the file at path in BufferSize chunks and returns the
// concatenated hex xxhash64 digest of every chunk. Two files hash equal
// only if every chunk matches, so the result is compared as an opaque
// string. An empty file hashes to "".
func ChunkedHash(ctx context.Context, fsys filesystem.FileSystem, path string) (string, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}

	defer func() {
		_ = file.Close()
	}()

	var digests strings.Builder

	buf := make([]byte, BufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("hashing %s: %w", path, err)
		}

		n, err := io.ReadFull(file, buf)
		if n > 0 {
			fmt.Fprintf(&digests, "%016x", xxhash.Sum64(buf[:n]))
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("failed to read %s for hashing: %w", path, err)
		}
	}

	return digests.String(), nil
}

// CopyFile copies src on the source filesystem to dst on the destination
// filesystem, replacing dst if it exists. The parent of dst must already
// exist. The source's modification time is applied to dst. A failed or
// cancelled copy removes the partial dst.
//
//nolint:funlen // Open, copy, finalize and cleanup belong together.
func (fo *FileOps) CopyFile(ctx context.Context, src, dst string, progress ProgressCallback) (*CopyStats, error) {
	stats := &CopyStats{}

	sourceFile, err := fo.Source.Open(src)
	if err != nil {
		return stats, fmt.Errorf("failed to open source file %s: %w", src, err)
	}

	defer func() {
		_ = sourceFile.Close()
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return stats, fmt.Errorf("failed to stat source file %s: %w", src, err)
	}

	destFile, err := fo.Dest.Create(dst)
	if err != nil {
		return stats, fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	completed := false
	closed := false

	defer func() {
		if !closed {
			_ = destFile.Close()
		}

		if !completed {
			_ = fo.Dest.Remove(dst)
		}
	}()

	written, err := copyLoop(ctx, sourceFile, destFile, stats, sourceInfo.Size(), src, progress)
	if err != nil {
		return stats, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	stats.BytesCopied = written

	// Close before Chtimes; some network filesystems reset mtime on close.
	closed = true

	err = destFile.Close()
	if err != nil {
		return stats, fmt.Errorf("failed to close destination file %s: %w", dst, err)
	}

	err = fo.Dest.Chtimes(dst, sourceInfo.ModTime(), sourceInfo.ModTime())
	if err != nil {
		return stats, fmt.Errorf("failed to preserve modification time for %s: %w", dst, err)
	}

	completed = true

	return stats, nil
}

// Mkdir creates one directory on the destination filesystem.
func (fo *FileOps) Mkdir(path string) error {
	err := fo.Dest.Mkdir(path, DefaultDirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	return nil
}

// Remove removes a file or empty directory on the destination filesystem.
func (fo *FileOps) Remove(path string) error {
	err := fo.Dest.Remove(path)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}

// EnsureDir creates path as a single directory when it does not exist.
// It reports whether it created anything. An existing non-directory is an
// error.
func EnsureDir(fsys filesystem.FileSystem, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory: %w", path, fs.ErrExist)
		}

		return false, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	err = fsys.Mkdir(path, DefaultDirPermissions)
	if err != nil {
		return false, fmt.Errorf("failed to create root %s: %w", path, err)
	}

	return true, nil
}

// copyLoop copies with progress tracking and read/write timing.
func copyLoop(
	ctx context.Context,
	sourceFile, destFile filesystem.File,
	stats *CopyStats,
	sourceSize int64,
	srcPath string,
	progress ProgressCallback,
) (int64, error) {
	var written int64

	buf := make([]byte, BufferSize)

	for {
		if ctx.Err() != nil {
			return written, fmt.Errorf("%w: %w", ErrCopyCancelled, ctx.Err())
		}

		readStart := time.Now()
		nr, err := sourceFile.Read(buf) //nolint:varnamelen // nr is idiomatic for bytes read
		stats.ReadTime += time.Since(readStart)

		if nr > 0 {
			writeStart := time.Now()
			nw, werr := destFile.Write(buf[:nr]) //nolint:varnamelen // nw is idiomatic for bytes written
			stats.WriteTime += time.Since(writeStart)

			if werr != nil {
				return written, fmt.Errorf("failed to write to destination: %w", werr)
			}

			if nr != nw {
				return written, fmt.Errorf("short write: %w", io.ErrShortWrite)
			}

			written += int64(nw)

			if progress != nil {
				progress(written, sourceSize, srcPath)
			}
		}

		if errors.Is(err, io.EOF) {
			return written, nil
		}

		if err != nil {
			return written, fmt.Errorf("failed to read from source: %w", err)
		}
	}
}
