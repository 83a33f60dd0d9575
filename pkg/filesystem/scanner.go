package filesystem

import (
	"errors"
	"fmt"
	"os"
	"time"

	krfs "github.com/kr/fs"
)

// FileScanner is an iterator over the entries of a directory tree.
type FileScanner interface {
	// Next advances to the next entry. It returns false at the end of the
	// walk or on error; check Err afterwards to tell them apart.
	Next() (FileInfo, bool)

	// Err returns the error that stopped the walk, if any.
	Err() error
}

// FileInfo describes one entry yielded by a FileScanner.
type FileInfo struct {
	// Path is the entry's full path on its filesystem.
	Path string

	// RelativePath is Path relative to the scan root.
	RelativePath string

	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// ErrScan is wrapped by every scanner failure.
var ErrScan = errors.New("scan failed")

// walkerScanner streams entries from a kr/fs walker. Both the local and
// the SFTP filesystem walk through it.
type walkerScanner struct {
	root     string
	walker   *krfs.Walker
	relative func(root, path string) (string, error)
	onDone   func()
	err      error
	done     bool
}

func newWalkerScanner(
	root string,
	walker *krfs.Walker,
	relative func(root, path string) (string, error),
	onDone func(),
) *walkerScanner {
	return &walkerScanner{root: root, walker: walker, relative: relative, onDone: onDone}
}

// Err returns any error that occurred during scanning.
func (s *walkerScanner) Err() error {
	return s.err
}

// Next advances to the next entry.
func (s *walkerScanner) Next() (FileInfo, bool) {
	if s.done {
		return FileInfo{}, false
	}

	for s.walker.Step() {
		if err := s.walker.Err(); err != nil {
			return s.fail(fmt.Errorf("%w: %s: %w", ErrScan, s.walker.Path(), err))
		}

		path := s.walker.Path()
		stat := s.walker.Stat()

		rel, err := s.relative(s.root, path)
		if err != nil {
			return s.fail(fmt.Errorf("%w: %w", ErrScan, err))
		}

		if rel == "." {
			continue
		}

		return infoFrom(path, rel, stat), true
	}

	s.finish()

	return FileInfo{}, false
}

func (s *walkerScanner) fail(err error) (FileInfo, bool) {
	s.err = err
	s.finish()

	return FileInfo{}, false
}

func (s *walkerScanner) finish() {
	if s.done {
		return
	}

	s.done = true

	if s.onDone != nil {
		s.onDone()
	}
}

// errScanner is a scanner that fails immediately.
type errScanner struct {
	err error
}

func (s errScanner) Err() error             { return s.err }
func (s errScanner) Next() (FileInfo, bool) { return FileInfo{}, false }

func infoFrom(path, rel string, stat os.FileInfo) FileInfo {
	return FileInfo{
		Path:         path,
		RelativePath: rel,
		Name:         stat.Name(),
		Size:         stat.Size(),
		ModTime:      stat.ModTime(),
		IsDir:        stat.IsDir(),
	}
}
