package filesystem

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// mockFileScanner snapshots the entries under root on the first call to
// Next and yields them in path order.
type mockFileScanner struct {
	fs      *MockFileSystem
	root    string
	files   []FileInfo
	index   int
	err     error
	scanned bool
}

func newMockFileScanner(m *MockFileSystem, root string) *mockFileScanner {
	return &mockFileScanner{fs: m, root: root, index: -1}
}

// Err returns any error that occurred during scanning.
func (s *mockFileScanner) Err() error {
	return s.err
}

// Next advances to the next entry.
func (s *mockFileScanner) Next() (FileInfo, bool) {
	if !s.scanned {
		s.scan()
		s.scanned = true
	}

	if s.err != nil {
		return FileInfo{}, false
	}

	s.index++
	if s.index >= len(s.files) {
		return FileInfo{}, false
	}

	return s.files[s.index], true
}

func (s *mockFileScanner) scan() {
	s.fs.mu.RLock()
	defer s.fs.mu.RUnlock()

	if err := s.fs.checkLocked("scan", s.root); err != nil {
		s.err = fmt.Errorf("%w: %w", ErrScan, err)
		return
	}

	rootFile, ok := s.fs.files[s.root]
	if !ok || !rootFile.isDir {
		s.err = fmt.Errorf("%w: %w", ErrScan, &fs.PathError{Op: "scan", Path: s.root, Err: fs.ErrNotExist})
		return
	}

	for p, file := range s.fs.files {
		if !isUnder(p, s.root) {
			continue
		}

		if err, failed := s.fs.failures["scan "+p]; failed {
			s.err = fmt.Errorf("%w: %w", ErrScan, &fs.PathError{Op: "scan", Path: p, Err: err})
			return
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(p, s.root), "/")
		s.files = append(s.files, infoFrom(p, rel, statOf(p, file)))
	}

	sort.Slice(s.files, func(i, j int) bool {
		return s.files[i].Path < s.files[j].Path
	})
}
