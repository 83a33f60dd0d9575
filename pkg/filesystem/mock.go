package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockFileSystem is an in-memory FileSystem for tests. Paths use "/" and
// are cleaned before use. Unlike the real disk it never creates parents
// implicitly, so Create and Mkdir fail when the parent is missing.
type MockFileSystem struct {
	mu       sync.RWMutex
	files    map[string]*mockFile
	failures map[string]error
	ops      []string
}

type mockFile struct {
	data    []byte
	modTime time.Time
	isDir   bool
	perm    os.FileMode
}

type mockFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
	perm    os.FileMode
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.isDir }
func (fi *mockFileInfo) Sys() any           { return nil }

func (fi *mockFileInfo) Mode() os.FileMode {
	if fi.isDir {
		return fi.perm | os.ModeDir
	}

	return fi.perm
}

type mockFileHandle struct {
	fs     *MockFileSystem
	path   string
	reader *bytes.Reader
	writer *bytes.Buffer
	closed bool
}

func (f *mockFileHandle) Read(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}

	if f.reader == nil {
		return 0, io.EOF
	}

	return f.reader.Read(p)
}

func (f *mockFileHandle) Write(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}

	if f.writer == nil {
		return 0, fmt.Errorf("write %s: file opened read-only", f.path)
	}

	return f.writer.Write(p)
}

// Close flushes written data into the filesystem.
func (f *mockFileHandle) Close() error {
	if f.closed {
		return os.ErrClosed
	}

	f.closed = true

	if f.writer == nil {
		return nil
	}

	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	if file, ok := f.fs.files[f.path]; ok {
		file.data = append([]byte(nil), f.writer.Bytes()...)
	}

	return nil
}

func (f *mockFileHandle) Stat() (os.FileInfo, error) {
	if f.closed {
		return nil, os.ErrClosed
	}

	return f.fs.Stat(f.path)
}

// NewMockFileSystem creates an empty in-memory filesystem containing only "/".
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: map[string]*mockFile{
			"/": {isDir: true, perm: 0o755, modTime: time.Unix(0, 0)},
		},
		failures: make(map[string]error),
	}
}

// Chtimes changes the modification time of an entry.
func (m *MockFileSystem) Chtimes(name string, _, mtime time.Time) error {
	name = path.Clean(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkLocked("chtimes", name); err != nil {
		return err
	}

	file, ok := m.files[name]
	if !ok {
		return &fs.PathError{Op: "chtimes", Path: name, Err: fs.ErrNotExist}
	}

	file.modTime = mtime

	return nil
}

// Create creates or truncates a file. The parent directory must exist.
func (m *MockFileSystem) Create(name string) (File, error) {
	name = path.Clean(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkLocked("create", name); err != nil {
		return nil, err
	}

	if err := m.requireParentLocked("create", name); err != nil {
		return nil, err
	}

	if existing, ok := m.files[name]; ok && existing.isDir {
		return nil, &fs.PathError{Op: "create", Path: name, Err: fmt.Errorf("is a directory")}
	}

	m.files[name] = &mockFile{modTime: time.Now(), perm: 0o644}

	return &mockFileHandle{fs: m, path: name, writer: &bytes.Buffer{}}, nil
}

// Mkdir creates one directory. It fails if the entry exists or the parent
// is missing.
func (m *MockFileSystem) Mkdir(name string, perm os.FileMode) error {
	name = path.Clean(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkLocked("mkdir", name); err != nil {
		return err
	}

	if _, ok := m.files[name]; ok {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}

	if err := m.requireParentLocked("mkdir", name); err != nil {
		return err
	}

	m.files[name] = &mockFile{isDir: true, perm: perm, modTime: time.Now()}

	return nil
}

// MkdirAll creates a directory and all necessary parents.
func (m *MockFileSystem) MkdirAll(name string, perm os.FileMode) error {
	name = path.Clean(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkLocked("mkdir", name); err != nil {
		return err
	}

	m.mkdirAllLocked(name, perm, time.Now())

	return nil
}

// Open opens a file for reading.
func (m *MockFileSystem) Open(name string) (File, error) {
	name = path.Clean(name)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkLocked("open", name); err != nil {
		return nil, err
	}

	file, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	if file.isDir {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fmt.Errorf("is a directory")}
	}

	return &mockFileHandle{fs: m, path: name, reader: bytes.NewReader(file.data)}, nil
}

// Remove removes a file or an empty directory.
func (m *MockFileSystem) Remove(name string) error {
	name = path.Clean(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkLocked("remove", name); err != nil {
		return err
	}

	file, ok := m.files[name]
	if !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}

	if file.isDir {
		for p := range m.files {
			if isUnder(p, name) {
				return &fs.PathError{Op: "remove", Path: name, Err: fmt.Errorf("directory not empty")}
			}
		}
	}

	delete(m.files, name)

	return nil
}

// Scan returns an iterator over every entry beneath root, sorted by path.
func (m *MockFileSystem) Scan(root string) FileScanner {
	return newMockFileScanner(m, path.Clean(root))
}

// Separator returns '/'.
func (m *MockFileSystem) Separator() byte {
	return '/'
}

// ModTimePrecision returns 0.
func (m *MockFileSystem) ModTimePrecision() time.Duration {
	return 0
}

// Stat returns information about an entry.
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	name = path.Clean(name)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkLocked("stat", name); err != nil {
		return nil, err
	}

	file, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}

	return statOf(name, file), nil
}

// Helper methods for testing

// AddFile adds a file, creating any missing parents.
func (m *MockFileSystem) AddFile(name string, content []byte, modTime time.Time) {
	name = path.Clean(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.mkdirAllLocked(path.Dir(name), 0o755, modTime)
	m.files[name] = &mockFile{data: append([]byte(nil), content...), modTime: modTime, perm: 0o644}
}

// AddDir adds a directory, creating any missing parents.
func (m *MockFileSystem) AddDir(name string, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mkdirAllLocked(path.Clean(name), 0o755, modTime)
}

// FailOn makes the next and every later op on name return err. op is one
// of open, create, mkdir, remove, chtimes, stat or scan; "*" matches all.
func (m *MockFileSystem) FailOn(op, name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failures[op+" "+path.Clean(name)] = err
}

// GetFile returns a file's content and modification time.
func (m *MockFileSystem) GetFile(name string) ([]byte, time.Time, error) {
	name = path.Clean(name)

	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[name]
	if !ok {
		return nil, time.Time{}, &fs.PathError{Op: "get", Path: name, Err: fs.ErrNotExist}
	}

	if file.isDir {
		return nil, time.Time{}, &fs.PathError{Op: "get", Path: name, Err: fmt.Errorf("is a directory")}
	}

	return append([]byte(nil), file.data...), file.modTime, nil
}

// Exists reports whether an entry exists.
func (m *MockFileSystem) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.files[path.Clean(name)]

	return ok
}

// IsDir reports whether name exists and is a directory.
func (m *MockFileSystem) IsDir(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[path.Clean(name)]

	return ok && file.isDir
}

// ListFiles returns every path in the filesystem except "/", sorted.
func (m *MockFileSystem) ListFiles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		if p != "/" {
			paths = append(paths, p)
		}
	}

	sort.Strings(paths)

	return paths
}

// Ops returns the mutating operations performed so far, in order, as
// "op path" strings.
func (m *MockFileSystem) Ops() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.ops...)
}

// checkLocked records mutating ops and returns any injected failure.
func (m *MockFileSystem) checkLocked(op, name string) error {
	if err, ok := m.failures[op+" "+name]; ok {
		return &fs.PathError{Op: op, Path: name, Err: err}
	}

	if err, ok := m.failures["* "+name]; ok {
		return &fs.PathError{Op: op, Path: name, Err: err}
	}

	switch op {
	case "create", "mkdir", "remove":
		m.ops = append(m.ops, op+" "+name)
	}

	return nil
}

func (m *MockFileSystem) mkdirAllLocked(name string, perm os.FileMode, modTime time.Time) {
	if _, ok := m.files[name]; ok {
		return
	}

	if parent := path.Dir(name); parent != name {
		m.mkdirAllLocked(parent, perm, modTime)
	}

	m.files[name] = &mockFile{isDir: true, perm: perm, modTime: modTime}
}

func (m *MockFileSystem) requireParentLocked(op, name string) error {
	parent, ok := m.files[path.Dir(name)]
	if !ok || !parent.isDir {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}

	return nil
}

func statOf(name string, file *mockFile) *mockFileInfo {
	return &mockFileInfo{
		name:    path.Base(name),
		size:    int64(len(file.data)),
		modTime: file.modTime,
		isDir:   file.isDir,
		perm:    file.perm,
	}
}

func isUnder(p, dir string) bool {
	if dir == "/" {
		return p != "/"
	}

	return strings.HasPrefix(p, dir+"/")
}
