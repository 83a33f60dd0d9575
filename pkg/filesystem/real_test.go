//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package filesystem_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/quickcopy/pkg/filesystem"
)

func TestRealFileSystem_ScanYieldsEveryEntryOnce(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	g.Expect(os.MkdirAll(filepath.Join(root, "sub", "deeper"), 0o755)).To(Succeed())
	g.Expect(os.WriteFile(filepath.Join(root, "top.txt"), []byte("top"), 0o644)).To(Succeed())
	g.Expect(os.WriteFile(filepath.Join(root, "sub", "deeper", "leaf.txt"), []byte("leaf!"), 0o644)).To(Succeed())

	scanner := filesystem.NewRealFileSystem().Scan(root)

	seen := map[string]filesystem.FileInfo{}

	for {
		info, ok := scanner.Next()
		if !ok {
			break
		}

		g.Expect(seen).ToNot(HaveKey(info.RelativePath))
		seen[info.RelativePath] = info
	}

	g.Expect(scanner.Err()).ShouldNot(HaveOccurred())

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, filepath.ToSlash(k))
	}

	sort.Strings(keys)
	g.Expect(keys).To(Equal([]string{"sub", "sub/deeper", "sub/deeper/leaf.txt", "top.txt"}))

	leaf := seen[filepath.Join("sub", "deeper", "leaf.txt")]
	g.Expect(leaf.Size).To(Equal(int64(5)))
	g.Expect(leaf.IsDir).To(BeFalse())
	g.Expect(leaf.Path).To(Equal(filepath.Join(root, "sub", "deeper", "leaf.txt")))
	g.Expect(seen["sub"].IsDir).To(BeTrue())
}

func TestRealFileSystem_ScanMissingRoot(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	scanner := filesystem.NewRealFileSystem().Scan(filepath.Join(t.TempDir(), "missing"))

	_, ok := scanner.Next()
	g.Expect(ok).To(BeFalse())
	g.Expect(errors.Is(scanner.Err(), filesystem.ErrScan)).To(BeTrue())
	g.Expect(errors.Is(scanner.Err(), os.ErrNotExist)).To(BeTrue())
}

func TestRealFileSystem_MkdirIsNotRecursive(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	rfs := filesystem.NewRealFileSystem()

	err := rfs.Mkdir(filepath.Join(root, "a", "b"), 0o750)
	g.Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())

	g.Expect(rfs.Mkdir(filepath.Join(root, "a"), 0o750)).To(Succeed())
	g.Expect(rfs.Mkdir(filepath.Join(root, "a", "b"), 0o750)).To(Succeed())
}

func TestRealFileSystem_CreateWriteChtimesRemove(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	rfs := filesystem.NewRealFileSystem()
	path := filepath.Join(t.TempDir(), "f.txt")

	file, err := rfs.Create(path)
	g.Expect(err).ShouldNot(HaveOccurred())
	_, err = file.Write([]byte("hello"))
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(file.Close()).To(Succeed())

	mtime := time.Date(2020, 5, 6, 7, 8, 9, 0, time.UTC)
	g.Expect(rfs.Chtimes(path, mtime, mtime)).To(Succeed())

	info, err := rfs.Stat(path)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(info.ModTime().Equal(mtime)).To(BeTrue())

	reader, err := rfs.Open(path)
	g.Expect(err).ShouldNot(HaveOccurred())
	data, err := io.ReadAll(reader)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(reader.Close()).To(Succeed())
	g.Expect(string(data)).To(Equal("hello"))

	g.Expect(rfs.Remove(path)).To(Succeed())
	_, err = rfs.Stat(path)
	g.Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	g.Expect(rfs.Separator()).To(Equal(byte(os.PathSeparator)))
	g.Expect(rfs.ModTimePrecision()).To(BeZero())
}
