//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package inventory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/quickcopy/internal/inventory"
	pkgerrors "github.com/joe/quickcopy/pkg/errors"
	"github.com/joe/quickcopy/pkg/filesystem"
)

func keysOf(records []*inventory.FileRecord) []string {
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, r.Key())
	}

	sort.Strings(keys)

	return keys
}

func TestWalk_RecordsEverythingBelowRoot(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mtime := time.Date(2022, 1, 2, 3, 4, 5, 0, time.UTC)
	mfs := filesystem.NewMockFileSystem()
	mfs.AddFile("/data/Docs/Report.PDF", []byte("pdf!"), mtime)
	mfs.AddFile("/data/.bashrc", []byte("x"), mtime)
	mfs.AddFile("/data/Makefile", []byte("all:"), mtime)
	mfs.AddDir("/data/empty", mtime)
	mfs.AddFile("/elsewhere/ignored.txt", nil, mtime)

	var counts []int

	records, err := inventory.Walk(context.Background(), mfs, "/data", inventory.Options{
		OnEntry: func(count int) { counts = append(counts, count) },
	})
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(keysOf(records)).To(Equal([]string{".bashrc", "docs", "docs/report.pdf", "empty", "makefile"}))
	g.Expect(counts).To(Equal([]int{1, 2, 3, 4, 5}))

	byKey := map[string]*inventory.FileRecord{}
	for _, r := range records {
		byKey[r.Key()] = r
	}

	report := byKey["docs/report.pdf"]
	g.Expect(report.IsDir).To(BeFalse())
	g.Expect(report.Size).To(Equal(uint64(4)))
	g.Expect(report.Modified).To(Equal(mtime))
	g.Expect(report.AbsolutePath).To(Equal("/data/Docs/Report.PDF"))
	g.Expect([]string(report.RelativeSegments)).To(Equal([]string{"Docs", "Report.PDF"}))
	g.Expect(report.Depth()).To(Equal(2))
	g.Expect(report.Extension).To(Equal("PDF"))
	g.Expect(report.HasExtension).To(BeTrue())

	g.Expect(byKey[".bashrc"].Extension).To(Equal("bashrc"))
	g.Expect(byKey[".bashrc"].HasExtension).To(BeTrue())
	g.Expect(byKey["makefile"].HasExtension).To(BeFalse())
	g.Expect(byKey["empty"].IsDir).To(BeTrue())
	g.Expect(byKey["empty"].HasExtension).To(BeFalse())
}

func TestWalk_FailuresAreIOErrors(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mfs := filesystem.NewMockFileSystem()
	mfs.AddFile("/data/a/b.txt", nil, time.Now())

	_, err := inventory.Walk(context.Background(), mfs, "/missing", inventory.Options{})
	g.Expect(errors.Is(err, pkgerrors.ErrIO)).To(BeTrue())
	g.Expect(errors.Is(err, filesystem.ErrScan)).To(BeTrue())

	mfs.FailOn("scan", "/data/a/b.txt", os.ErrPermission)
	_, err = inventory.Walk(context.Background(), mfs, "/data", inventory.Options{})
	g.Expect(errors.Is(err, pkgerrors.ErrIO)).To(BeTrue())
	g.Expect(errors.Is(err, os.ErrPermission)).To(BeTrue())
}

func TestWalk_HonorsCancellation(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mfs := filesystem.NewMockFileSystem()
	mfs.AddFile("/data/a.txt", nil, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := inventory.Walk(ctx, mfs, "/data", inventory.Options{})
	g.Expect(errors.Is(err, context.Canceled)).To(BeTrue())
}

func TestWalk_RelativeAndUncleanRoots(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	g.Expect(os.MkdirAll(filepath.Join(root, "src", "sub"), 0o755)).To(Succeed())
	g.Expect(os.WriteFile(filepath.Join(root, "src", "sub", "f.go"), []byte("package f"), 0o644)).To(Succeed())

	unclean := filepath.Join(root, "src") + string(filepath.Separator) + "." + string(filepath.Separator)

	records, err := inventory.Walk(context.Background(), filesystem.NewRealFileSystem(), unclean, inventory.Options{})
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(keysOf(records)).To(Equal([]string{"sub", "sub/f.go"}))
}

func TestWalk_FollowsSymlinks(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	outside := t.TempDir()
	src := filepath.Join(root, "src")

	g.Expect(os.MkdirAll(src, 0o755)).To(Succeed())
	g.Expect(os.WriteFile(filepath.Join(outside, "f.txt"), []byte("linked"), 0o644)).To(Succeed())
	g.Expect(os.WriteFile(filepath.Join(root, "plain.txt"), []byte("twelve bytes"), 0o644)).To(Succeed())

	g.Expect(os.Symlink(outside, filepath.Join(src, "linked"))).To(Succeed())
	g.Expect(os.Symlink(filepath.Join(root, "plain.txt"), filepath.Join(src, "alias.txt"))).To(Succeed())
	g.Expect(os.Symlink(filepath.Join(root, "missing"), filepath.Join(src, "dangling"))).To(Succeed())
	g.Expect(os.Symlink(src, filepath.Join(src, "loop"))).To(Succeed())

	records, err := inventory.Walk(context.Background(), filesystem.NewRealFileSystem(), src, inventory.Options{})
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(keysOf(records)).To(Equal([]string{"alias.txt", "linked", "linked/f.txt"}))

	byKey := map[string]*inventory.FileRecord{}
	for _, r := range records {
		byKey[r.Key()] = r
	}

	g.Expect(byKey["linked"].IsDir).To(BeTrue())
	g.Expect(byKey["linked/f.txt"].Size).To(Equal(uint64(6)))
	g.Expect(byKey["linked/f.txt"].AbsolutePath).To(Equal(filepath.Join(src, "linked", "f.txt")))
	g.Expect(byKey["alias.txt"].IsDir).To(BeFalse())
	g.Expect(byKey["alias.txt"].Size).To(Equal(uint64(12)))
}

func TestExtensionOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    string
		present bool
	}{
		{"a.txt", "txt", true},
		{"archive.tar.gz", "gz", true},
		{".bashrc", "bashrc", true},
		{".bashrc.bak", "bashrcbak", true},
		{"README", "", false},
		{"trailing.", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			ext, ok := inventory.ExtensionOf(tt.name)
			g.Expect(ext).To(Equal(tt.want))
			g.Expect(ok).To(Equal(tt.present))
		})
	}
}

func TestCleanRoot(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(inventory.CleanRoot("/srv/data/", '/')).To(Equal("/srv/data"))
	g.Expect(inventory.CleanRoot("./a/../b", '/')).To(Equal("b"))
	g.Expect(inventory.CleanRoot("", '/')).To(Equal("."))
	g.Expect(inventory.RootSegments(".")).To(BeEmpty())
	g.Expect([]string(inventory.RootSegments("/srv/data"))).To(Equal([]string{"srv", "data"}))
}
