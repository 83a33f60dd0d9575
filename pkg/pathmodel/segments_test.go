//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package pathmodel_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	pkgerrors "github.com/joe/quickcopy/pkg/errors"
	"github.com/joe/quickcopy/pkg/pathmodel"
)

func TestDecompose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected pathmodel.Segments
	}{
		{`/Users/jon/Desktop`, pathmodel.Segments{"Users", "jon", "Desktop"}},
		{`C:\Users\jon\Desktop\`, pathmodel.Segments{"C:", "Users", "jon", "Desktop"}},
		{`a//b\\c`, pathmodel.Segments{"a", "b", "c"}},
		{`mixed\sep/path`, pathmodel.Segments{"mixed", "sep", "path"}},
		{`///`, pathmodel.Segments{}},
		{`single`, pathmodel.Segments{"single"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			g.Expect(pathmodel.Decompose(tt.input)).To(Equal(tt.expected))
		})
	}
}

func TestIdentical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"same", "/a/b/c", "/a/b/c", true},
		{"case differs", "/A/b/C", "/a/B/c", true},
		{"separator differs", `C:\data\src`, "C:/data/src", true},
		{"shorter", "/a/b", "/a/b/c", false},
		{"component differs", "/a/b/c", "/a/x/c", false},
		{"both empty", "/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			got := pathmodel.Identical(pathmodel.Decompose(tt.a), pathmodel.Decompose(tt.b))
			g.Expect(got).To(Equal(tt.want))
		})
	}
}

func TestContainsAll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		haystack string
		needle   string
		want     bool
	}{
		{"prefix", "node_modules/pkg/index.js", "node_modules", true},
		{"middle run", "a/build/out/x.o", "build/out", true},
		{"case insensitive", "a/Build/OUT/x.o", "build/out", true},
		{"not contiguous", "a/build/x/out", "build/out", false},
		{"partial then full match", "a/b/a/b/c", "a/b/c", true},
		{"segment is not substring", "Desktop/file", "Desk", false},
		{"needle longer", "a", "a/b", false},
		{"empty needle", "a/b", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			got := pathmodel.ContainsAll(pathmodel.Decompose(tt.haystack), pathmodel.Decompose(tt.needle))
			g.Expect(got).To(Equal(tt.want))
		})
	}
}

func TestRelativeSuffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		full string
		base string
		want pathmodel.Segments
	}{
		{"nested file", "/src/a/b.txt", "/src", pathmodel.Segments{"a", "b.txt"}},
		{"case insensitive base", "/SRC/Dir/x", "/src", pathmodel.Segments{"Dir", "x"}},
		{"identical", "/src", "/src", pathmodel.Segments{}},
		{"full shorter than base", "/src", "/src/deeper", pathmodel.Segments{}},
		{"windows root", `C:\data\src\a`, "C:/data/src", pathmodel.Segments{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			got, err := pathmodel.RelativeSuffix(pathmodel.Decompose(tt.full), pathmodel.Decompose(tt.base))
			g.Expect(err).ShouldNot(HaveOccurred())
			g.Expect(got).To(Equal(tt.want))
		})
	}
}

func TestRelativeSuffix_NotUnderBaseFails(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := pathmodel.RelativeSuffix(pathmodel.Decompose("/other/a.txt"), pathmodel.Decompose("/src"))

	g.Expect(err).Should(HaveOccurred())
	g.Expect(errors.Is(err, pkgerrors.ErrIntegrity)).To(BeTrue())
	g.Expect(errors.Is(err, pathmodel.ErrNotUnderBase)).To(BeTrue())
}

func TestRelativeSuffix_DoesNotAliasInput(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	full := pathmodel.Decompose("/src/a/b")
	suffix, err := pathmodel.RelativeSuffix(full, pathmodel.Decompose("/src"))
	g.Expect(err).ShouldNot(HaveOccurred())

	suffix[0] = "changed"
	g.Expect(full[1]).To(Equal("a"))
}

func TestAppendAndRender(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := "/mnt/backup"
	suffix := pathmodel.Segments{"a", "b.txt"}

	dest := pathmodel.Append(pathmodel.Decompose(root), suffix)
	g.Expect(dest).To(Equal(pathmodel.Segments{"mnt", "backup", "a", "b.txt"}))
	g.Expect(dest.Render(root, '/')).To(Equal("/mnt/backup/a/b.txt"))
	g.Expect(dest.Len()).To(Equal(4))

	win := pathmodel.Append(pathmodel.Decompose(`D:\backup`), suffix)
	g.Expect(win.Render(`D:\backup`, '\\')).To(Equal(`D:\backup\a\b.txt`))

	unc := pathmodel.Append(pathmodel.Decompose(`\\server\share`), suffix)
	g.Expect(unc.Render(`\\server\share`, '\\')).To(Equal(`\\server\share\a\b.txt`))
}

func TestKey(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(pathmodel.Decompose(`Docs\Report.TXT`).Key()).To(Equal("docs/report.txt"))
	g.Expect(pathmodel.Decompose("docs/report.txt").Key()).To(Equal(pathmodel.Decompose(`DOCS\REPORT.txt`).Key()))
	g.Expect(pathmodel.Decompose(`Docs\Report.TXT`).String()).To(Equal("Docs/Report.TXT"))
}
