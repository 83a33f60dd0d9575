//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package formatters_test

import (
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/quickcopy/pkg/formatters"
)

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{-2048, "-2.0 KiB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			g.Expect(formatters.FormatBytes(tt.bytes)).To(Equal(tt.want))
		})
	}
}

func TestFormatRate(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(formatters.FormatRate(0)).To(Equal("0 B/s"))
	g.Expect(formatters.FormatRate(2048)).To(Equal("2.0 KiB/s"))
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(formatters.FormatDuration(4 * time.Second)).To(Equal("4s"))
	g.Expect(formatters.FormatDuration(3*time.Minute + 4*time.Second)).To(Equal("3m 4s"))
	g.Expect(formatters.FormatDuration(2*time.Hour + 3*time.Minute + 4400*time.Millisecond)).To(Equal("2h 3m 4s"))
}

func TestProgress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		done, total int
		want        string
	}{
		{0, 0, "0 / 0 (100%)"},
		{1, 4, "1 / 4 (25%)"},
		{2, 3, "2 / 3 (66%)"},
		{1500, 3000, "1,500 / 3,000 (50%)"},
		{7, 7, "7 / 7 (100%)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			g.Expect(formatters.Progress(tt.done, tt.total)).To(Equal(tt.want))
		})
	}
}
