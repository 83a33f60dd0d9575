//nolint:varnamelen // Test files use idiomatic short variable names (t, etc.)
package filesystem_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/quickcopy/pkg/filesystem"
)

func TestParsePath_Local(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	loc, err := filesystem.ParsePath(`C:\data\src`)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(loc.IsRemote).To(BeFalse())
	g.Expect(loc.Path).To(Equal(`C:\data\src`))
	g.Expect(loc.String()).To(Equal(`C:\data\src`))
}

func TestParsePath_SFTP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantUser string
		wantHost string
		wantPort int
		wantPath string
	}{
		{"relative to home", "sftp://user@host/path", "user", "host", 22, "path"},
		{"custom port", "sftp://admin@server.com:2222/home/data", "admin", "server.com", 2222, "home/data"},
		{"absolute", "sftp://joe@host//srv/backup", "joe", "host", 22, "/srv/backup"},
		{"home directory", "sftp://joe@host", "joe", "host", 22, "."},
		{"trailing slash only", "sftp://joe@host/", "joe", "host", 22, "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			loc, err := filesystem.ParsePath(tt.input)
			g.Expect(err).ShouldNot(HaveOccurred())
			g.Expect(loc.IsRemote).To(BeTrue())
			g.Expect(loc.User).To(Equal(tt.wantUser))
			g.Expect(loc.Host).To(Equal(tt.wantHost))
			g.Expect(loc.Port).To(Equal(tt.wantPort))
			g.Expect(loc.Path).To(Equal(tt.wantPath))
		})
	}
}

func TestParsePath_SFTPErrors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"sftp://host/path",
		"sftp://user@:22/path",
		"sftp://user@host:99999/path",
		"sftp://user@host:abc/path",
	} {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			_, err := filesystem.ParsePath(input)
			g.Expect(err).Should(HaveOccurred())
			g.Expect(errors.Is(err, filesystem.ErrInvalidSFTPURL)).To(BeTrue())
		})
	}
}

func TestLocation_StringRoundTrips(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	for _, raw := range []string{"sftp://joe@host:2222/data", "sftp://joe@host:22//srv/data", "sftp://joe@host:22"} {
		loc, err := filesystem.ParsePath(raw)
		g.Expect(err).ShouldNot(HaveOccurred())

		again, err := filesystem.ParsePath(loc.String())
		g.Expect(err).ShouldNot(HaveOccurred())
		g.Expect(again).To(Equal(loc))
	}
}
