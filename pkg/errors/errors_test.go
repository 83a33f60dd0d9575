//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package errors_test

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	pkgerrors "github.com/joe/quickcopy/pkg/errors"
)

func TestOpError_IsMatchesKindAndCause(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	err := pkgerrors.IO("remove", "/dst/a", fs.ErrPermission)
	wrapped := fmt.Errorf("executing delete: %w", err)

	g.Expect(errors.Is(wrapped, pkgerrors.ErrIO)).To(BeTrue())
	g.Expect(errors.Is(wrapped, fs.ErrPermission)).To(BeTrue())
	g.Expect(errors.Is(wrapped, pkgerrors.ErrConfiguration)).To(BeFalse())
	g.Expect(err.Error()).To(Equal("io error: remove /dst/a: permission denied"))
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"io", pkgerrors.IO("copy", "/x", errors.New("boom")), pkgerrors.ErrIO},
		{"configuration", pkgerrors.NewOpError(pkgerrors.ErrConfiguration, "pair", "", errors.New("same")), pkgerrors.ErrConfiguration},
		{"integrity", fmt.Errorf("wrap: %w", pkgerrors.NewOpError(pkgerrors.ErrIntegrity, "pair", "", errors.New("keys"))), pkgerrors.ErrIntegrity},
		{"plain", errors.New("plain"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			g.Expect(pkgerrors.KindOf(tt.err)).To(Equal(tt.want))
		})
	}
}

func TestPatternMatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want pkgerrors.ErrorCategory
	}{
		{"permission sentinel", &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}, pkgerrors.CategoryPermission},
		{"exists sentinel", fs.ErrExist, pkgerrors.CategoryExists},
		{"missing sentinel", fmt.Errorf("stat: %w", fs.ErrNotExist), pkgerrors.CategoryPath},
		{"disk full", errors.New("write /x: no space left on device"), pkgerrors.CategoryDiskSpace},
		{"not empty", errors.New("remove /x: directory not empty"), pkgerrors.CategoryDelete},
		{"ssh", errors.New("ssh: handshake failed: EOF"), pkgerrors.CategoryConnection},
		{"short write", errors.New("short write"), pkgerrors.CategoryCopy},
		{"unknown", errors.New("something odd"), pkgerrors.CategoryUnknown},
		{"nil", nil, pkgerrors.CategoryUnknown},
	}

	matcher := pkgerrors.NewPatternMatcher()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			g.Expect(matcher.Match(tt.err)).To(Equal(tt.want))
		})
	}
}

func TestSuggestionGenerator_MentionsPath(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gen := pkgerrors.NewSuggestionGenerator()

	g.Expect(gen.Generate(pkgerrors.CategoryPermission, "/dst/a")).To(ContainElement(ContainSubstring("/dst/a")))
	g.Expect(gen.Generate(pkgerrors.CategoryPermission, "")).ToNot(ContainElement(ContainSubstring("%s")))
	g.Expect(gen.Generate(pkgerrors.CategoryUnknown, "")).ToNot(BeEmpty())
	g.Expect(gen.Generate(pkgerrors.ErrorCategory("bogus"), "/p")).To(ContainElement(ContainSubstring("/p")))
}

func TestEnricher_UsesOpErrorPath(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cause := pkgerrors.IO("remove", "/dst/dir", errors.New("directory not empty"))
	enriched := pkgerrors.NewEnricher().Enrich(cause, "")

	var actionable pkgerrors.ActionableError
	g.Expect(errors.As(enriched, &actionable)).To(BeTrue())
	g.Expect(actionable.Category()).To(Equal(pkgerrors.CategoryDelete))
	g.Expect(actionable.AffectedPath()).To(Equal("/dst/dir"))
	g.Expect(errors.Is(enriched, pkgerrors.ErrIO)).To(BeTrue())
	g.Expect(enriched.Error()).To(Equal(cause.Error()))
}

func TestEnricher_ExtractsPathFromMessage(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	enriched := pkgerrors.NewEnricher().Enrich(errors.New("open /home/u/file.txt: permission denied"), "")

	var actionable pkgerrors.ActionableError
	g.Expect(errors.As(enriched, &actionable)).To(BeTrue())
	g.Expect(actionable.AffectedPath()).To(Equal("/home/u/file.txt"))
	g.Expect(actionable.Category()).To(Equal(pkgerrors.CategoryPermission))
}

func TestEnricher_LeavesActionableAndNilAlone(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	enricher := pkgerrors.NewEnricher()
	original := pkgerrors.NewActionableError(errors.New("x"), pkgerrors.CategoryCopy, []string{"retry"}, "/p")

	g.Expect(enricher.Enrich(original, "/other")).To(BeIdenticalTo(original))
	g.Expect(enricher.Enrich(nil, "")).To(BeNil())
}

func TestFormatSuggestions(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	err := pkgerrors.NewActionableError(errors.New("x"), pkgerrors.CategoryCopy, []string{"one", "two"}, "")

	g.Expect(pkgerrors.FormatSuggestions(err)).To(Equal("  • one\n  • two"))
	g.Expect(pkgerrors.FormatSuggestions(fmt.Errorf("wrapped: %w", err))).To(Equal("  • one\n  • two"))
	g.Expect(pkgerrors.FormatSuggestions(errors.New("plain"))).To(BeEmpty())
	g.Expect(pkgerrors.FormatSuggestions(nil)).To(BeEmpty())
}
