package detector

import (
	"strings"

	"github.com/joe/quickcopy/internal/inventory"
	"github.com/joe/quickcopy/pkg/pathmodel"
)

// PathFilter decides whether a relative path ("a/b.txt") takes part in a
// sync.
type PathFilter interface {
	ShouldInclude(relativePath string) bool
}

// Filters narrows what a detection reports.
type Filters struct {
	// Extensions is an allow-list for files on both sides, compared
	// case-insensitively with or without a leading dot. Empty allows all.
	Extensions []string
	// SkipFolders drop creates and updates whose relative path contains the
	// folder's segments as a contiguous run. Deletes are never dropped.
	SkipFolders []string
	// Include, if set, drops creates and updates of files it rejects.
	Include PathFilter
	// Ignore, if set, drops creates and updates of entries it rejects.
	Ignore PathFilter
}

type compiledFilters struct {
	extensions  map[string]struct{}
	skipFolders []pathmodel.Segments
	include     PathFilter
	ignore      PathFilter
}

func compileFilters(filters Filters) compiledFilters {
	compiled := compiledFilters{include: filters.Include, ignore: filters.Ignore}

	for _, ext := range filters.Extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}

		if compiled.extensions == nil {
			compiled.extensions = make(map[string]struct{})
		}

		compiled.extensions[ext] = struct{}{}
	}

	for _, folder := range filters.SkipFolders {
		segs := pathmodel.Decompose(folder)
		if segs.Len() > 0 {
			compiled.skipFolders = append(compiled.skipFolders, segs)
		}
	}

	return compiled
}

// allowsExtension applies the extension allow-list. Directories always
// pass.
func (f compiledFilters) allowsExtension(record *inventory.FileRecord) bool {
	if record.IsDir || len(f.extensions) == 0 {
		return true
	}

	if !record.HasExtension {
		return false
	}

	_, ok := f.extensions[strings.ToLower(record.Extension)]

	return ok
}

// dropReason returns why a create or update should be dropped, or "" to
// keep it.
func (f compiledFilters) dropReason(record *inventory.FileRecord) string {
	for _, folder := range f.skipFolders {
		if pathmodel.ContainsAll(record.RelativeSegments, folder) {
			return "skip folder " + folder.String()
		}
	}

	rel := record.RelativeSegments.String()

	if f.ignore != nil && !f.ignore.ShouldInclude(rel) {
		return "ignore file"
	}

	if f.include != nil && !record.IsDir && !f.include.ShouldInclude(rel) {
		return "include pattern"
	}

	return ""
}
