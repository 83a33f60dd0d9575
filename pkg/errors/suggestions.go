package errors

import "fmt"

// SuggestionGenerator produces suggestions for a category.
type SuggestionGenerator interface {
	Generate(category ErrorCategory, affectedPath string) []string
}

// NewSuggestionGenerator returns the default generator.
func NewSuggestionGenerator() SuggestionGenerator {
	return suggestionGenerator{}
}

type suggestionGenerator struct{}

// Generate returns suggestions for category, mentioning affectedPath when
// it is known.
//
//nolint:cyclop // One branch per category.
func (g suggestionGenerator) Generate(category ErrorCategory, affectedPath string) []string {
	var out []string

	switch category {
	case CategoryPermission:
		out = []string{"Ensure the sync user can read the source and write the target"}
		out = append(out, withPath(affectedPath, "Check permissions with 'ls -la %s'", "Check permissions on the affected path")...)
	case CategoryDiskSpace:
		out = []string{
			"Free up space on the target device",
			"Check available space with 'df -h'",
		}
	case CategoryDelete:
		out = []string{
			"A directory still has entries that were not part of this sync",
			"Re-run the sync; deletes run deepest first and converge",
		}
		out = append(out, withPath(affectedPath, "List remaining entries with 'ls -la %s'", "")...)
	case CategoryExists:
		out = []string{
			"Another process created the entry during the sync",
			"Re-run the sync to pick up the current state",
		}
	case CategoryPath:
		out = []string{"Verify the root paths are spelled correctly"}
		out = append(out, withPath(affectedPath, "Check that the parent of %s exists", "")...)
		out = append(out, "Files removed while the sync was running are picked up on the next cycle")
	case CategoryConnection:
		out = []string{
			"Check that the SFTP host is reachable and the SSH agent or key files are available",
			"Verify the host key is present in ~/.ssh/known_hosts",
		}
	case CategoryCopy:
		out = []string{
			"Verify the source and target media are working",
			"Retry; this may be a transient I/O error",
		}
	case CategoryUnknown:
		fallthrough
	default:
		out = []string{"Check the error message for details"}
		out = append(out, withPath(affectedPath, "Verify the path is accessible: %s", "")...)
	}

	return out
}

func withPath(path, format, fallback string) []string {
	if path != "" {
		return []string{fmt.Sprintf(format, path)}
	}

	if fallback != "" {
		return []string{fallback}
	}

	return nil
}
