// Package inventory walks a root into immutable file records.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	pkgerrors "github.com/joe/quickcopy/pkg/errors"
	"github.com/joe/quickcopy/pkg/filesystem"
	"github.com/joe/quickcopy/pkg/pathmodel"
)

// FileRecord is one directory or file found under a walked root. Records
// are built once per walk and never modified.
type FileRecord struct {
	IsDir            bool
	Size             uint64
	Modified         time.Time
	RelativeSegments pathmodel.Segments
	AbsolutePath     string
	Extension        string
	HasExtension     bool
}

// Key is the record's join key.
func (r *FileRecord) Key() string {
	return r.RelativeSegments.Key()
}

// Depth is the number of segments below the root.
func (r *FileRecord) Depth() int {
	return r.RelativeSegments.Len()
}

// Options tunes a walk.
type Options struct {
	Logger *slog.Logger
	// OnEntry, if set, is called after every record with the running count.
	OnEntry func(count int)
}

// Walk produces one record per directory and file under root, excluding
// root itself. Order is not significant. Any unreadable entry fails the
// whole walk with an ErrIO.
func Walk(ctx context.Context, fsys filesystem.FileSystem, root string, opts Options) ([]*FileRecord, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	root = CleanRoot(root, fsys.Separator())
	base := RootSegments(root)

	var records []*FileRecord

	scanner := fsys.Scan(root)

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("walk of %s stopped: %w", root, err)
		}

		info, ok := scanner.Next()
		if !ok {
			break
		}

		rel, err := pathmodel.RelativeSuffix(pathmodel.Decompose(info.Path), base)
		if err != nil {
			return nil, err //nolint:wrapcheck // Already an IntegrityError naming the path
		}

		records = append(records, newRecord(info, rel))

		if opts.OnEntry != nil {
			opts.OnEntry(len(records))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, pkgerrors.IO("walk", root, err)
	}

	logger.Debug("walk complete", "root", root, "entries", len(records))

	return records, nil
}

// CleanRoot lexically cleans root with the rules of a filesystem whose
// separator is sep, so walked paths always extend it.
func CleanRoot(root string, sep byte) string {
	if sep == '/' {
		return path.Clean(strings.ReplaceAll(root, `\`, "/"))
	}

	return filepath.Clean(root)
}

// RootSegments decomposes a cleaned root. The current directory "." has no
// segments, since walked paths under it do not repeat it.
func RootSegments(root string) pathmodel.Segments {
	if root == "." {
		return pathmodel.Segments{}
	}

	return pathmodel.Decompose(root)
}

// ExtensionOf returns the text after the last dot of name. A dotfile's
// extension is its whole name with every dot removed, so ".bashrc.bak" has
// the extension "bashrcbak". A name with no dot has none.
func ExtensionOf(name string) (string, bool) {
	if strings.HasPrefix(name, ".") {
		return strings.ReplaceAll(name, ".", ""), true
	}

	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return "", false
	}

	return name[idx+1:], true
}

func newRecord(info filesystem.FileInfo, rel pathmodel.Segments) *FileRecord {
	record := &FileRecord{
		IsDir:            info.IsDir,
		Modified:         info.ModTime,
		RelativeSegments: rel,
		AbsolutePath:     info.Path,
	}

	if info.Size > 0 {
		record.Size = uint64(info.Size)
	}

	if !info.IsDir {
		record.Extension, record.HasExtension = ExtensionOf(info.Name)
	}

	return record
}
