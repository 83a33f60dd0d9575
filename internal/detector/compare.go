package detector

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joe/quickcopy/internal/inventory"
	pkgerrors "github.com/joe/quickcopy/pkg/errors"
	"github.com/joe/quickcopy/pkg/fileops"
	"github.com/joe/quickcopy/pkg/filesystem"
)

// Strategies selects the comparisons that flag a file pair as changed.
// Any enabled strategy reporting a difference makes an Update.
type Strategies struct {
	Size     bool
	Modified bool
	Hash     bool
}

// None reports whether no strategy is enabled, in which case no pair is
// ever updated.
func (s Strategies) None() bool {
	return !s.Size && !s.Modified && !s.Hash
}

// differsCheaply applies the metadata strategies. Modification times are
// compared after truncating both to precision.
func (s Strategies) differsCheaply(src, dst *inventory.FileRecord, precision time.Duration) bool {
	if s.Size && src.Size != dst.Size {
		return true
	}

	return s.Modified && !src.Modified.Truncate(precision).Equal(dst.Modified.Truncate(precision))
}

// modTimePrecision is the coarser of the two filesystems' mtime precisions.
func modTimePrecision(srcFS, tgtFS filesystem.FileSystem) time.Duration {
	return max(srcFS.ModTimePrecision(), tgtFS.ModTimePrecision())
}

type pair struct {
	src, dst *inventory.FileRecord
}

// hashDiffers reports, per pair, whether the content hashes differ. Pairs
// are hashed concurrently up to workers at a time; any read failure fails
// the whole comparison.
func hashDiffers(
	ctx context.Context,
	srcFS, tgtFS filesystem.FileSystem,
	pairs []pair,
	workers int,
) ([]bool, error) {
	differs := make([]bool, len(pairs))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(workers, 1))

	for i, p := range pairs {
		group.Go(func() error {
			srcHash, err := fileops.ChunkedHash(ctx, srcFS, p.src.AbsolutePath)
			if err != nil {
				return pkgerrors.IO("hash", p.src.AbsolutePath, err)
			}

			dstHash, err := fileops.ChunkedHash(ctx, tgtFS, p.dst.AbsolutePath)
			if err != nil {
				return pkgerrors.IO("hash", p.dst.AbsolutePath, err)
			}

			differs[i] = srcHash != dstHash

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // Already an IoError naming the file
	}

	return differs, nil
}
