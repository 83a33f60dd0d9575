// Package detector classifies the entries of a source and a target tree
// into creates, updates and deletes.
package detector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/joe/quickcopy/internal/inventory"
	pkgerrors "github.com/joe/quickcopy/pkg/errors"
	"github.com/joe/quickcopy/pkg/fileops"
	"github.com/joe/quickcopy/pkg/filesystem"
	"github.com/joe/quickcopy/pkg/pathmodel"
)

// Sentinel errors.
var (
	// ErrSameRoot is wrapped when source and target are the same tree.
	ErrSameRoot = errors.New("source and target are the same directory")
	// ErrKeyMismatch is wrapped when an update pairs different paths.
	ErrKeyMismatch = errors.New("paired records have different keys")
)

// Side names one half of a detection.
type Side string

// Sides.
const (
	SourceSide Side = "source"
	TargetSide Side = "target"
)

// Options tunes a Detector.
type Options struct {
	// Workers > 1 walks both sides and hashes pairs concurrently.
	Workers int
	Logger  *slog.Logger
	// OnScan, if set, is told when a walk starts (count < 0) and ends.
	OnScan func(side Side, root string, count int)
}

// Detector runs three-way merges with a fixed strategy and filter set.
type Detector struct {
	strategies Strategies
	filters    compiledFilters
	workers    int
	logger     *slog.Logger
	onScan     func(side Side, root string, count int)
}

// New returns a Detector. Enabling no strategy is allowed but means no
// file is ever updated, which is logged once here.
func New(strategies Strategies, filters Filters, opts Options) *Detector {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if strategies.None() {
		logger.Warn("no comparison strategy enabled; existing files will never be updated")
	}

	return &Detector{
		strategies: strategies,
		filters:    compileFilters(filters),
		workers:    max(opts.Workers, 1),
		logger:     logger,
		onScan:     opts.OnScan,
	}
}

// Source is a walked source tree that can be shared across targets.
type Source struct {
	FS      filesystem.FileSystem
	Root    string
	Records []*inventory.FileRecord
}

// ScanSource ensures the source root exists and walks it.
func (d *Detector) ScanSource(ctx context.Context, srcFS filesystem.FileSystem, sourceRoot string) (*Source, error) {
	root := inventory.CleanRoot(sourceRoot, srcFS.Separator())

	if err := d.ensureRoot(srcFS, root); err != nil {
		return nil, err
	}

	records, err := d.walk(ctx, srcFS, root, SourceSide)
	if err != nil {
		return nil, err
	}

	return &Source{FS: srcFS, Root: root, Records: records}, nil
}

// Detect walks both trees and returns the actions that make the target
// match the source.
func (d *Detector) Detect(
	ctx context.Context,
	srcFS, tgtFS filesystem.FileSystem,
	sourceRoot, targetRoot string,
) (*ActionList, error) {
	srcRoot := inventory.CleanRoot(sourceRoot, srcFS.Separator())
	tgtRoot := inventory.CleanRoot(targetRoot, tgtFS.Separator())

	if err := checkDistinct(srcRoot, tgtRoot); err != nil {
		return nil, err
	}

	if err := d.ensureRoot(srcFS, srcRoot); err != nil {
		return nil, err
	}

	if err := d.ensureRoot(tgtFS, tgtRoot); err != nil {
		return nil, err
	}

	var srcRecords, tgtRecords []*inventory.FileRecord

	if d.workers > 1 {
		group, groupCtx := errgroup.WithContext(ctx)

		group.Go(func() error {
			var err error
			srcRecords, err = d.walk(groupCtx, srcFS, srcRoot, SourceSide)

			return err
		})
		group.Go(func() error {
			var err error
			tgtRecords, err = d.walk(groupCtx, tgtFS, tgtRoot, TargetSide)

			return err
		})

		if err := group.Wait(); err != nil {
			return nil, err //nolint:wrapcheck // Walk errors are already kinded
		}
	} else {
		var err error

		srcRecords, err = d.walk(ctx, srcFS, srcRoot, SourceSide)
		if err != nil {
			return nil, err
		}

		tgtRecords, err = d.walk(ctx, tgtFS, tgtRoot, TargetSide)
		if err != nil {
			return nil, err
		}
	}

	return d.merge(ctx, &Source{FS: srcFS, Root: srcRoot, Records: srcRecords}, tgtFS, tgtRoot, tgtRecords)
}

// DetectWithSource is Detect with an already walked source.
func (d *Detector) DetectWithSource(
	ctx context.Context,
	source *Source,
	tgtFS filesystem.FileSystem,
	targetRoot string,
) (*ActionList, error) {
	tgtRoot := inventory.CleanRoot(targetRoot, tgtFS.Separator())

	if err := checkDistinct(source.Root, tgtRoot); err != nil {
		return nil, err
	}

	if err := d.ensureRoot(tgtFS, tgtRoot); err != nil {
		return nil, err
	}

	tgtRecords, err := d.walk(ctx, tgtFS, tgtRoot, TargetSide)
	if err != nil {
		return nil, err
	}

	return d.merge(ctx, source, tgtFS, tgtRoot, tgtRecords)
}

//nolint:cyclop,funlen // The merge steps read best in one place.
func (d *Detector) merge(
	ctx context.Context,
	source *Source,
	tgtFS filesystem.FileSystem,
	tgtRoot string,
	tgtRecords []*inventory.FileRecord,
) (*ActionList, error) {
	list := &ActionList{SourceRoot: source.Root, TargetRoot: tgtRoot}

	srcByKey, filtered := d.index(source.Records, SourceSide)
	tgtByKey, _ := d.index(tgtRecords, TargetSide)
	list.Filtered = filtered

	srcKeys := mapset.NewThreadUnsafeSetFromMapKeys(srcByKey)
	tgtKeys := mapset.NewThreadUnsafeSetFromMapKeys(tgtByKey)

	var candidates []pair

	for _, key := range sortedKeys(srcKeys.Intersect(tgtKeys)) {
		src, dst := srcByKey[key], tgtByKey[key]
		if src.IsDir || dst.IsDir {
			continue
		}

		candidates = append(candidates, pair{src: src, dst: dst})
	}

	updates, err := d.changedPairs(ctx, source.FS, tgtFS, candidates)
	if err != nil {
		return nil, err
	}

	var actions []Action

	for _, key := range sortedKeys(srcKeys.Difference(tgtKeys)) {
		actions = append(actions, NewCreate(srcByKey[key]))
	}

	for _, p := range updates {
		update, err := NewUpdate(p.src, p.dst)
		if err != nil {
			return nil, err
		}

		actions = append(actions, update)
	}

	for _, action := range actions {
		if reason := d.filters.dropReason(action.Source); reason != "" {
			d.logger.Warn("skipping action",
				"kind", action.Kind.String(),
				"path", action.Source.AbsolutePath,
				"reason", reason)

			list.Skipped++

			continue
		}

		list.Actions = append(list.Actions, action)
	}

	for _, key := range sortedKeys(tgtKeys.Difference(srcKeys)) {
		list.Actions = append(list.Actions, NewDelete(tgtByKey[key]))
	}

	list.Actions = Order(list.Actions)

	creates, updateCount, deletes := list.Counts()
	d.logger.Info("changes detected",
		"creates", creates,
		"updates", updateCount,
		"deletes", deletes,
		"skipped", list.Skipped,
		"filtered", list.Filtered)

	return list, nil
}

// changedPairs returns the candidate pairs the strategies flag as changed.
func (d *Detector) changedPairs(
	ctx context.Context,
	srcFS, tgtFS filesystem.FileSystem,
	candidates []pair,
) ([]pair, error) {
	var changed, needHash []pair

	precision := modTimePrecision(srcFS, tgtFS)

	for _, p := range candidates {
		switch {
		case d.strategies.differsCheaply(p.src, p.dst, precision):
			changed = append(changed, p)
		case d.strategies.Hash:
			needHash = append(needHash, p)
		}
	}

	if len(needHash) == 0 {
		return changed, nil
	}

	differs, err := hashDiffers(ctx, srcFS, tgtFS, needHash, d.workers)
	if err != nil {
		return nil, err
	}

	for i, p := range needHash {
		if differs[i] {
			changed = append(changed, p)
		}
	}

	return changed, nil
}

// index applies the extension filter and keys records. It returns the
// number of files the filter dropped.
func (d *Detector) index(records []*inventory.FileRecord, side Side) (map[string]*inventory.FileRecord, int) {
	byKey := make(map[string]*inventory.FileRecord, len(records))
	filtered := 0

	for _, record := range records {
		if !d.filters.allowsExtension(record) {
			filtered++
			continue
		}

		key := record.Key()
		if existing, ok := byKey[key]; ok {
			d.logger.Warn("entries differ only by case; keeping the first",
				"side", string(side),
				"kept", existing.AbsolutePath,
				"dropped", record.AbsolutePath)

			continue
		}

		byKey[key] = record
	}

	return byKey, filtered
}

func (d *Detector) walk(
	ctx context.Context,
	fsys filesystem.FileSystem,
	root string,
	side Side,
) ([]*inventory.FileRecord, error) {
	if d.onScan != nil {
		d.onScan(side, root, -1)
	}

	records, err := inventory.Walk(ctx, fsys, root, inventory.Options{Logger: d.logger})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s %s: %w", side, root, err)
	}

	if d.onScan != nil {
		d.onScan(side, root, len(records))
	}

	return records, nil
}

func (d *Detector) ensureRoot(fsys filesystem.FileSystem, root string) error {
	created, err := fileops.EnsureDir(fsys, root)
	if err != nil {
		return pkgerrors.IO("ensure root", root, err)
	}

	if created {
		d.logger.Info("created missing root", "root", root)
	}

	return nil
}

func checkDistinct(srcRoot, tgtRoot string) error {
	if pathmodel.Identical(pathmodel.Decompose(srcRoot), pathmodel.Decompose(tgtRoot)) {
		return pkgerrors.NewOpError(pkgerrors.ErrConfiguration, "compare roots", tgtRoot, ErrSameRoot)
	}

	return nil
}

func sortedKeys(set mapset.Set[string]) []string {
	keys := set.ToSlice()
	sort.Strings(keys)

	return keys
}
