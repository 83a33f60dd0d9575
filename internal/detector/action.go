package detector

import (
	"fmt"

	"github.com/joe/quickcopy/internal/inventory"
	pkgerrors "github.com/joe/quickcopy/pkg/errors"
)

// Kind classifies an action.
type Kind int

// Action kinds. The order is also the tiebreak order between kinds.
const (
	Create Kind = iota
	Update
	Delete
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Action is one reconciliation step. Create carries only Source, Delete
// only Destination, and Update both, with equal keys.
type Action struct {
	Kind        Kind
	Source      *inventory.FileRecord
	Destination *inventory.FileRecord
}

// Record returns the record the action is ordered and reported by: the
// source for Create and Update, the destination for Delete.
func (a Action) Record() *inventory.FileRecord {
	if a.Kind == Delete {
		return a.Destination
	}

	return a.Source
}

// Key is the join key of the action's record.
func (a Action) Key() string {
	return a.Record().Key()
}

// Depth is the segment depth of the action's record.
func (a Action) Depth() int {
	return a.Record().Depth()
}

// NewCreate returns a Create for src.
func NewCreate(src *inventory.FileRecord) Action {
	return Action{Kind: Create, Source: src}
}

// NewDelete returns a Delete for dst.
func NewDelete(dst *inventory.FileRecord) Action {
	return Action{Kind: Delete, Destination: dst}
}

// NewUpdate pairs src and dst. Records whose keys differ were joined
// wrongly and produce an ErrIntegrity.
func NewUpdate(src, dst *inventory.FileRecord) (Action, error) {
	if src == nil || dst == nil || src.Key() != dst.Key() {
		return Action{}, pkgerrors.NewOpError(pkgerrors.ErrIntegrity, "pair update", pathOf(src),
			fmt.Errorf("%w: source %q and destination %q", ErrKeyMismatch, keyOf(src), keyOf(dst)))
	}

	return Action{Kind: Update, Source: src, Destination: dst}, nil
}

// ActionList is the outcome of one detection.
type ActionList struct {
	SourceRoot string
	TargetRoot string
	// Actions are in Order.
	Actions []Action
	// Skipped counts non-delete actions dropped by the skip-folder,
	// include or ignore filters.
	Skipped int
	// Filtered counts source files dropped by the extension filter.
	Filtered int
}

// Counts returns the number of creates, updates and deletes.
func (l *ActionList) Counts() (creates, updates, deletes int) {
	for _, action := range l.Actions {
		switch action.Kind {
		case Create:
			creates++
		case Update:
			updates++
		case Delete:
			deletes++
		}
	}

	return creates, updates, deletes
}

// Empty reports whether there is nothing to do.
func (l *ActionList) Empty() bool {
	return len(l.Actions) == 0
}

func keyOf(r *inventory.FileRecord) string {
	if r == nil {
		return "<nil>"
	}

	return r.Key()
}

func pathOf(r *inventory.FileRecord) string {
	if r == nil {
		return ""
	}

	return r.AbsolutePath
}
