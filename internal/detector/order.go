package detector

import "sort"

// Order returns actions in execution order: creates and updates by
// ascending source depth, then deletes by descending destination depth.
// Ties break on the join key, then Create before Update. The input is not
// modified.
func Order(actions []Action) []Action {
	var writes, deletes []Action

	for _, action := range actions {
		if action.Kind == Delete {
			deletes = append(deletes, action)
		} else {
			writes = append(writes, action)
		}
	}

	sort.SliceStable(writes, func(i, j int) bool {
		a, b := writes[i], writes[j]
		if a.Depth() != b.Depth() {
			return a.Depth() < b.Depth()
		}

		if a.Key() != b.Key() {
			return a.Key() < b.Key()
		}

		return a.Kind < b.Kind
	})

	sort.SliceStable(deletes, func(i, j int) bool {
		a, b := deletes[i], deletes[j]
		if a.Depth() != b.Depth() {
			return a.Depth() > b.Depth()
		}

		return a.Key() < b.Key()
	})

	return append(writes, deletes...)
}
