package executor

import "github.com/joe/quickcopy/internal/detector"

// tiers splits ordered creates and updates into runs of equal depth.
func tiers(writes []detector.Action) [][]detector.Action {
	var out [][]detector.Action

	for start := 0; start < len(writes); {
		end := start
		for end < len(writes) && writes[end].Depth() == writes[start].Depth() {
			end++
		}

		out = append(out, writes[start:end])
		start = end
	}

	return out
}
