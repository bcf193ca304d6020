// Package prefop implements the two operators that drive preference
// evaluation per tick: PreferenceOp over records (spec.md §4.7) and
// TemporalPreferenceOp over sequences (spec.md §4.8). Grounded on
// original_source/operators/preference.py and temporalpreference.py,
// generalized over the record and sequence hierarchy/theory packages built
// below them.
package prefop

// dominates is a generic pairwise dominance test, satisfied by both
// theory.CPTheory.Dominates (records) and theory.TCPTheory.DominatesBySearch
// (sequences) once their receiver is bound.
type dominates[T any] func(a, b T) (bool, error)

// dominantAndDominated partitions items into the subset dominated by no
// other item in the list ("dominant") and everything else ("dominated"),
// mirroring get_dominant_and_dominated used by both the depth-search and
// partition dispatches of spec.md §4.7.
func dominantAndDominated[T any](dom dominates[T], items []T) (dominant, dominated []T, err error) {
	isDominated := make([]bool, len(items))
	for i, candidate := range items {
		for j, other := range items {
			if i == j {
				continue
			}
			ok, derr := dom(other, candidate)
			if derr != nil {
				return nil, nil, derr
			}
			if ok {
				isDominated[i] = true
				break
			}
		}
	}
	for i, item := range items {
		if isDominated[i] {
			dominated = append(dominated, item)
		} else {
			dominant = append(dominant, item)
		}
	}
	return dominant, dominated, nil
}

// peelTopK repeatedly peels the dominant subset of the remaining pool,
// taking only as many as needed to reach k, until k items are collected or
// the pool is exhausted. Mirrors spec.md §4.7: "repeatedly peel dominant
// records ... until k collected" / "iterate on the dominated remainder to
// build top-k".
func peelTopK[T any](dom dominates[T], items []T, k int) ([]T, error) {
	remaining := append([]T{}, items...)
	var result []T
	for len(remaining) > 0 && len(result) < k {
		dominant, rest, err := dominantAndDominated(dom, remaining)
		if err != nil {
			return nil, err
		}
		if len(dominant) == 0 {
			// No strict dominance left among the remainder (e.g. a cycle-free
			// theory with only incomparable items): take them all.
			dominant, rest = remaining, nil
		}
		need := k - len(result)
		if len(dominant) > need {
			dominant = dominant[:need]
		}
		result = append(result, dominant...)
		remaining = rest
	}
	return result, nil
}
