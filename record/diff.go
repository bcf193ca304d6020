package record

// Diff computes the multiset difference between prev and cur, as described
// in spec.md §5: "the operator's previous current_list is frozen into
// previous_list; this is the only source of truth for get_inserted_list() /
// get_deleted_list() ... computed via multiset difference." Records that
// appear in both lists the same number of times are neither inserted nor
// deleted; a record appearing more times in cur than in prev is inserted the
// difference in count, and vice-versa for deleted.
//
// Grounded on the teacher's internal/row/diff.go, adapted from a single
// row's column-level diff to a record list's multiset-level diff (equality
// here is whole-record equality, not per-column). The lists are not sorted:
// each prev record is matched against the first unmatched equal record in
// cur, so the cost is quadratic in the list lengths.
func Diff(prev, cur []Record) (inserted, deleted []Record, err error) {
	prevUsed := make([]bool, len(prev))
	curUsed := make([]bool, len(cur))

	for i, p := range prev {
		if prevUsed[i] {
			continue
		}
		for j, c := range cur {
			if curUsed[j] {
				continue
			}
			ok, eqErr := Equal(p, c)
			if eqErr != nil {
				return nil, nil, eqErr
			}
			if ok {
				prevUsed[i] = true
				curUsed[j] = true
				break
			}
		}
	}

	for i, used := range prevUsed {
		if !used {
			deleted = append(deleted, prev[i])
		}
	}
	for j, used := range curUsed {
		if !used {
			inserted = append(inserted, cur[j])
		}
	}
	return inserted, deleted, nil
}
