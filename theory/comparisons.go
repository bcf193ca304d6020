package theory

import (
	"github.com/streampref/streampref/formula"
	"github.com/streampref/streampref/interval"
	"github.com/streampref/streampref/record"
)

// buildComparisons synthesizes the essential comparison set used by
// AlgPartition: a formula universe is built by combining every atomic
// condition, best and worst proposition across rules, direct comparisons are
// derived from rule.FormulaDominates with the rule's preference attribute
// added to its indifferent set, a Floyd-Warshall pass computes their transitive
// closure, and non-essential (dominated-by-a-more-generic-comparison)
// entries are pruned. Mirrors CPTheory._build_comparisons.
func (t *CPTheory) buildComparisons() error {
	t.buildFormulaUniverse()

	n := len(t.formulas)
	direct := make([][]map[string]formula.Comparison, n)
	for i := range direct {
		direct[i] = make([]map[string]formula.Comparison, n)
		for j := range direct[i] {
			direct[i][j] = make(map[string]formula.Comparison)
		}
	}

	for i, f1 := range t.formulas {
		for j, f2 := range t.formulas {
			if i == j {
				continue
			}
			for _, r := range t.rules {
				ok, err := r.FormulaDominates(f1, f2)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				c := formula.NewComparison(f1, f2, append([]record.Attribute{r.PrefAttr}, r.Indifferent...))
				direct[i][j][c.String()] = c
			}
		}
	}

	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				ik := direct[i][k]
				kj := direct[k][j]
				if len(ik) == 0 || len(kj) == 0 {
					continue
				}
				for _, c1 := range ik {
					for _, c2 := range kj {
						combined := formula.NewComparison(c1.Best(), c2.Worst(), unionAttrs(c1.Indifferent(), c2.Indifferent()))
						direct[i][j][combined.String()] = combined
					}
				}
			}
		}
	}

	var all []formula.Comparison
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for _, c := range direct[i][j] {
				all = append(all, c)
			}
		}
	}

	t.comparisons = cleanComparisons(all)
	return nil
}

func unionAttrs(a, b []record.Attribute) []record.Attribute {
	seen := make(map[string]record.Attribute)
	for _, x := range a {
		seen[x.Key()] = x
	}
	for _, x := range b {
		seen[x.Key()] = x
	}
	out := make([]record.Attribute, 0, len(seen))
	for _, x := range seen {
		out = append(out, x)
	}
	return out
}

// cleanComparisons removes comparisons that a more generic comparison in the
// set already subsumes, mirroring CPTheory._clean_comparisons.
func cleanComparisons(all []formula.Comparison) []formula.Comparison {
	var essential []formula.Comparison
	remaining := append([]formula.Comparison{}, all...)
	for len(remaining) > 0 {
		c := remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
		keep := true
		for _, other := range append(append([]formula.Comparison{}, remaining...), essential...) {
			if other.IsMoreGenericThan(c) {
				keep = false
				break
			}
		}
		if keep {
			essential = append(essential, c)
		}
	}
	return essential
}

// buildFormulaUniverse generates every combination of atomic condition, best
// and worst propositions across the theory's rules, mirroring
// CPTheory._build_formulas.
func (t *CPTheory) buildFormulaUniverse() {
	var atomics []formula.Formula
	seen := make(map[string]bool)
	addIfNew := func(f formula.Formula) {
		if !seen[f.String()] {
			seen[f.String()] = true
			atomics = append(atomics, f)
			t.formulas = append(t.formulas, f)
		}
	}

	for _, r := range t.rules {
		for _, a := range r.Condition.Attributes() {
			iv, _ := r.Condition.Interval(a)
			addIfNew(formula.New(map[record.Attribute]interval.Interval{a: iv}))
		}
		addIfNew(formula.New(map[record.Attribute]interval.Interval{r.PrefAttr: r.Best}))
		addIfNew(formula.New(map[record.Attribute]interval.Interval{r.PrefAttr: r.Worst}))
	}

	for _, atomic := range atomics {
		a := atomic.Attributes()[0]
		aIv, _ := atomic.Interval(a)
		var fresh []formula.Formula
		for _, f := range t.formulas {
			if f.Has(a) {
				continue
			}
			props := map[record.Attribute]interval.Interval{a: aIv}
			for _, fa := range f.Attributes() {
				iv, _ := f.Interval(fa)
				props[fa] = iv
			}
			combined := formula.New(props)
			dup := false
			for _, existing := range t.formulas {
				if existing.String() == combined.String() {
					dup = true
					break
				}
			}
			if !dup {
				for _, fr := range fresh {
					if fr.String() == combined.String() {
						dup = true
						break
					}
				}
			}
			if !dup {
				fresh = append(fresh, combined)
			}
		}
		t.formulas = append(t.formulas, fresh...)
	}
}
