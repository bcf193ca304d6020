package hierarchy

import (
	"sort"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/streampref/streampref/formula"
	"github.com/streampref/streampref/record"
)

// Partition is the HierarchyPartition variant (inc-partition): records are
// grouped, per essential comparison, by their projection onto the
// attributes outside that comparison's indifferent set; a record is
// dominated as soon as some partition it falls in as the non-preferred side
// also has a preferred-side member. Grounded on spec.md §4.5.
type Partition struct {
	comparisons []formula.Comparison
	ids         *idTable
	prefCount   map[string]int
	nonprefSet  map[string]map[int]bool
	pdomCount   map[int]int
	best        map[int]bool
}

// NewPartition builds an empty HierarchyPartition over the given essential
// comparison set (typically theory.CPTheory.Comparisons()).
func NewPartition(comparisons []formula.Comparison) *Partition {
	return &Partition{
		comparisons: comparisons,
		ids:         newIDTable(),
		prefCount:   make(map[string]int),
		nonprefSet:  make(map[string]map[int]bool),
		pdomCount:   make(map[int]int),
		best:        make(map[int]bool),
	}
}

func (p *Partition) pid(rec record.Record, compIdx int, c formula.Comparison) (string, error) {
	indiff := c.Indifferent()
	indiffKeys := make(map[string]bool, len(indiff))
	for _, a := range indiff {
		indiffKeys[a.Key()] = true
	}
	var attrs []record.Attribute
	for _, a := range rec.Attributes() {
		if !indiffKeys[a.Key()] {
			attrs = append(attrs, a)
		}
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key() < attrs[j].Key() })
	fp, err := record.Fingerprint(rec, attrs)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(compIdx) + "|" + fp, nil
}

// Update applies deleted records, then inserted records, to the hierarchy.
func (p *Partition) Update(deleted, inserted []record.Record) error {
	for _, rec := range deleted {
		if err := p.delete(rec); err != nil {
			return err
		}
	}
	for _, rec := range inserted {
		if err := p.add(rec); err != nil {
			return err
		}
	}
	return nil
}

func (p *Partition) add(rec record.Record) error {
	id, isNew, err := p.ids.addRef(rec)
	if err != nil {
		return err
	}
	if !isNew {
		return nil
	}

	for idx, c := range p.comparisons {
		pid, err := p.pid(rec, idx, c)
		if err != nil {
			return err
		}

		isBest, err := c.IsBestRecord(rec)
		if err != nil {
			return err
		}
		if isBest {
			p.prefCount[pid]++
			if p.prefCount[pid] == 1 {
				for o := range p.nonprefSet[pid] {
					p.pdomCount[o]++
					delete(p.best, o)
				}
			}
		}

		isWorst, err := c.IsWorstRecord(rec)
		if err != nil {
			return err
		}
		if isWorst {
			if p.nonprefSet[pid] == nil {
				p.nonprefSet[pid] = make(map[int]bool)
			}
			p.nonprefSet[pid][id] = true
			if p.prefCount[pid] > 0 {
				p.pdomCount[id]++
			}
		}
	}

	if p.pdomCount[id] == 0 {
		p.best[id] = true
	}
	return nil
}

func (p *Partition) delete(rec record.Record) error {
	id, removed, err := p.ids.release(rec)
	if err != nil || !removed {
		return err
	}
	delete(p.pdomCount, id)
	delete(p.best, id)

	for idx, c := range p.comparisons {
		pid, err := p.pid(rec, idx, c)
		if err != nil {
			return err
		}

		isBest, err := c.IsBestRecord(rec)
		if err != nil {
			return err
		}
		if isBest && p.prefCount[pid] > 0 {
			p.prefCount[pid]--
			if p.prefCount[pid] == 0 {
				for o := range p.nonprefSet[pid] {
					p.pdomCount[o]--
					if p.pdomCount[o] <= 0 {
						if _, alive := p.ids.recordOf[o]; alive {
							p.best[o] = true
						}
					}
				}
			}
		}

		isWorst, err := c.IsWorstRecord(rec)
		if err != nil {
			return err
		}
		if isWorst {
			delete(p.nonprefSet[pid], id)
		}
	}
	return nil
}

// BestRecords returns the current undominated records, expanded by refcount.
func (p *Partition) BestRecords() []record.Record {
	return p.ids.expand(maps.Keys(p.best))
}

// TopK repeatedly peels the current best set, simulating their deletion to
// expose the next layer, until k records are collected. Every peeled record
// is added back before TopK returns, so the hierarchy keeps the same records.
func (p *Partition) TopK(k int) []record.Record {
	if k <= 0 {
		return nil
	}
	var peeled []record.Record
	defer func() {
		for _, rec := range peeled {
			_ = p.add(rec)
		}
	}()
	var out []record.Record
	for len(out) < k {
		ids := maps.Keys(p.best)
		if len(ids) == 0 {
			break
		}
		slices.Sort(ids)
		layer := p.ids.expand(ids)
		for _, rec := range layer {
			if len(out) >= k {
				break
			}
			out = append(out, rec)
		}
		for _, id := range ids {
			rec := p.ids.recordOf[id]
			refcount := p.ids.refcount[id]
			for i := 0; i < refcount; i++ {
				if err := p.delete(rec); err != nil {
					return out
				}
				peeled = append(peeled, rec)
			}
		}
	}
	return out
}
