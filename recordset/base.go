// Package recordset implements spec.md's C5 (RecordSet / Diff).
package recordset

import (
	"recordsync/record"
	"recordsync/registry"
)

// base holds the shared inclusion-index bookkeeping and update algorithm
// that both Set (RecordSet) and Diff use, differing only in what happens to
// an exclusion whose key isn't already present — a no-op for Set, real
// bookkeeping for Diff. Grounded on eim.py's AbstractRS / RecordSet._exclude
// / Diff._exclude split (see DESIGN.md).
type base struct {
	index   map[record.Key]*record.Record
	exclude func(r *record.Record)
}

func newBase(exclude func(*record.Record)) *base {
	return &base{index: map[record.Key]*record.Record{}, exclude: exclude}
}

// update applies inclusions and exclusions in order. Each inclusion is
// added via Record.Add onto whatever's already indexed under its key (or
// stored directly if nothing is). Each exclusion is subtracted from
// whatever's indexed under its key; if nothing is indexed, base.exclude is
// invoked. When subtract is true and the subtraction doesn't collapse to
// NoChange, the remainder stays indexed (RecordSet−RecordSet→Diff's second
// update call, spec.md §4.5); when subtract is false, any exclusion whose
// key is indexed removes that entry outright.
func (b *base) update(inclusions, exclusions []*record.Record, subtract bool) error {
	for _, r := range inclusions {
		if r == nil {
			continue
		}
		k := r.Key()
		if existing, ok := b.index[k]; ok {
			merged, err := existing.Add(r)
			if err != nil {
				return err
			}
			b.index[k] = merged
		} else {
			b.index[k] = r
		}
	}
	for _, r := range exclusions {
		if r == nil {
			continue
		}
		k := r.Key()
		existing, ok := b.index[k]
		if !ok {
			b.exclude(r)
			continue
		}
		res, err := existing.Subtract(r)
		if err != nil {
			return err
		}
		if res == registry.NoChange || !subtract {
			delete(b.index, k)
		} else {
			b.index[k] = res.(*record.Record)
		}
	}
	return nil
}

func (b *base) inclusionsSlice() []*record.Record {
	out := make([]*record.Record, 0, len(b.index))
	for _, r := range b.index {
		out = append(out, r)
	}
	return out
}
