package recordset

import (
	"fmt"

	"recordsync/record"
	"recordsync/registry"
)

// Conflict records the two operands that collapsed to NoChange (or clashed
// as an inclusion/exclusion pair) during a Union, retained purely so
// translator.ExplainConflicts can report field-level detail — the literal
// eim.py source discards both operands at this point (see DESIGN.md's Open
// Question note).
type Conflict struct {
	Key        record.Key
	A, B       *record.Record
	AExcluded  bool
	BExcluded  bool
}

// Diff is spec.md's Diff: a RecordSet-like inclusion set plus an exclusion
// set, the result of comparing two peers' states. Grounded on eim.py's
// Diff(AbstractRS).
type Diff struct {
	*base
	exclusions map[record.Key]*record.Record
	conflicts  map[record.Key]Conflict
}

func newEmptyDiff() *Diff {
	d := &Diff{exclusions: map[record.Key]*record.Record{}, conflicts: map[record.Key]Conflict{}}
	d.base = newBase(func(r *record.Record) { d.exclusions[r.Key()] = r })
	return d
}

// NewDiff builds a Diff from explicit inclusion and exclusion records.
func NewDiff(inclusions, exclusions []*record.Record) (*Diff, error) {
	d := newEmptyDiff()
	if len(inclusions) > 0 || len(exclusions) > 0 {
		if err := d.update(inclusions, exclusions, false); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Inclusions returns the diff's inclusion records, in no particular order.
func (d *Diff) Inclusions() []*record.Record { return d.inclusionsSlice() }

// Exclusions returns the diff's exclusion records, in no particular order.
func (d *Diff) Exclusions() []*record.Record {
	out := make([]*record.Record, 0, len(d.exclusions))
	for _, r := range d.exclusions {
		out = append(out, r)
	}
	return out
}

// Conflicts returns the keys that Union found conflicting, each with the
// two records (or exclusion markers) that produced the conflict.
func (d *Diff) Conflicts() []Conflict {
	out := make([]Conflict, 0, len(d.conflicts))
	for _, c := range d.conflicts {
		out = append(out, c)
	}
	return out
}

// Accumulate applies other's inclusions and exclusions onto d in place
// (Diff's "+=", spec.md §4.5).
func (d *Diff) Accumulate(other *Diff) error {
	return d.update(other.Inclusions(), other.Exclusions(), false)
}

// Remove subtracts a single record or an entire Diff from d. Removing an
// inclusion key that isn't present is an error (a Diff, unlike a RecordSet,
// claims every inclusion key is actually present).
func (d *Diff) Remove(other interface{}) error {
	var inclusions, exclusions []*record.Record
	switch v := other.(type) {
	case *record.Record:
		inclusions = []*record.Record{v}
	case *Diff:
		inclusions = v.Inclusions()
		exclusions = v.Exclusions()
	default:
		return fmt.Errorf("recordset: Remove expects *record.Record or *Diff, got %T", other)
	}
	for _, r := range inclusions {
		k := r.Key()
		existing, ok := d.index[k]
		if !ok {
			return fmt.Errorf("recordset: Remove: key not present: %s", k.String())
		}
		res, err := existing.Subtract(r)
		if err != nil {
			return err
		}
		if res == registry.NoChange {
			delete(d.index, k)
		} else {
			d.index[k] = res.(*record.Record)
		}
	}
	for _, r := range exclusions {
		delete(d.exclusions, r.Key())
	}
	return nil
}

func dedupeRecords(recs []*record.Record) []*record.Record {
	out := make([]*record.Record, 0, len(recs))
	for _, r := range recs {
		dup := false
		for _, seen := range out {
			if seen.Equal(r) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

// Union computes d | other: the two diffs' inclusion and exclusion streams
// are merged key by key. A key appearing as an inclusion on one side and
// an exclusion on the other is a conflict and appears in neither side of
// the result. A key included on both sides is merged via Record.Merge; if
// that collapses to NoChange (every non-key field conflicted), the key is
// also dropped as a conflict. Grounded on eim.py's RecordSet.__or__ /
// Diff._merge.
func (d *Diff) Union(other *Diff) (*Diff, error) {
	res := newEmptyDiff()
	combinedIncl := dedupeRecords(append(append([]*record.Record{}, d.Inclusions()...), other.Inclusions()...))
	combinedExcl := dedupeRecords(append(append([]*record.Record{}, d.Exclusions()...), other.Exclusions()...))
	conflicted := map[record.Key]bool{}

	for _, r := range combinedIncl {
		k := r.Key()
		if conflicted[k] {
			continue
		}
		if exc, ok := res.exclusions[k]; ok {
			conflicted[k] = true
			res.conflicts[k] = Conflict{Key: k, A: r, B: exc, BExcluded: true}
			delete(res.exclusions, k)
			continue
		}
		if existing, ok := res.index[k]; ok {
			merged, err := existing.Merge(r)
			if err != nil {
				return nil, err
			}
			if merged == registry.NoChange {
				conflicted[k] = true
				res.conflicts[k] = Conflict{Key: k, A: existing, B: r}
				delete(res.index, k)
			} else {
				res.index[k] = merged.(*record.Record)
			}
		} else {
			res.index[k] = r
		}
	}
	for _, r := range combinedExcl {
		k := r.Key()
		if conflicted[k] {
			continue
		}
		if existing, ok := res.index[k]; ok {
			conflicted[k] = true
			res.conflicts[k] = Conflict{Key: k, A: existing, B: r, BExcluded: true}
			delete(res.index, k)
			continue
		}
		res.exclusions[k] = r
	}
	return res, nil
}
