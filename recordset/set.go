package recordset

import "recordsync/record"

// Set is spec.md's RecordSet: a collection of records, at most one per key,
// with no concept of exclusion. Subtracting one Set from another produces a
// Diff.
type Set struct {
	*base
}

// NewSet builds a Set from zero or more records, applying later records
// with the same key onto earlier ones via Record.Add.
func NewSet(inclusions ...*record.Record) (*Set, error) {
	s := &Set{base: newBase(func(*record.Record) {})}
	if len(inclusions) > 0 {
		if err := s.update(inclusions, nil, false); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Inclusions returns the set's records, in no particular order.
func (s *Set) Inclusions() []*record.Record { return s.inclusionsSlice() }

// Exclusions is always empty for a Set.
func (s *Set) Exclusions() []*record.Record { return nil }

// Add folds other's records into s (onto any existing entry with the same
// key, via Record.Add).
func (s *Set) Add(other *Set) error {
	return s.update(other.Inclusions(), nil, false)
}

// Remove deletes r's record, if present, from s. Mirrors eim.py's
// RecordSet.remove — removing an absent key is a no-op, not an error,
// since a RecordSet (unlike a Diff) makes no claim about what should be
// present.
func (s *Set) Remove(r *record.Record) {
	delete(s.index, r.Key())
}

// Subtract computes s - other as a Diff, in RecordSet−RecordSet→Diff
// fashion (spec.md §4.5): s's records start as inclusions; each of other's
// records is then subtracted from the inclusion with the same key, leaving
// only the fields that differ (or dropping the inclusion when none do), and
// each of other's records whose key s lacks becomes an exclusion.
func (s *Set) Subtract(other *Set) (*Diff, error) {
	d, err := NewDiff(s.Inclusions(), nil)
	if err != nil {
		return nil, err
	}
	if err := d.update(other.Exclusions(), other.Inclusions(), true); err != nil {
		return nil, err
	}
	return d, nil
}

// Len reports how many records the set holds.
func (s *Set) Len() int { return len(s.index) }
