package translator

import (
	"fmt"

	"recordsync/record"
	"recordsync/recordset"
)

// FieldConflict describes one field that collapsed to NoChange during a
// Union because both sides set it to different values.
type FieldConflict struct {
	Class string
	Key   string
	Title string
	A, B  string
}

// String renders a FieldConflict the way a sync-status CLI would print one
// line of diagnostic output.
func (c FieldConflict) String() string {
	return fmt.Sprintf("%s %s: %s conflicts (%s vs %s)", c.Class, c.Key, c.Title, c.A, c.B)
}

// ExplainConflicts turns a Diff's recorded Union conflicts into field-level
// detail: for each conflicting key, it diffs the two pre-merge operands'
// Explain() output and reports every title where the two sides' formatted
// values differ. A conflict caused by an inclusion/exclusion clash (one
// side deleted the record, the other changed it) is reported as a single
// whole-record conflict instead, since there's no shared field to compare.
// Supplements eim.py, whose Diff._merge discards the conflicting operands
// before any caller could inspect them (see DESIGN.md).
func ExplainConflicts(d *recordset.Diff) []FieldConflict {
	var out []FieldConflict
	for _, c := range d.Conflicts() {
		if c.AExcluded || c.BExcluded {
			out = append(out, FieldConflict{
				Class: c.Key.Class.Name(),
				Key:   c.Key.String(),
				Title: "(record)",
				A:     sideLabel(c.A, c.AExcluded),
				B:     sideLabel(c.B, c.BExcluded),
			})
			continue
		}
		out = append(out, explainFieldConflict(c)...)
	}
	return out
}

func sideLabel(r *record.Record, excluded bool) string {
	if excluded {
		return "deleted"
	}
	return r.String()
}

func explainFieldConflict(c recordset.Conflict) []FieldConflict {
	aEntries := map[string]record.ExplainEntry{}
	for _, e := range c.A.Explain() {
		aEntries[e.Title] = e
	}
	bEntries := map[string]record.ExplainEntry{}
	for _, e := range c.B.Explain() {
		bEntries[e.Title] = e
	}
	var out []FieldConflict
	seen := map[string]bool{}
	for title, ae := range aEntries {
		be, ok := bEntries[title]
		if !ok || be.Value == ae.Value {
			continue
		}
		seen[title] = true
		out = append(out, FieldConflict{
			Class: c.Key.Class.Name(),
			Key:   c.Key.String(),
			Title: title,
			A:     ae.Value,
			B:     be.Value,
		})
	}
	for title, be := range bEntries {
		if seen[title] {
			continue
		}
		if _, ok := aEntries[title]; ok {
			continue
		}
		out = append(out, FieldConflict{
			Class: c.Key.Class.Name(),
			Key:   c.Key.String(),
			Title: title,
			A:     "(unset)",
			B:     be.Value,
		})
	}
	return out
}
