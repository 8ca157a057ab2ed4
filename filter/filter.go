// Package filter implements spec.md's C7 (Filter): a named, accumulating
// set of fields that get projected to NoChange when a record is filtered.
// Grounded on eim.py's Filter (see DESIGN.md).
package filter

import (
	"fmt"
	"sync"

	"recordsync/record"
	"recordsync/recordset"
	"recordsync/registry"
)

type projectFunc func(*record.Record) interface{}

// Filter is a named set of fields. Applying a Filter to a record forces
// every field in the set to NoChange (key fields are never members — they
// can't be filtered, by construction). Per-class projection functions are
// cached, exactly as eim.py caches sync_filter per class.
type Filter struct {
	uri         string
	description string

	mu     sync.Mutex
	fields map[*record.Field]struct{}
	cache  map[*record.Class]projectFunc
}

// New declares a new Filter and registers its URI.
func New(uri, description string) (*Filter, error) {
	f := &Filter{
		uri:         uri,
		description: description,
		fields:      map[*record.Field]struct{}{},
		cache:       map[*record.Class]projectFunc{},
	}
	if err := registry.Default.Register(uri, f, "filters must have a URI"); err != nil {
		return nil, err
	}
	return f, nil
}

// URI and Description return the filter's declared metadata.
func (f *Filter) URI() string         { return f.uri }
func (f *Filter) Description() string { return f.description }

// Register implements record.FilterRef: called once per field, when a
// Class attaching that field processes its declared filter memberships.
func (f *Filter) Register(fld *record.Field) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields[fld] = struct{}{}
	delete(f.cache, fld.Owner())
}

// Add accumulates a field, or every field of another filter, into this
// filter ("filter += field-or-filter", spec.md §4.7), invalidating any
// cached projection for an affected class.
func (f *Filter) Add(other interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := other.(type) {
	case *record.Field:
		if v.IsKey() {
			return fmt.Errorf("filter: key field %s cannot be filtered", v.Name())
		}
		f.fields[v] = struct{}{}
		if v.Owner() != nil {
			delete(f.cache, v.Owner())
		}
	case *Filter:
		v.mu.Lock()
		for fld := range v.fields {
			f.fields[fld] = struct{}{}
			if fld.Owner() != nil {
				delete(f.cache, fld.Owner())
			}
		}
		v.mu.Unlock()
	default:
		return fmt.Errorf("filter: cannot add %T to a filter", other)
	}
	return nil
}

// Union composes this filter with one or more others into a single
// "uberfilter" that contains every field from all of them — the
// supplemented composition feature from SPEC_FULL.md §12.3.
func (f *Filter) Union(others ...*Filter) (*Filter, error) {
	for _, o := range others {
		if err := f.Add(o); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Filter) projectionFor(cls *record.Class) projectFunc {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fn, ok := f.cache[cls]; ok {
		return fn
	}
	toFilter := map[*record.Field]bool{}
	for _, fld := range cls.Fields() {
		if _, ok := f.fields[fld]; ok {
			toFilter[fld] = true
		}
	}
	var fn projectFunc
	if len(toFilter) == 0 {
		fn = func(r *record.Record) interface{} { return r }
	} else {
		fn = func(r *record.Record) interface{} {
			vals := make([]interface{}, len(cls.Fields()))
			for i, fld := range cls.Fields() {
				if toFilter[fld] {
					vals[i] = registry.NoChange
				} else {
					vals[i] = r.Value(fld.Offset())
				}
			}
			v, err := makeWithoutConversion(cls, vals)
			if err != nil {
				return r
			}
			return v
		}
	}
	f.cache[cls] = fn
	return fn
}

// makeWithoutConversion assembles a record from already-converted values
// without re-running them through each field's converter (unlike
// Class.Make). This matters here because a projected value is already a
// canonical value, not a raw one — re-converting an already-converted
// time.Time or decimal.Decimal through the same converter table would work
// by luck for some types and not others, so filter.go calls the package
// with its own key-invariant-preserving, conversion-free constructor
// instead.
func makeWithoutConversion(cls *record.Class, vals []interface{}) (interface{}, error) {
	return cls.AssembleCanonical(vals)
}

// ApplyRecord projects a single record through the filter, returning
// either the filtered *record.Record or registry.NoChange if every
// non-key field ended up filtered out and the record had nothing else set.
func (f *Filter) ApplyRecord(r *record.Record) interface{} {
	return f.projectionFor(r.Class())(r)
}

// ApplySet filters every record in s.
func (f *Filter) ApplySet(s *recordset.Set) (*recordset.Set, error) {
	var out []*record.Record
	for _, r := range s.Inclusions() {
		if fr, ok := f.ApplyRecord(r).(*record.Record); ok {
			out = append(out, fr)
		}
	}
	return recordset.NewSet(out...)
}

// ApplyDiff filters every inclusion record in d; exclusions pass through
// unchanged (a deletion isn't a set of field values to filter).
func (f *Filter) ApplyDiff(d *recordset.Diff) (*recordset.Diff, error) {
	var out []*record.Record
	for _, r := range d.Inclusions() {
		if fr, ok := f.ApplyRecord(r).(*record.Record); ok {
			out = append(out, fr)
		}
	}
	return recordset.NewDiff(out, d.Exclusions())
}
