package record

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"recordsync/recerr"
	"recordsync/registry"
)

// Record is an immutable tuple of values, one per field of its Class, each
// either the field's typed value or registry.NoChange. Grounded on
// eim.py's Record(tuple).
type Record struct {
	class  *Class
	values []interface{}
}

// Class returns the record's class.
func (r *Record) Class() *Class { return r.class }

// Value returns the raw (already converted) value at a field's 1-based
// offset.
func (r *Record) Value(offset int) interface{} { return r.values[offset-1] }

// Key returns the record's key (its class plus its key fields' values).
func (r *Record) Key() Key {
	vals := make([]interface{}, len(r.class.keys))
	for i, f := range r.class.keys {
		vals[i] = r.values[f.offset-1]
	}
	return newKey(r.class, vals)
}

// String renders the record as "ClassName(field=value, ...)", the Go
// analogue of eim.py's Record.__repr__, used verbatim when a translator
// annotates a captured import failure (spec.md §4.8, §7).
func (r *Record) String() string {
	parts := make([]string, 0, len(r.class.fields))
	for _, f := range r.class.fields {
		parts = append(parts, fmt.Sprintf("%s=%v", f.name, valueString(f, r.values[f.offset-1])))
	}
	return fmt.Sprintf("%s(%s)", r.class.name, strings.Join(parts, ", "))
}

func valueString(f *Field, v interface{}) string {
	if registry.IsSentinel(v) {
		return v.(registry.Kind).String()
	}
	return registry.FormatCanonical(f.typeinfo, v)
}

func valuesEqual(a, b interface{}) bool {
	if ak, aok := a.(registry.Kind); aok {
		bk, bok := b.(registry.Kind)
		return aok == bok && ak == bk
	}
	switch av := a.(type) {
	case []byte:
		bv, ok := b.([]byte)
		return ok && string(av) == string(bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	}
	if eq, ok := a.(interface{ Equal(interface{}) bool }); ok {
		return eq.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}

// Equal reports whether two records are the same class with identical
// field values (key and non-key alike).
func (r *Record) Equal(o *Record) bool {
	if o == nil || r.class != o.class {
		return false
	}
	for i := range r.values {
		if !valuesEqual(r.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

// Subtract computes r - other: for each key field, r and other must agree
// (else ErrKeyMismatch); for each non-key field, the result is NoChange
// where r and other agree, else r's own value. If every non-key result is
// NoChange, Subtract returns registry.NoChange. Grounded on eim.py's
// Record.__sub__ (note the source binds "new" to self's value and "old" to
// other's value; replicated exactly here).
func (r *Record) Subtract(other *Record) (interface{}, error) {
	if r.class != other.class {
		return nil, fmt.Errorf("%w: %s vs %s", recerr.ErrTypeMismatch, r.class.name, other.class.name)
	}
	res := make([]interface{}, len(r.values))
	for i, f := range r.class.fields {
		newV, oldV := r.values[i], other.values[i]
		if f.isKey {
			if !valuesEqual(oldV, newV) {
				return nil, fmt.Errorf("%w: %s.%s differs (%v vs %v)", recerr.ErrKeyMismatch, r.class.name, f.name, oldV, newV)
			}
			res[i] = newV
			continue
		}
		if valuesEqual(oldV, newV) {
			res[i] = registry.NoChange
		} else {
			res[i] = newV
		}
	}
	return r.class.assemble(res), nil
}

// Add computes r + other: applies other onto r. For key fields, r and
// other must agree (else ErrKeyMismatch). For non-key fields, other's value
// wins unless it's NoChange, in which case r's value is kept. Unlike
// Subtract, the result never collapses to NoChange (spec.md §4.4) — Add
// models "apply an update", and an update that changes nothing is still a
// valid, fully-keyed record.
func (r *Record) Add(other *Record) (*Record, error) {
	if r.class != other.class {
		return nil, fmt.Errorf("%w: %s vs %s", recerr.ErrTypeMismatch, r.class.name, other.class.name)
	}
	res := make([]interface{}, len(r.values))
	for i, f := range r.class.fields {
		a, b := r.values[i], other.values[i]
		if f.isKey {
			if !valuesEqual(a, b) {
				return nil, fmt.Errorf("%w: %s.%s differs (%v vs %v)", recerr.ErrKeyMismatch, r.class.name, f.name, a, b)
			}
			res[i] = a
			continue
		}
		if b == registry.NoChange {
			res[i] = a
		} else {
			res[i] = b
		}
	}
	return &Record{class: r.class, values: res}, nil
}

// Merge computes r | other (commutative): for each key field, r and other
// must agree (else ErrKeyMismatch). For non-key fields: if both are
// NoChange, NoChange; if exactly one is NoChange, the other's value; if
// both are equal non-NoChange values, that value; if both are unequal
// non-NoChange values, NoChange (a conflict — surfaced by the caller, see
// recordset.Diff.Union). Collapses to registry.NoChange if every non-key
// result ends up NoChange. Grounded on eim.py's Record.__or__.
func (r *Record) Merge(other *Record) (interface{}, error) {
	if r.class != other.class {
		return nil, fmt.Errorf("%w: %s vs %s", recerr.ErrTypeMismatch, r.class.name, other.class.name)
	}
	res := make([]interface{}, len(r.values))
	for i, f := range r.class.fields {
		a, b := r.values[i], other.values[i]
		if f.isKey {
			if !valuesEqual(a, b) {
				return nil, fmt.Errorf("%w: %s.%s differs (%v vs %v)", recerr.ErrKeyMismatch, r.class.name, f.name, a, b)
			}
			res[i] = a
			continue
		}
		switch {
		case a == registry.NoChange && b == registry.NoChange:
			res[i] = registry.NoChange
		case a == registry.NoChange:
			res[i] = b
		case b == registry.NoChange:
			res[i] = a
		case valuesEqual(a, b):
			res[i] = a
		default:
			res[i] = registry.NoChange
		}
	}
	return r.class.assemble(res), nil
}

// ExplainEntry is one (title, formatted value, single-field record) triple
// yielded by Explain.
type ExplainEntry struct {
	Title  string
	Value  string
	Record *Record
}

// Explain yields one entry per non-key field whose value isn't NoChange:
// the field's title, its canonically formatted value, and a singleton
// record carrying just that field (plus the full key) set. Grounded on
// eim.py's Record.explain.
func (r *Record) Explain() []ExplainEntry {
	var out []ExplainEntry
	for _, f := range r.class.fields {
		if f.isKey {
			continue
		}
		v := r.values[f.offset-1]
		if v == registry.NoChange {
			continue
		}
		vals := make([]interface{}, len(r.values))
		for i, ff := range r.class.fields {
			if ff.isKey {
				vals[i] = r.values[i]
			} else {
				vals[i] = registry.NoChange
			}
		}
		vals[f.offset-1] = v
		out = append(out, ExplainEntry{
			Title:  f.Title(),
			Value:  valueString(f, v),
			Record: &Record{class: r.class, values: vals},
		})
	}
	return out
}

// RequiresKeys returns the keys of the other records this one depends on:
// one Key per distinct owning class among this record's foreign-key
// fields (fields whose Type() is itself a key *Field). Grounded on
// eim.py's Record.requiresKeys, including its behavior of reusing this
// record's own key-value tuple positionally for every referenced owner —
// appropriate for the common single-key-field case this models.
func (r *Record) RequiresKeys() []Key {
	var order []*Class
	grouped := map[*Class][]interface{}{}
	for _, f := range r.class.fields {
		parent, ok := f.typ.(*Field)
		if !ok || !parent.isKey {
			continue
		}
		owner := parent.owner
		if _, seen := grouped[owner]; !seen {
			order = append(order, owner)
		}
		grouped[owner] = append(grouped[owner], r.values[f.offset-1])
	}
	keys := make([]Key, 0, len(order))
	for _, cls := range order {
		keys = append(keys, newKey(cls, grouped[cls]))
	}
	return keys
}
