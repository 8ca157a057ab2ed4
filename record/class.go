package record

import (
	"fmt"
	"sort"

	"recordsync/recerr"
	"recordsync/registry"
)

// FieldDecl names a Field when attaching it to a Class. Go has no runtime
// reflection over "class attributes" the way eim.py's RecordClassMetaclass
// does, so the field's attribute name is supplied explicitly here instead
// of being inferred from assignment.
type FieldDecl struct {
	Name  string
	Field *Field
}

// Class (spec.md's "record class") declares an ordered, fixed set of
// fields, a subset of which are key fields, and synthesizes a constructor
// (Make) for records of this shape. Grounded on eim.py's
// RecordClassMetaclass._constructor_for.
type Class struct {
	uri    string
	name   string
	fields []*Field // offset order: fields[i].offset == i+1
	keys   []*Field
}

// NewClass declares a new record class. Fields are reordered by
// declaration sequence (the order their NewField/NewKeyField calls ran),
// not by the order decls are passed, mirroring eim.py's seq-ordered
// __fields__. A required (no-default) field may not follow an optional
// (has-default) field, a single Field value may not be attached to two
// classes, and key fields may not carry filters.
func NewClass(uri, name string, decls ...FieldDecl) (*Class, error) {
	ordered := make([]FieldDecl, len(decls))
	copy(ordered, decls)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Field.seq < ordered[j].Field.seq
	})

	cls := &Class{uri: uri, name: name}
	sawDefault := false
	for i, d := range ordered {
		f := d.Field
		if f.owner != nil {
			return nil, fmt.Errorf("%w: %s already attached to %s, cannot reuse as %s.%s",
				recerr.ErrFieldReuse, f.name, f.owner.name, name, d.Name)
		}
		if !f.hasDefault {
			if sawDefault {
				return nil, fmt.Errorf("%w: %s.%s is required after an optional field",
					recerr.ErrFieldOrder, name, d.Name)
			}
		} else {
			sawDefault = true
		}
		f.name = d.Name
		f.owner = cls
		f.offset = i + 1
		cls.fields = append(cls.fields, f)
		if f.isKey {
			cls.keys = append(cls.keys, f)
		}
		for _, flt := range f.filters {
			flt.Register(f)
		}
	}
	if err := registry.Default.Register(uri, cls, "record classes must have a URI"); err != nil {
		return nil, err
	}
	return cls, nil
}

// URI returns the class's declared URI.
func (c *Class) URI() string { return c.uri }

// Name returns the class's declared name.
func (c *Class) Name() string { return c.name }

// Fields returns the class's fields in offset order.
func (c *Class) Fields() []*Field { return c.fields }

// KeyFields returns the class's key fields, in offset order.
func (c *Class) KeyFields() []*Field { return c.keys }

// assemble builds a Record from already-converted values, collapsing to
// registry.NoChange if every non-key value is NoChange — the behavior
// eim.py's generated __new__ has via its nc_check guard.
func (c *Class) assemble(vals []interface{}) interface{} {
	allNoChange := true
	for _, f := range c.fields {
		if f.isKey {
			continue
		}
		if vals[f.offset-1] != registry.NoChange {
			allNoChange = false
			break
		}
	}
	if allNoChange {
		return registry.NoChange
	}
	return &Record{class: c, values: vals}
}

// AssembleCanonical builds a Record directly from already-converted,
// canonical values (one per field, in offset order) without running them
// through each field's converter again — used by filter projection, which
// starts from a record that's already fully converted and only needs some
// positions forced to NoChange. Collapses to registry.NoChange under the
// same rule as Make.
func (c *Class) AssembleCanonical(vals []interface{}) (interface{}, error) {
	if len(vals) != len(c.fields) {
		return nil, fmt.Errorf("recordsync: %s expects %d values, got %d", c.name, len(c.fields), len(vals))
	}
	return c.assemble(vals), nil
}

// Make converts values (one per field, in offset order) through each
// field's TypeInfo and constructs a Record, or returns registry.NoChange if
// every non-key value converts to NoChange (spec.md §3's "no-change
// sentinel record" collapse). A key field's converted value must never be
// NoChange.
//
// Trailing fields may be omitted from values entirely, each falling back to
// its declared Default, the way eim.py's generated __new__ lets a caller
// stop supplying positional args once it reaches the optional (has-default)
// tail of a record class's fields. Omitting a field with no default is an
// error.
func (c *Class) Make(values ...interface{}) (interface{}, error) {
	if len(values) > len(c.fields) {
		return nil, fmt.Errorf("recordsync: %s.Make expects at most %d values, got %d", c.name, len(c.fields), len(values))
	}
	converted := make([]interface{}, len(c.fields))
	for i, f := range c.fields {
		raw := f.def
		if i < len(values) {
			raw = values[i]
		} else if !f.hasDefault {
			return nil, fmt.Errorf("recordsync: %s.Make: %s has no value and no default", c.name, f.name)
		}
		v, err := f.typeinfo.Convert(raw)
		if err != nil {
			return nil, fmt.Errorf("recordsync: %s.%s: %w", c.name, f.name, err)
		}
		if f.isKey && v == registry.NoChange {
			return nil, fmt.Errorf("recordsync: %s.%s: key field value cannot be NoChange", c.name, f.name)
		}
		converted[i] = v
	}
	return c.assemble(converted), nil
}
