// Package record implements spec.md's C3 (field / record-class declaration)
// and C4 (record value algebra) components together, the way eim.py keeps
// field, key, RecordClass and Record in one module (see DESIGN.md).
package record

import (
	"fmt"
	"sync/atomic"

	"recordsync/registry"
)

// FilterRef is implemented by filter.Filter. A Field stores the filters it
// participates in as FilterRef values so this package never needs to import
// filter (which itself imports record) — see DESIGN.md.
type FilterRef interface {
	// Register is called once, when the field is attached to a Class,
	// for every filter the field declared membership in.
	Register(f *Field)
}

var seqCounter int64

func nextSeq() int { return int(atomic.AddInt64(&seqCounter, 1)) }

// FieldSpec describes a field before it's attached to a Class. Type may be
// a *registry.TypeInfo, a URI string, a registered type alias, or another
// *Field (declaring this field a foreign key into the referenced field's
// owning class — spec.md §3's "Field.type may itself be a key field").
// Default is the field's default value; nil means no default (a field
// without a default may not follow one that has a default — spec.md §3).
type FieldSpec struct {
	Type    interface{}
	Title   string
	Default interface{}
	Filters []FilterRef
}

// Field is one declared slot in a record class: its type, title, default,
// and position once attached to a Class via NewClass.
type Field struct {
	name       string
	title      string
	typ        interface{}
	typeinfo   *registry.TypeInfo
	def        interface{}
	hasDefault bool
	isKey      bool
	filters    []FilterRef

	seq    int
	offset int
	owner  *Class
}

// NewField declares an ordinary (non-key) field.
func NewField(spec FieldSpec) (*Field, error) {
	ti, err := resolveTypeInfo(spec.Type)
	if err != nil {
		return nil, err
	}
	return &Field{
		title:      spec.Title,
		typ:        spec.Type,
		typeinfo:   ti,
		def:        spec.Default,
		hasDefault: spec.Default != nil,
		filters:    spec.Filters,
		seq:        nextSeq(),
	}, nil
}

// NewKeyField declares a key field. Key fields cannot be filtered and are
// never collapsed to NoChange by Class.Make (spec.md §3).
func NewKeyField(spec FieldSpec) (*Field, error) {
	if len(spec.Filters) > 0 {
		return nil, fmt.Errorf("recordsync: key fields cannot be filtered")
	}
	f, err := NewField(spec)
	if err != nil {
		return nil, err
	}
	f.isKey = true
	return f, nil
}

func resolveTypeInfo(typ interface{}) (*registry.TypeInfo, error) {
	if parent, ok := typ.(*Field); ok {
		return parent.typeinfo, nil
	}
	return registry.TypeInfoFor(typ)
}

// Name returns the field's attribute name, assigned when it's attached to a
// Class.
func (f *Field) Name() string { return f.name }

// Title returns the field's display title, falling back to Name if none
// was declared.
func (f *Field) Title() string {
	if f.title != "" {
		return f.title
	}
	return f.name
}

// Offset returns the field's 1-based position within its owner's field
// list, valid only after the field is attached to a Class.
func (f *Field) Offset() int { return f.offset }

// Owner returns the Class this field is attached to, or nil if it hasn't
// been attached yet.
func (f *Field) Owner() *Class { return f.owner }

// IsKey reports whether this is a key field.
func (f *Field) IsKey() bool { return f.isKey }

// Type returns the raw type context the field was declared with — a
// *registry.TypeInfo, a URI, an alias, or another *Field for a foreign key.
func (f *Field) Type() interface{} { return f.typ }

// HasDefault and Default report the field's declared default, if any.
func (f *Field) HasDefault() bool      { return f.hasDefault }
func (f *Field) Default() interface{}  { return f.def }

// FieldTypeInfo implements registry.TypedContext, letting a *Field be used
// anywhere a type context is accepted (e.g. another field declaring it as a
// foreign key).
func (f *Field) FieldTypeInfo() *registry.TypeInfo { return f.typeinfo }
