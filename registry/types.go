package registry

import (
	"fmt"
	"sync"

	"github.com/mitchellh/copystructure"
	"github.com/zclconf/go-cty/cty"

	"recordsync/recerr"
)

type typeKind int

const (
	kindBytes typeKind = iota
	kindText
	kindInt
	kindDate
	kindTimestamp
	kindBlob
	kindClob
	kindDecimal
)

// TypeInfo describes one field type: its kind, its declared URI, its
// variant-specific parameters (maximum size for Bytes/Text, while Blob and
// Clob are unbounded; digits and decimal places for Decimal), and the converter table that turns raw Go
// values into canonical field values. See spec.md §3 (Data Model) and §4.1
// (C1).
type TypeInfo struct {
	kind   typeKind
	uri    string
	size   int
	digits int
	places int
	conv   *converterTable
}

// URI returns the TypeInfo's declared URI.
func (ti *TypeInfo) URI() string { return ti.uri }

// Size returns the declared maximum size for Bytes/Text TypeInfo values (0
// for the unbounded Blob/Clob).
func (ti *TypeInfo) Size() int { return ti.size }

// Digits and DecimalPlaces return the declared precision for Decimal
// TypeInfo values.
func (ti *TypeInfo) Digits() int        { return ti.digits }
func (ti *TypeInfo) DecimalPlaces() int { return ti.places }

// CtyType returns the canonical cty.Type each TypeInfo kind maps to. This
// grounds spec.md's "multi-dispatch converters" design note in a real typed
// value system rather than a hand-rolled interface{} switch (see
// DESIGN.md, registry).
func (ti *TypeInfo) CtyType() cty.Type {
	switch ti.kind {
	case kindInt, kindDecimal:
		return cty.Number
	default:
		return cty.String
	}
}

func newTypeInfo(kind typeKind, uri string) (*TypeInfo, error) {
	ti := &TypeInfo{kind: kind, uri: uri, conv: newConverterTable()}
	if err := Default.Register(uri, ti, "types must have a URI"); err != nil {
		return nil, err
	}
	return ti, nil
}

// NewBytes declares a length-bounded octet-string type: values longer than
// size bytes are rejected.
func NewBytes(uri string, size int) (*TypeInfo, error) {
	if size <= 0 {
		return nil, fmt.Errorf("recordsync: Bytes type %s requires a positive size", uri)
	}
	ti, err := newTypeInfo(kindBytes, uri)
	if err != nil {
		return nil, err
	}
	ti.size = size
	registerBytesConverters(ti)
	return ti, nil
}

// NewText declares a length-bounded text type: values longer than size
// characters are rejected.
func NewText(uri string, size int) (*TypeInfo, error) {
	if size <= 0 {
		return nil, fmt.Errorf("recordsync: Text type %s requires a positive size", uri)
	}
	ti, err := newTypeInfo(kindText, uri)
	if err != nil {
		return nil, err
	}
	ti.size = size
	registerTextConverters(ti)
	return ti, nil
}

// NewInt declares a 64-bit integer type (canonical values are int64).
func NewInt(uri string) (*TypeInfo, error) {
	ti, err := newTypeInfo(kindInt, uri)
	if err != nil {
		return nil, err
	}
	registerIntConverters(ti)
	return ti, nil
}

// NewDate declares a calendar-date type (no time-of-day).
func NewDate(uri string) (*TypeInfo, error) {
	ti, err := newTypeInfo(kindDate, uri)
	if err != nil {
		return nil, err
	}
	registerDateConverters(ti)
	return ti, nil
}

// NewTimestamp declares a point-in-time type.
func NewTimestamp(uri string) (*TypeInfo, error) {
	ti, err := newTypeInfo(kindTimestamp, uri)
	if err != nil {
		return nil, err
	}
	registerTimestampConverters(ti)
	return ti, nil
}

// NewBlob declares an unbounded binary type.
func NewBlob(uri string) (*TypeInfo, error) {
	ti, err := newTypeInfo(kindBlob, uri)
	if err != nil {
		return nil, err
	}
	registerBytesConverters(ti)
	return ti, nil
}

// NewClob declares an unbounded text type.
func NewClob(uri string) (*TypeInfo, error) {
	ti, err := newTypeInfo(kindClob, uri)
	if err != nil {
		return nil, err
	}
	registerTextConverters(ti)
	return ti, nil
}

// NewDecimal declares a fixed-precision decimal type with the given total
// digit count and digits after the decimal point.
func NewDecimal(uri string, digits, places int) (*TypeInfo, error) {
	if digits <= 0 || places < 0 || places > digits {
		return nil, fmt.Errorf("recordsync: Decimal type %s has invalid digits/places", uri)
	}
	ti, err := newTypeInfo(kindDecimal, uri)
	if err != nil {
		return nil, err
	}
	ti.digits = digits
	ti.places = places
	registerDecimalConverters(ti)
	return ti, nil
}

// TypeOverrides carries the optional parameter overrides Subtype accepts.
type TypeOverrides struct {
	Size   *int
	Digits *int
	Places *int
}

// Subtype derives a new TypeInfo that shares this one's converter table
// (a plain pointer copy — conversions are inherited, not reimplemented) but
// has its own URI and, optionally, its own size/precision parameters.
// copystructure.Copy supplies the fresh struct; it does not copy unexported
// fields, so the parent's kind and parameters are assigned explicitly before
// the overrides apply, and the converter table pointer is the parent's
// (spec.md §4.1). The shared converters check size and precision against
// the parent's parameters; the overrides show in Size, Digits,
// DecimalPlaces and FormatCanonical.
func (ti *TypeInfo) Subtype(uri string, overrides TypeOverrides) (*TypeInfo, error) {
	cloned, err := copystructure.Copy(ti)
	if err != nil {
		return nil, fmt.Errorf("recordsync: subtype %s: %w", uri, err)
	}
	clone := cloned.(*TypeInfo)
	clone.kind, clone.size, clone.digits, clone.places = ti.kind, ti.size, ti.digits, ti.places
	clone.uri = uri
	clone.conv = ti.conv
	if overrides.Size != nil {
		clone.size = *overrides.Size
	}
	if overrides.Digits != nil {
		clone.digits = *overrides.Digits
	}
	if overrides.Places != nil {
		clone.places = *overrides.Places
	}
	if err := Default.Register(uri, clone, "types must have a URI"); err != nil {
		return nil, err
	}
	return clone, nil
}

// AddConverter registers a conversion function for raw values matching the
// type of example (a zero value of the Go type the converter accepts, used
// purely to key the dispatch table — e.g. "" for string, int64(0) for
// int64).
func (ti *TypeInfo) AddConverter(example interface{}, fn func(interface{}) (interface{}, error)) {
	ti.conv.add(exampleKey(example), fn)
}

// Convert runs raw through the TypeInfo's converter table. Sentinel values
// (NoChange, Inherit, Absent) pass through unchanged, per spec.md §4.1.
func (ti *TypeInfo) Convert(raw interface{}) (interface{}, error) {
	if IsSentinel(raw) {
		return raw, nil
	}
	fn, ok := ti.conv.lookup(exampleKey(raw))
	if !ok {
		return nil, fmt.Errorf("%w: no converter for %T in %s", recerr.ErrConverterMissing, raw, ti.uri)
	}
	return fn(raw)
}

// FieldTypeInfo lets *TypeInfo itself satisfy TypedContext, so a bare
// *TypeInfo can be passed wherever a type context is accepted.
func (ti *TypeInfo) FieldTypeInfo() *TypeInfo { return ti }

// TypedContext is implemented by anything that carries its own TypeInfo —
// *TypeInfo itself, and record.Field. Kept here (rather than requiring
// registry to import record) to avoid an import cycle: record imports
// registry, not the other way around.
type TypedContext interface {
	FieldTypeInfo() *TypeInfo
}

var (
	aliasMu sync.RWMutex
	aliases = map[interface{}]*TypeInfo{}
)

// Typedef registers alias (any comparable Go value — typically a
// reflect.Type or a small marker value) as shorthand for ti, so later
// TypeInfoFor(alias) calls resolve to ti without needing the URI spelled
// out. Mirrors eim.py's module-level typedef(...) calls.
func Typedef(alias interface{}, ti *TypeInfo) error {
	aliasMu.Lock()
	defer aliasMu.Unlock()
	if existing, ok := aliases[alias]; ok && existing != ti {
		return fmt.Errorf("%w: alias already registered: %v", recerr.ErrURICollision, alias)
	}
	aliases[alias] = ti
	return nil
}

// TypeInfoFor resolves a type context — a *TypeInfo, a URI string, a
// TypedContext (e.g. record.Field), or a registered alias — to a *TypeInfo.
func TypeInfoFor(context interface{}) (*TypeInfo, error) {
	switch v := context.(type) {
	case *TypeInfo:
		return v, nil
	case string:
		obj, ok := Default.Lookup(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s", recerr.ErrUnknownType, v)
		}
		return TypeInfoFor(obj)
	case TypedContext:
		return v.FieldTypeInfo(), nil
	default:
		aliasMu.RLock()
		ti, ok := aliases[context]
		aliasMu.RUnlock()
		if ok {
			return ti, nil
		}
		return nil, fmt.Errorf("%w: %v", recerr.ErrUnknownType, context)
	}
}
