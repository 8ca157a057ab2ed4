// Package recerr holds the sentinel error values shared across recordsync's
// packages, so callers can classify failures with errors.Is instead of
// string matching.
package recerr

import "errors"

var (
	// ErrUnknownType is returned when a type context (URI, alias, or field)
	// cannot be resolved to a registered TypeInfo.
	ErrUnknownType = errors.New("recordsync: unknown type")

	// ErrIncompatibleTypes is returned when a translator's import
	// transaction finishes with unresolved forward references still
	// queued.
	ErrIncompatibleTypes = errors.New("recordsync: incompatible types")

	// ErrURICollision is returned when a URI is registered twice for two
	// different schema objects.
	ErrURICollision = errors.New("recordsync: uri collision")

	// ErrTypeMismatch is returned when an operation (subtract, add, merge)
	// is attempted between records of different classes.
	ErrTypeMismatch = errors.New("recordsync: record class mismatch")

	// ErrKeyMismatch is returned when an operation requires two records to
	// share a key and they don't.
	ErrKeyMismatch = errors.New("recordsync: key mismatch")

	// ErrConverterMissing is returned when no converter is registered for a
	// given TypeInfo and input kind.
	ErrConverterMissing = errors.New("recordsync: converter missing")

	// ErrFieldOrder is returned when a required (no-default) field follows
	// an optional (has-default) field in a record class declaration.
	ErrFieldOrder = errors.New("recordsync: required field after optional field")

	// ErrFieldReuse is returned when a single Field value is attached to
	// more than one record class.
	ErrFieldReuse = errors.New("recordsync: field reused across record classes")

	// ErrHandlerConflict is returned when a translator registers a second
	// importer/deleter/exporter for a record class or item type that
	// already has one.
	ErrHandlerConflict = errors.New("recordsync: duplicate handler registration")
)
