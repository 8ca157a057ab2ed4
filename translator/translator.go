// Package translator implements spec.md's C8 (Translator framework): a
// per-record-class registry of importers/deleters and a per-item-type
// registry of exporters, transaction lifecycle, and the smart-set /
// item-for-uuid plumbing that connects records to an external item model.
// Grounded on eim.py's TranslatorClass/Translator (see DESIGN.md).
package translator

import (
	"reflect"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-version"

	"recordsync/recerr"
	"recordsync/record"
	"recordsync/recordset"
	"recordsync/registry"
)

// ImporterFunc applies one record's values onto the host's object model.
type ImporterFunc func(t *Translator, r *record.Record) error

// DeleterFunc undoes whatever the matching importer did, for a record
// appearing as an exclusion.
type DeleterFunc func(t *Translator, r *record.Record) error

// ExporterFunc produces zero or more records describing subject's current
// state (subject is an Item or an ItemAddOn).
type ExporterFunc func(t *Translator, subject interface{}) ([]*record.Record, error)

// Translator is spec.md's translator: a named, versioned bundle of
// importers, deleters and exporters plus the transaction state
// (StartImport/FinishImport, StartExport/FinishExport) that a sync session
// runs through.
type Translator struct {
	URI         string
	Version     int
	Description string

	importers map[*record.Class]ImporterFunc
	deleters  map[*record.Class]DeleterFunc
	exporters map[reflect.Type]ExporterFunc
	ancestors map[reflect.Type][]reflect.Type

	loadQueue   map[string]Item
	exportCache map[reflect.Type][]ExporterFunc

	failure error

	semver *version.Version
	log    hclog.Logger
}

// NewTranslator declares a translator. If parent is non-nil, parent's
// importer/deleter/exporter/ancestor registrations are copied in first, so
// the new translator's own Register* calls can override specific entries —
// the construction-time stand-in for eim.py's runtime MRO-based handler
// inheritance (Go has no class hierarchy to walk at runtime; see
// DESIGN.md).
func NewTranslator(uri string, ver int, description string, parent *Translator) (*Translator, error) {
	t := &Translator{
		URI:         uri,
		Version:     ver,
		Description: description,
		importers:   map[*record.Class]ImporterFunc{},
		deleters:    map[*record.Class]DeleterFunc{},
		exporters:   map[reflect.Type]ExporterFunc{},
		ancestors:   map[reflect.Type][]reflect.Type{},
		loadQueue:   map[string]Item{},
		exportCache: map[reflect.Type][]ExporterFunc{},
		log:         hclog.Default().Named("recordsync.translator." + uri),
	}
	if parent != nil {
		for k, v := range parent.importers {
			t.importers[k] = v
		}
		for k, v := range parent.deleters {
			t.deleters[k] = v
		}
		for k, v := range parent.exporters {
			t.exporters[k] = v
		}
		for k, v := range parent.ancestors {
			t.ancestors[k] = v
		}
	}
	if sv, err := version.NewVersion(semverString(ver)); err == nil {
		t.semver = sv
	}
	if err := registry.Default.Register(uri, t, "translators must have a URI"); err != nil {
		return nil, err
	}
	return t, nil
}

func semverString(ver int) string {
	return itoa(ver) + ".0.0"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// SemVer returns the translator's declared integer Version parsed as a
// semantic version, for translators that want cross-peer compatibility
// checks (SPEC_FULL.md §11). It's nil if parsing failed (never, for a
// non-negative Version).
func (t *Translator) SemVer() *version.Version { return t.semver }

// RegisterImporter installs the importer for cls. Registering a second
// importer for the same class is an error.
func (t *Translator) RegisterImporter(cls *record.Class, fn ImporterFunc) error {
	if _, exists := t.importers[cls]; exists {
		return wrapHandlerConflict("importer", cls.Name())
	}
	t.importers[cls] = fn
	return nil
}

// RegisterDeleter installs the deleter for cls.
func (t *Translator) RegisterDeleter(cls *record.Class, fn DeleterFunc) error {
	if _, exists := t.deleters[cls]; exists {
		return wrapHandlerConflict("deleter", cls.Name())
	}
	t.deleters[cls] = fn
	return nil
}

// RegisterExporter installs the exporter for typ (an Item or ItemAddOn Go
// type) and records its ancestor chain, ordered from most general to most
// specific, for ExportItem to walk. Go has no runtime class hierarchy, so
// the chain is supplied explicitly rather than discovered via reflection —
// the stand-in for eim.py's type(item).__mro__ walk (see DESIGN.md).
func (t *Translator) RegisterExporter(typ reflect.Type, ancestorsGeneralToSpecific []reflect.Type, fn ExporterFunc) error {
	if _, exists := t.exporters[typ]; exists {
		return wrapHandlerConflict("exporter", typ.String())
	}
	t.exporters[typ] = fn
	if len(ancestorsGeneralToSpecific) > 0 {
		t.ancestors[typ] = ancestorsGeneralToSpecific
	}
	return nil
}

func wrapHandlerConflict(kind, name string) error {
	return &handlerConflictError{kind: kind, name: name}
}

type handlerConflictError struct {
	kind, name string
}

func (e *handlerConflictError) Error() string {
	return "recordsync: duplicate " + e.kind + " registration for " + e.name
}
func (e *handlerConflictError) Unwrap() error { return recerr.ErrHandlerConflict }

// StartImport begins an import transaction: the forward-reference load
// queue is reset.
func (t *Translator) StartImport() {
	t.loadQueue = map[string]Item{}
}

// FinishImport ends an import transaction. If any forward reference was
// never resolved (an item queued via QueueForwardReference never got
// filled in by ResolveForwardReference), the transaction fails with
// ErrIncompatibleTypes, mirroring eim.py's startImport/finishImport
// contract.
func (t *Translator) FinishImport() error {
	if len(t.loadQueue) > 0 {
		return wrapIncompatible(len(t.loadQueue))
	}
	return nil
}

func wrapIncompatible(n int) error {
	return &incompatibleError{n: n}
}

type incompatibleError struct{ n int }

func (e *incompatibleError) Error() string {
	return "recordsync: import finished with unresolved forward references"
}
func (e *incompatibleError) Unwrap() error { return recerr.ErrIncompatibleTypes }

// QueueForwardReference records that uuid was referenced but not yet fully
// resolved during the current import transaction.
func (t *Translator) QueueForwardReference(uuid string, item Item) {
	t.loadQueue[NormalizeUUIDString(uuid)] = item
}

// ResolveForwardReference marks uuid as resolved, removing it from the
// pending queue.
func (t *Translator) ResolveForwardReference(uuid string) {
	delete(t.loadQueue, NormalizeUUIDString(uuid))
}

// StartExport begins an export transaction: the exporter-ancestor-chain
// cache is reset (a translator's registrations may have changed since the
// last export).
func (t *Translator) StartExport() {
	t.exportCache = map[reflect.Type][]ExporterFunc{}
}

// FinishExport ends an export transaction. There's nothing to validate on
// the export side (unlike import's forward-reference contract), but the
// call exists so callers can bracket StartExport/FinishExport symmetrically.
func (t *Translator) FinishExport() error { return nil }

func (t *Translator) exportersFor(typ reflect.Type) []ExporterFunc {
	if cached, ok := t.exportCache[typ]; ok {
		return cached
	}
	chain := t.ancestors[typ]
	if chain == nil {
		chain = []reflect.Type{typ}
	}
	var list []ExporterFunc
	for _, anc := range chain {
		if fn, ok := t.exporters[anc]; ok {
			list = append(list, fn)
		}
	}
	t.exportCache[typ] = list
	return list
}

func (t *Translator) exportables(item Item) []interface{} {
	out := []interface{}{item}
	if withExt, ok := item.(ExportableExtensions); ok {
		for _, ext := range withExt.Extensions() {
			out = append(out, ext)
		}
	}
	return out
}

// ExportSubject runs subject through every registered exporter applicable
// to its concrete type and declared ancestor chain, in order, collecting
// all produced records. subject need not be an Item — any Go value with a
// registered exporter works (e.g. catalogue's CAAEntry, which has no UUID
// of its own and so isn't an Item).
func (t *Translator) ExportSubject(subject interface{}) ([]*record.Record, error) {
	var out []*record.Record
	typ := reflect.TypeOf(subject)
	for _, fn := range t.exportersFor(typ) {
		recs, err := fn(t, subject)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

// ExportItem runs item (and each of its extensions) through every
// registered exporter applicable to its type and ancestor chain, in
// declared order, collecting all produced records.
func (t *Translator) ExportItem(item Item) ([]*record.Record, error) {
	var out []*record.Record
	for _, subject := range t.exportables(item) {
		recs, err := t.ExportSubject(subject)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

// recordFailure remembers the last import failure, logged at [ERROR] the
// way the teacher logs unrecoverable API errors.
func (t *Translator) recordFailure(err error) {
	t.failure = err
	t.log.Error("import failure", "error", err)
}

// ImportRecord invokes the importer registered for r's class inside a
// guarded scope: any error it returns is captured (annotated with r's
// printable form), logged, and returned. A class with no registered
// importer is silently ignored, per spec.md §7 ("records of unknown type
// are ignored, not rejected"). The per-record failure slot is always
// cleared afterward, regardless of outcome.
func (t *Translator) ImportRecord(r *record.Record) error {
	defer func() { t.failure = nil }()
	importer, ok := t.importers[r.Class()]
	if !ok {
		return nil
	}
	if err := importer(t, r); err != nil {
		wrapped := &importFailure{record: r.String(), err: err}
		t.recordFailure(wrapped)
		return wrapped
	}
	return nil
}

type importFailure struct {
	record string
	err    error
}

func (e *importFailure) Error() string {
	return "recordsync: failed to import record " + e.record + ": " + e.err.Error()
}
func (e *importFailure) Unwrap() error { return e.err }

// ImportRecords applies every inclusion in d via ImportRecord and every
// exclusion via the matching deleter (classes with no registered deleter
// are ignored, same as import). All failures across the batch are
// collected into one *multierror.Error, the Terraform-SDK-ecosystem way of
// aggregating per-item validation errors (see DESIGN.md).
func (t *Translator) ImportRecords(d *recordset.Diff) error {
	var merr *multierror.Error
	for _, r := range d.Inclusions() {
		if err := t.ImportRecord(r); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	for _, r := range d.Exclusions() {
		deleter, ok := t.deleters[r.Class()]
		if !ok {
			continue
		}
		if err := deleter(t, r); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}
