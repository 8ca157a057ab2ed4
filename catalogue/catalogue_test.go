package catalogue

import (
	"testing"

	"recordsync/record"
	"recordsync/recordset"
	"recordsync/registry"
	"recordsync/translator"
)

func TestItemStoreGetOrCreateNormalizesUUID(t *testing.T) {
	store := NewItemStore()
	it, err := store.ItemForUUID("ABCD-1234")
	if err != nil {
		t.Fatalf("ItemForUUID: %v", err)
	}
	if it.UUID() != "abcd-1234" {
		t.Fatalf("UUID = %q, want lowercased abcd-1234", it.UUID())
	}
	again, err := store.ItemForUUID("abcd-1234")
	if err != nil {
		t.Fatalf("ItemForUUID: %v", err)
	}
	if again != it {
		t.Fatal("ItemForUUID should return the same *Item for the same normalized UUID")
	}
	if _, ok := store.Get("ABCD-1234"); !ok {
		t.Fatal("Get should find the item created via ItemForUUID regardless of case")
	}
}

func TestItemStoreMintsUUIDForEmptyReference(t *testing.T) {
	store := NewItemStore()
	it, err := store.ItemForUUID("")
	if err != nil {
		t.Fatalf("ItemForUUID(\"\"): %v", err)
	}
	if it.UUID() == "" {
		t.Fatal("ItemForUUID(\"\") should mint a fresh, non-empty UUID")
	}
	if _, ok := store.Get(it.UUID()); !ok {
		t.Fatal("the minted item should be stored under its new UUID")
	}

	again, err := store.ItemForUUID("")
	if err != nil {
		t.Fatalf("ItemForUUID(\"\"): %v", err)
	}
	if again.UUID() == it.UUID() {
		t.Fatal("a second empty reference should mint a distinct UUID, not reuse the first")
	}
}

func TestCAARecordStoreForNameSortedByTag(t *testing.T) {
	store := NewCAARecordStore()
	store.Put(CAAEntry{Zone: "example.com", Name: "@", Tag: "issuewild", Value: "a.example", Flag: 0})
	store.Put(CAAEntry{Zone: "example.com", Name: "@", Tag: "issue", Value: "b.example", Flag: 0})

	entries := store.ForName("example.com", "@")
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Tag != "issue" || entries[1].Tag != "issuewild" {
		t.Fatalf("entries not sorted by tag: %+v", entries)
	}

	store.Delete("example.com", "@", "issue")
	if _, ok := store.Get("example.com", "@", "issue"); ok {
		t.Fatal("Delete should have removed the entry")
	}
	if len(store.ForName("example.com", "@")) != 1 {
		t.Fatalf("ForName after delete = %d, want 1", len(store.ForName("example.com", "@")))
	}
}

func newWiredTranslator(t *testing.T) (*ItemStore, *CAARecordStore, *translator.Translator) {
	t.Helper()
	items := NewItemStore()
	dns := NewCAARecordStore()
	tr, err := NewTranslator("urn:recordsync:test:catalogue:translator:"+t.Name(), 1, "catalogue test translator", items, dns)
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}
	return items, dns, tr
}

// Scenario A (catalogue-level): importing an Item record applies its fields
// via smart-set, creating the item on first reference.
func TestImportItemRecordCreatesAndUpdatesItem(t *testing.T) {
	items, _, tr := newWiredTranslator(t)

	rec, err := ItemClass.Make("U1", "Hello", "World", registry.NoChange)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	r := rec.(*record.Record)
	if err := tr.ImportRecords(mustDiff(t, []*record.Record{r}, nil)); err != nil {
		t.Fatalf("ImportRecords: %v", err)
	}

	it, ok := items.Get("u1")
	if !ok {
		t.Fatal("item u1 was not created")
	}
	if it.Title() != "Hello" || it.Body() != "World" {
		t.Fatalf("title/body = %q/%q, want Hello/World", it.Title(), it.Body())
	}
}

// Scenario E (catalogue-level): a dependent record (Event) imports onto the
// same Item its itemUUID key field references, via the generic attrs bag.
func TestImportEventRecordAttachesToOwningItem(t *testing.T) {
	items, _, tr := newWiredTranslator(t)

	eventRec, err := EventClass.Make("U1", "2026-06-01T10:00:00Z", "1.50", "Room 12")
	if err != nil {
		t.Fatalf("Make(Event): %v", err)
	}
	r := eventRec.(*record.Record)
	if err := tr.ImportRecords(mustDiff(t, []*record.Record{r}, nil)); err != nil {
		t.Fatalf("ImportRecords: %v", err)
	}

	it, ok := items.Get("u1")
	if !ok {
		t.Fatal("owning item u1 should have been created on first reference")
	}
	if it.Attr("location") != "Room 12" {
		t.Fatalf("location = %v, want Room 12", it.Attr("location"))
	}
	if !it.HasAddOn("Event") {
		t.Fatal("importing an Event record should install the Event classAddOn on its owning Item")
	}
}

// Importing two Event records for the same Item installs the Event
// classAddOn only once: the second import must not error or reinstall it
// (translator.Extension's install-once contract, exercised end to end).
func TestImportEventRecordTwiceInstallsAddOnOnce(t *testing.T) {
	items, _, tr := newWiredTranslator(t)

	first, err := EventClass.Make("U1", "2026-06-01T10:00:00Z", "1.50", "Room 12")
	if err != nil {
		t.Fatalf("Make(Event): %v", err)
	}
	if err := tr.ImportRecords(mustDiff(t, []*record.Record{first.(*record.Record)}, nil)); err != nil {
		t.Fatalf("ImportRecords (first): %v", err)
	}

	second, err := EventClass.Make("U1", registry.NoChange, registry.NoChange, "Room 14")
	if err != nil {
		t.Fatalf("Make(Event): %v", err)
	}
	if err := tr.ImportRecords(mustDiff(t, []*record.Record{second.(*record.Record)}, nil)); err != nil {
		t.Fatalf("ImportRecords (second): %v", err)
	}

	it, ok := items.Get("u1")
	if !ok {
		t.Fatal("owning item u1 should exist")
	}
	if it.Attr("location") != "Room 14" {
		t.Fatalf("location = %v, want Room 14 after the second import", it.Attr("location"))
	}
	if !it.HasAddOn("Event") {
		t.Fatal("Event classAddOn should still be installed")
	}
}

// ShareClass.Make may omit its trailing "mode" field, falling back to its
// declared default — exercised through a real importer, not just Make
// directly.
func TestImportShareRecordAppliesModeDefault(t *testing.T) {
	items, _, tr := newWiredTranslator(t)

	rec, err := ShareClass.Make("U1", "my-share")
	if err != nil {
		t.Fatalf("Make(Share) with omitted mode: %v", err)
	}
	r := rec.(*record.Record)
	if err := tr.ImportRecords(mustDiff(t, []*record.Record{r}, nil)); err != nil {
		t.Fatalf("ImportRecords: %v", err)
	}

	it, ok := items.Get("u1")
	if !ok {
		t.Fatal("owning item u1 should have been created")
	}
	if it.Attr("mode") != "put" {
		t.Fatalf("mode = %v, want the declared default %q", it.Attr("mode"), "put")
	}
}

// Deletion with no registered deleter (ItemClass) is silently ignored —
// SPEC_FULL.md §7's "unknown handler is ignored, not rejected" applies
// symmetrically to deleters.
func TestImportRecordsIgnoresExclusionWithNoDeleter(t *testing.T) {
	items, _, tr := newWiredTranslator(t)

	rec, err := ItemClass.Make("U1", "Hello", "World", registry.NoChange)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	r := rec.(*record.Record)
	if err := tr.ImportRecords(mustDiff(t, []*record.Record{r}, nil)); err != nil {
		t.Fatalf("ImportRecords(create): %v", err)
	}
	if err := tr.ImportRecords(mustDiff(t, nil, []*record.Record{r})); err != nil {
		t.Fatalf("ImportRecords(exclude, no deleter): %v", err)
	}
	if _, ok := items.Get("u1"); !ok {
		t.Fatal("item should still exist: ItemClass has no registered deleter")
	}
}

// Deletion with a registered deleter (CAARecordClass) actually removes the
// underlying state.
func TestImportRecordsAppliesDeleterWhenRegistered(t *testing.T) {
	_, dns, tr := newWiredTranslator(t)

	rec, err := CAARecordClass.Make("example.com", "@", "issue", "letsencrypt.org", int64(0))
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	r := rec.(*record.Record)
	if err := tr.ImportRecords(mustDiff(t, []*record.Record{r}, nil)); err != nil {
		t.Fatalf("ImportRecords(create): %v", err)
	}
	if _, ok := dns.Get("example.com", "@", "issue"); !ok {
		t.Fatal("CAA entry should have been created")
	}
	if err := tr.ImportRecords(mustDiff(t, nil, []*record.Record{r})); err != nil {
		t.Fatalf("ImportRecords(exclude): %v", err)
	}
	if _, ok := dns.Get("example.com", "@", "issue"); ok {
		t.Fatal("CAA entry should have been removed by the registered deleter")
	}
}

// Scenario B (catalogue-level): export round-trips a CAA entry back into a
// record with the same field values it was stored with.
func TestExportCAARecordsRoundTrips(t *testing.T) {
	_, dns, tr := newWiredTranslator(t)

	dns.Put(CAAEntry{Zone: "example.com", Name: "@", Tag: "issue", Value: "letsencrypt.org", Flag: 128})
	exported, err := ExportCAARecords(tr, dns, "example.com", "@")
	if err != nil {
		t.Fatalf("ExportCAARecords: %v", err)
	}
	if len(exported) != 1 {
		t.Fatalf("got %d records, want 1", len(exported))
	}
	if exported[0].Value(4) != "letsencrypt.org" {
		t.Fatalf("value = %v, want letsencrypt.org", exported[0].Value(4))
	}
	if exported[0].Value(5) != int64(128) {
		t.Fatalf("flag = %v, want 128", exported[0].Value(5))
	}
}

// Import-then-export round trip through the full wired translator: what
// comes out for a zone/name matches what was put in via ImportRecords.
func TestCAAImportThenExportRoundTrip(t *testing.T) {
	_, dns, tr := newWiredTranslator(t)

	rec, err := CAARecordClass.Make("example.org", "www", "issuewild", "digicert.com", int64(1))
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	r := rec.(*record.Record)
	if err := tr.ImportRecords(mustDiff(t, []*record.Record{r}, nil)); err != nil {
		t.Fatalf("ImportRecords: %v", err)
	}

	exported, err := ExportCAARecords(tr, dns, "example.org", "www")
	if err != nil {
		t.Fatalf("ExportCAARecords: %v", err)
	}
	if len(exported) != 1 || !exported[0].Equal(r) {
		t.Fatalf("round trip mismatch: got %v, want %v", exported, r)
	}
}

func mustDiff(t *testing.T, incl, excl []*record.Record) *recordset.Diff {
	t.Helper()
	d, err := recordset.NewDiff(incl, excl)
	if err != nil {
		t.Fatalf("NewDiff: %v", err)
	}
	return d
}
