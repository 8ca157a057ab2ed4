package record

import (
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"recordsync/registry"
)

func testItemClass(t *testing.T, suffix string) (*Class, *Field, *Field, *Field) {
	t.Helper()
	uuidType, err := registry.NewText("urn:recordsync:test:uuid:"+suffix, 36)
	if err != nil {
		t.Fatalf("NewText: %v", err)
	}
	titleType, err := registry.NewText("urn:recordsync:test:title:"+suffix, 256)
	if err != nil {
		t.Fatalf("NewText: %v", err)
	}
	intType, err := registry.NewInt("urn:recordsync:test:int:" + suffix)
	if err != nil {
		t.Fatalf("NewInt: %v", err)
	}

	uuidField, err := NewKeyField(FieldSpec{Type: uuidType, Title: "UUID"})
	if err != nil {
		t.Fatalf("NewKeyField: %v", err)
	}
	titleField, err := NewField(FieldSpec{Type: titleType, Title: "Title"})
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	triageField, err := NewField(FieldSpec{Type: titleType, Title: "Triage"})
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	readField, err := NewField(FieldSpec{Type: intType, Title: "Read"})
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}

	cls, err := NewClass("urn:recordsync:test:item:"+suffix, "Item",
		FieldDecl{Name: "uuid", Field: uuidField},
		FieldDecl{Name: "title", Field: titleField},
		FieldDecl{Name: "triage", Field: triageField},
		FieldDecl{Name: "read", Field: readField},
	)
	if err != nil {
		t.Fatalf("NewClass: %v", err)
	}
	return cls, uuidField, titleField, readField
}

func mustMake(t *testing.T, cls *Class, vals ...interface{}) *Record {
	t.Helper()
	v, err := cls.Make(vals...)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	r, ok := v.(*Record)
	if !ok {
		t.Fatalf("Make collapsed to %v, expected a Record", v)
	}
	return r
}

// Law 1: a - a = NoChange.
func TestSubtractSelfIsNoChange(t *testing.T) {
	cls, _, _, _ := testItemClass(t, "law1")
	a := mustMake(t, cls, "U", "A", registry.NoChange, int64(0))
	got, err := a.Subtract(a)
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if got != registry.NoChange {
		t.Fatalf("a - a = %v, want NoChange", got)
	}
}

// Law 2: a + (b - a) = b (patch round-trip).
func TestAddSubtractRoundTrip(t *testing.T) {
	cls, _, _, _ := testItemClass(t, "law2")
	a := mustMake(t, cls, "U", "old", "now", int64(1))
	b := mustMake(t, cls, "U", "A", "now", int64(0))

	diff, err := b.Subtract(a)
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	diffRec, ok := diff.(*Record)
	if !ok {
		t.Fatalf("b - a collapsed to %v, expected a Record", diff)
	}
	got, err := a.Add(diffRec)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !got.Equal(b) {
		t.Fatalf("a + (b - a) = %s, want %s", got.String(), b.String())
	}
}

// Law 3: b + (a - b) = a when a != b; b - b = NoChange.
func TestSubtractThenAddBack(t *testing.T) {
	cls, _, _, _ := testItemClass(t, "law3")
	a := mustMake(t, cls, "U", "A", "now", int64(0))
	b := mustMake(t, cls, "U", "old", "now", int64(1))

	diff, err := a.Subtract(b)
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	diffRec := diff.(*Record)
	got, err := b.Add(diffRec)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !got.Equal(a) {
		t.Fatalf("b + (a - b) = %s, want %s", got.String(), a.String())
	}

	selfDiff, err := b.Subtract(b)
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if selfDiff != registry.NoChange {
		t.Fatalf("b - b = %v, want NoChange", selfDiff)
	}
}

// Law 4 & 5: merge is idempotent and commutative.
func TestMergeIdempotentAndCommutative(t *testing.T) {
	cls, _, _, _ := testItemClass(t, "law45")
	a := mustMake(t, cls, "U", "A", "now", int64(0))
	b := mustMake(t, cls, "U", registry.NoChange, registry.NoChange, registry.NoChange)

	selfMerge, err := a.Merge(a)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !selfMerge.(*Record).Equal(a) {
		t.Fatalf("a | a != a")
	}

	ab, err := a.Merge(b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	ba, err := b.Merge(a)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !ab.(*Record).Equal(ba.(*Record)) {
		t.Fatalf("a | b != b | a")
	}
}

// Law 6: merging conflicting non-key values yields NoChange at those
// positions (and the whole record collapses to NoChange if every non-key
// position conflicts).
func TestMergeConflictCollapses(t *testing.T) {
	cls, _, _, _ := testItemClass(t, "law6")
	a := mustMake(t, cls, "U", "A", registry.NoChange, registry.NoChange)
	b := mustMake(t, cls, "U", "B", registry.NoChange, registry.NoChange)

	merged, err := a.Merge(b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged != registry.NoChange {
		t.Fatalf("conflicting merge = %v, want NoChange", merged)
	}
}

// Scenario A: partial update, full apply.
func TestScenarioPartialUpdateFullApply(t *testing.T) {
	cls, _, _, _ := testItemClass(t, "scenarioA")
	incoming := mustMake(t, cls, "U", "A", registry.NoChange, int64(0))
	current := mustMake(t, cls, "U", "old", "now", int64(1))

	got, err := current.Add(incoming)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	want := mustMake(t, cls, "U", "A", "now", int64(0))
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got.String(), want.String())
	}
}

// Scenario B: subtract round-trip.
func TestScenarioSubtractRoundTrip(t *testing.T) {
	cls, _, _, _ := testItemClass(t, "scenarioB")
	a := mustMake(t, cls, "U", "A", "now", int64(0))
	b := mustMake(t, cls, "U", "old", "earlier", int64(1))

	diff, err := a.Subtract(b)
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	diffRec := diff.(*Record)
	got, err := b.Add(diffRec)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !got.Equal(a) {
		t.Fatalf("b += (a - b) = %s, want %s", got.String(), a.String())
	}
}

func TestKeyMismatchErrors(t *testing.T) {
	cls, _, _, _ := testItemClass(t, "keymismatch")
	a := mustMake(t, cls, "U1", "A", registry.NoChange, int64(0))
	b := mustMake(t, cls, "U2", "B", registry.NoChange, int64(0))
	if _, err := a.Subtract(b); err == nil {
		t.Fatal("expected key mismatch error, got nil")
	}
	if _, err := a.Merge(b); err == nil {
		t.Fatal("expected key mismatch error, got nil")
	}
}

func TestExplainYieldsChangedNonKeyFields(t *testing.T) {
	cls, _, _, _ := testItemClass(t, "explain")
	r := mustMake(t, cls, "U", "A", registry.NoChange, int64(0))
	entries := r.Explain()
	if len(entries) != 2 {
		t.Fatalf("Explain returned %d entries, want 2 (title, read)", len(entries))
	}
	var gotTitles []string
	for _, e := range entries {
		gotTitles = append(gotTitles, e.Title)
	}
	sort.Strings(gotTitles)
	wantTitles := []string{"Read", "Title"}
	if diff := cmp.Diff(wantTitles, gotTitles); diff != "" {
		t.Fatalf("Explain titles mismatch (-want +got):\n%s", diff)
	}
}

func TestRequiresKeysEmptyWithNoForeignKeyFields(t *testing.T) {
	cls, _, _, _ := testItemClass(t, "requireskeys")
	r := mustMake(t, cls, "U", "A", registry.NoChange, int64(0))
	if got := r.RequiresKeys(); len(got) != 0 {
		t.Fatalf("RequiresKeys() = %v, want empty (no foreign-key fields declared)", got)
	}
}

func TestValuesEqualHandlesTimeAndBytes(t *testing.T) {
	now := time.Now()
	if !valuesEqual(now, now) {
		t.Fatal("identical time.Time should be equal")
	}
	if !valuesEqual([]byte("abc"), []byte("abc")) {
		t.Fatal("identical []byte should be equal")
	}
	if valuesEqual([]byte("abc"), []byte("abd")) {
		t.Fatal("different []byte should not be equal")
	}
}
