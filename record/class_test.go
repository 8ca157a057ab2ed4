package record

import (
	"testing"

	"recordsync/registry"
)

// testClassWithDefault builds a 3-field class (key, required title, an
// optional "mode" field with a declared Default) to exercise Make's
// trailing-default-application path — mirroring catalogue.ShareClass's
// shape (itemUUID, shareName, mode="put").
func testClassWithDefault(t *testing.T, suffix string) *Class {
	t.Helper()
	keyType, err := registry.NewText("urn:recordsync:test:class:key:"+suffix, 36)
	if err != nil {
		t.Fatalf("NewText: %v", err)
	}
	titleType, err := registry.NewText("urn:recordsync:test:class:title:"+suffix, 64)
	if err != nil {
		t.Fatalf("NewText: %v", err)
	}

	keyField, err := NewKeyField(FieldSpec{Type: keyType, Title: "Key"})
	if err != nil {
		t.Fatalf("NewKeyField: %v", err)
	}
	titleField, err := NewField(FieldSpec{Type: titleType, Title: "Title"})
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	modeField, err := NewField(FieldSpec{Type: titleType, Title: "Mode", Default: "put"})
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}

	cls, err := NewClass("urn:recordsync:test:class:withdefault:"+suffix, "Share",
		FieldDecl{Name: "key", Field: keyField},
		FieldDecl{Name: "title", Field: titleField},
		FieldDecl{Name: "mode", Field: modeField},
	)
	if err != nil {
		t.Fatalf("NewClass: %v", err)
	}
	return cls
}

func TestMakeAppliesTrailingDefaultWhenOmitted(t *testing.T) {
	cls := testClassWithDefault(t, "omit")
	v, err := cls.Make("k1", "Shared Doc")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	r, ok := v.(*Record)
	if !ok {
		t.Fatalf("Make collapsed to %v, expected a Record", v)
	}
	if r.Value(3) != "put" {
		t.Fatalf("mode = %v, want the declared default %q", r.Value(3), "put")
	}
}

func TestMakeExplicitValueOverridesDefault(t *testing.T) {
	cls := testClassWithDefault(t, "override")
	v, err := cls.Make("k1", "Shared Doc", "get")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	r := v.(*Record)
	if r.Value(3) != "get" {
		t.Fatalf("mode = %v, want explicit get", r.Value(3))
	}
}

func TestMakeMissingRequiredValueErrors(t *testing.T) {
	cls := testClassWithDefault(t, "missing")
	if _, err := cls.Make("k1"); err == nil {
		t.Fatal("expected an error: title has no default and was omitted")
	}
}

func TestMakeTooManyValuesErrors(t *testing.T) {
	cls := testClassWithDefault(t, "toomany")
	if _, err := cls.Make("k1", "Shared Doc", "put", "extra"); err == nil {
		t.Fatal("expected an error: more values than declared fields")
	}
}
