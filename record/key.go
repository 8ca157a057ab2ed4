package record

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Key identifies a record within its class: the class plus its key fields'
// values. Key is comparable (usable as a Go map key) by construction — its
// repr field is a deterministic encoding of the key values, built once in
// newKey, rather than carrying the raw (non-comparable-in-general) value
// slice around. See DESIGN.md, record/key.go.
type Key struct {
	Class *Class
	repr  string
}

func newKey(c *Class, vals []interface{}) Key {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = encodeKeyPart(v)
	}
	return Key{Class: c, repr: strings.Join(parts, "\x1f")}
}

func encodeKeyPart(v interface{}) string {
	switch t := v.(type) {
	case []byte:
		return "b64:" + base64.StdEncoding.EncodeToString(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// WithClass returns a Key for the same underlying key values but a
// different class. Used by depsort's parent-key walk, which swaps a
// foreign key field's owner class in for the referencing record's class
// while reusing the same positional key values — a direct (and, per
// eim.py's parent_of, deliberately naive) port of the source's `(f.type.owner,)
// + k[1:]` tuple surgery.
func (k Key) WithClass(c *Class) Key {
	return Key{Class: c, repr: k.repr}
}

// String renders the key for logging/diagnostics.
func (k Key) String() string {
	if k.Class == nil {
		return "<nil>#" + k.repr
	}
	return k.Class.Name() + "#" + k.repr
}
