package registry

// Kind is a distinguished sentinel value. Every converter and every record
// slot treats a Kind specially: it passes through conversion unchanged and
// is compared by identity (Go's == on the comparable struct), never
// confused with an ordinary typed value.
type Kind struct{ name string }

func (k Kind) String() string { return k.name }

var (
	// NoChange marks a record slot whose value is unchanged relative to
	// whatever it's being applied against.
	NoChange = Kind{"NoChange"}

	// Inherit marks a record slot whose value should be reset to the
	// target attribute's initial/default value.
	Inherit = Kind{"Inherit"}

	// Absent marks the result of a lookup that found nothing, distinct
	// from a present-but-zero value.
	Absent = Kind{"Absent"}
)

// IsSentinel reports whether v is one of the distinguished Kind values.
func IsSentinel(v interface{}) bool {
	k, ok := v.(Kind)
	return ok && (k == NoChange || k == Inherit || k == Absent)
}
