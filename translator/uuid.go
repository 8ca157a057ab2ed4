package translator

import (
	"strings"

	uuid "github.com/hashicorp/go-uuid"
)

// NormalizeUUIDString lowercases only the portion of uuidOrAlias before the
// first colon, leaving any ":recurrence_id" suffix untouched. Exact port of
// eim.py's normalize_uuid_string (SPEC_FULL.md §12.1): the source partitions
// on ":" and lowercases only the head.
func NormalizeUUIDString(uuidOrAlias string) string {
	idx := strings.IndexByte(uuidOrAlias, ':')
	if idx < 0 {
		return strings.ToLower(uuidOrAlias)
	}
	return strings.ToLower(uuidOrAlias[:idx]) + uuidOrAlias[idx:]
}

// NewUUID generates a fresh, lowercase, hyphenated UUID string for a
// newly-minted item — called by an ItemFactory.ItemForUUID implementation
// (catalogue.ItemStore's, for one) when it's asked to resolve an empty
// UUID, the Go stand-in for eim.py's EIM extension minting a uuid4() the
// first time an item shows up with none of its own.
func NewUUID() (string, error) {
	return uuid.GenerateUUID()
}
