// Package catalogue declares a representative slice of record classes — an
// Item/Note/Event/Mail/Share/Account/Prefs hierarchy modeled on Chandler's
// own domain, plus a CAA-DNS-shaped class kept from this project's own
// former Terraform resource domain — and the in-memory Item model, importer
// and exporter wiring that lets translator.Translator exercise them.
// Grounded on eim.py's chandler.core/chandler.reminders/... record modules
// (SPEC_FULL.md §11's domain stack; see DESIGN.md).
package catalogue

import "recordsync/registry"

// Type URIs live under one namespace so registry.Default.Lookup never
// collides with a class or filter URI declared elsewhere.
const (
	uriUUID      = "urn:recordsync:type:uuid"
	uriTitle     = "urn:recordsync:type:title"
	uriBody      = "urn:recordsync:type:body"
	uriTimestamp = "urn:recordsync:type:timestamp"
	uriFlag      = "urn:recordsync:type:flag"
	uriTag       = "urn:recordsync:type:tag"
	uriDNSName   = "urn:recordsync:type:dns-name"
	uriDuration  = "urn:recordsync:type:duration"
	uriPort      = "urn:recordsync:type:port"
)

// TypeInfo declarations. Sizes are chosen to match what Chandler's own
// schema.xml bounds (titles/subjects at 256, bodies unbounded).
var (
	UUIDType      *registry.TypeInfo
	TitleType     *registry.TypeInfo
	BodyType      *registry.TypeInfo
	TimestampType *registry.TypeInfo
	FlagType      *registry.TypeInfo
	TagType       *registry.TypeInfo
	DNSNameType   *registry.TypeInfo
	DurationType  *registry.TypeInfo
	PortType      *registry.TypeInfo
)

func init() {
	must := func(ti *registry.TypeInfo, err error) *registry.TypeInfo {
		if err != nil {
			panic(err)
		}
		return ti
	}
	UUIDType = must(registry.NewText(uriUUID, 36))
	TitleType = must(registry.NewText(uriTitle, 256))
	BodyType = must(registry.NewClob(uriBody))
	TimestampType = must(registry.NewTimestamp(uriTimestamp))
	FlagType = must(registry.NewInt(uriFlag))
	TagType = must(registry.NewText(uriTag, 64))
	DNSNameType = must(registry.NewText(uriDNSName, 253))
	DurationType = must(registry.NewDecimal(uriDuration, 12, 2))
	PortType = must(registry.NewInt(uriPort))
}
