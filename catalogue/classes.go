package catalogue

import "recordsync/record"

func must(f *record.Field, err error) *record.Field {
	if err != nil {
		panic(err)
	}
	return f
}

func mustClass(c *record.Class, err error) *record.Class {
	if err != nil {
		panic(err)
	}
	return c
}

// ItemField is ItemClass's key field: every dependent record class below
// declares its own key field typed as ItemField, so depsort.Sorter's
// RequiresKeys walk knows an Event/Note/Mail/Share/Account/Prefs record
// depends on its owning Item record arriving first — the same "itemUUID
// typed as ItemRecord.uuid" shape eim.py's own dependent record classes use.
var ItemField = must(record.NewKeyField(record.FieldSpec{Type: UUIDType, Title: "UUID"}))

var ItemClass = mustClass(record.NewClass(
	"urn:recordsync:class:item", "Item",
	record.FieldDecl{Name: "uuid", Field: ItemField},
	record.FieldDecl{Name: "title", Field: must(record.NewField(record.FieldSpec{Type: TitleType, Title: "Title"}))},
	record.FieldDecl{Name: "body", Field: must(record.NewField(record.FieldSpec{Type: BodyType, Title: "Body"}))},
	record.FieldDecl{Name: "createdOn", Field: must(record.NewField(record.FieldSpec{Type: TimestampType, Title: "Created On"}))},
))

var NoteClass = mustClass(record.NewClass(
	"urn:recordsync:class:note", "Note",
	record.FieldDecl{Name: "itemUUID", Field: must(record.NewKeyField(record.FieldSpec{Type: ItemField, Title: "Item"}))},
	record.FieldDecl{Name: "icalUID", Field: must(record.NewField(record.FieldSpec{Type: TagType, Title: "iCal UID"}))},
))

var EventClass = mustClass(record.NewClass(
	"urn:recordsync:class:event", "Event",
	record.FieldDecl{Name: "itemUUID", Field: must(record.NewKeyField(record.FieldSpec{Type: ItemField, Title: "Item"}))},
	record.FieldDecl{Name: "startTime", Field: must(record.NewField(record.FieldSpec{Type: TimestampType, Title: "Start Time"}))},
	record.FieldDecl{Name: "duration", Field: must(record.NewField(record.FieldSpec{Type: DurationType, Title: "Duration (hours)"}))},
	record.FieldDecl{Name: "location", Field: must(record.NewField(record.FieldSpec{Type: TitleType, Title: "Location"}))},
))

var MailMessageClass = mustClass(record.NewClass(
	"urn:recordsync:class:mailmessage", "MailMessage",
	record.FieldDecl{Name: "itemUUID", Field: must(record.NewKeyField(record.FieldSpec{Type: ItemField, Title: "Item"}))},
	record.FieldDecl{Name: "subject", Field: must(record.NewField(record.FieldSpec{Type: TitleType, Title: "Subject"}))},
	record.FieldDecl{Name: "dateSent", Field: must(record.NewField(record.FieldSpec{Type: TimestampType, Title: "Date Sent"}))},
))

var ShareClass = mustClass(record.NewClass(
	"urn:recordsync:class:share", "Share",
	record.FieldDecl{Name: "itemUUID", Field: must(record.NewKeyField(record.FieldSpec{Type: ItemField, Title: "Item"}))},
	record.FieldDecl{Name: "shareName", Field: must(record.NewField(record.FieldSpec{Type: TagType, Title: "Share Name"}))},
	record.FieldDecl{Name: "mode", Field: must(record.NewField(record.FieldSpec{Type: TagType, Title: "Mode", Default: "put"}))},
))

var AccountClass = mustClass(record.NewClass(
	"urn:recordsync:class:account", "Account",
	record.FieldDecl{Name: "itemUUID", Field: must(record.NewKeyField(record.FieldSpec{Type: ItemField, Title: "Item"}))},
	record.FieldDecl{Name: "host", Field: must(record.NewField(record.FieldSpec{Type: TitleType, Title: "Host"}))},
	record.FieldDecl{Name: "port", Field: must(record.NewField(record.FieldSpec{Type: PortType, Title: "Port"}))},
))

var PrefsClass = mustClass(record.NewClass(
	"urn:recordsync:class:prefs", "Prefs",
	record.FieldDecl{Name: "itemUUID", Field: must(record.NewKeyField(record.FieldSpec{Type: ItemField, Title: "Item"}))},
	record.FieldDecl{Name: "timezone", Field: must(record.NewField(record.FieldSpec{Type: TagType, Title: "Timezone", Default: "UTC"}))},
))

// CAARecordClass is kept from this project's own former DNS-record domain
// (resource/strategies/caa_record.go's CAARecord struct), reshaped into a
// record class keyed by zone+name+tag so multiple CAA records on the same
// name compare and merge independently per tag — unlike the teacher's own
// flattened []CAARecord-per-resource list.
var CAARecordClass = mustClass(record.NewClass(
	"urn:recordsync:class:caa-record", "CAARecord",
	record.FieldDecl{Name: "zone", Field: must(record.NewKeyField(record.FieldSpec{Type: DNSNameType, Title: "Zone"}))},
	record.FieldDecl{Name: "name", Field: must(record.NewKeyField(record.FieldSpec{Type: DNSNameType, Title: "Name"}))},
	record.FieldDecl{Name: "tag", Field: must(record.NewKeyField(record.FieldSpec{Type: TagType, Title: "Tag"}))},
	record.FieldDecl{Name: "value", Field: must(record.NewField(record.FieldSpec{Type: TitleType, Title: "Value"}))},
	record.FieldDecl{Name: "flag", Field: must(record.NewField(record.FieldSpec{Type: FlagType, Title: "Flag", Default: 0}))},
))
