package catalogue

import (
	"fmt"
	"reflect"

	"recordsync/record"
	"recordsync/registry"
	"recordsync/translator"
)

func valueByName(r *record.Record, name string) interface{} {
	for _, f := range r.Class().Fields() {
		if f.Name() == name {
			return r.Value(f.Offset())
		}
	}
	panic(fmt.Sprintf("catalogue: %s has no field %q", r.Class().Name(), name))
}

// RegisterItemClasses wires ItemClass's importer/exporter onto t, backed by
// store. Call once per translator; RegisterDependentClasses then layers the
// Note/Event/Mail/Share/Account/Prefs handlers on top, all resolving their
// owning Item through the same store.
func RegisterItemClasses(t *translator.Translator, store *ItemStore) error {
	if err := t.RegisterImporter(ItemClass, func(t *translator.Translator, r *record.Record) error {
		uuid := valueByName(r, "uuid").(string)
		return t.WithItemForUUID(store, uuid, func(it translator.Item) error {
			return translator.SmartSetAll(it.(*Item), r)
		})
	}); err != nil {
		return err
	}

	itemType := reflect.TypeOf(&Item{})
	return t.RegisterExporter(itemType, nil, func(t *translator.Translator, subject interface{}) ([]*record.Record, error) {
		it := subject.(*Item)
		rec, err := ItemClass.Make(it.UUID(), it.Title(), it.Body(), it.CreatedOn())
		if err != nil {
			return nil, err
		}
		if rec == registry.NoChange {
			return nil, nil
		}
		return []*record.Record{rec.(*record.Record)}, nil
	})
}

// registerDependentImporter wires a dependent class's importer: resolve the
// owning Item via its itemUUID key field, ensure that class's classAddOn is
// installed on it (first reference only, via translator.AddOnFactory), then
// smart-set the rest of the record onto the Item. The add-on itself carries
// no attribute state — values still land on Item.attrs — it exists to mark
// "this Item has a Note/Event/... facet" and to exercise the install-once
// Extension contract spec.md §4.8 describes.
func registerDependentImporter(t *translator.Translator, cls *record.Class, store *ItemStore) error {
	key := cls.Name()
	return t.RegisterImporter(cls, func(t *translator.Translator, r *record.Record) error {
		uuid := valueByName(r, "itemUUID").(string)
		return t.WithAddOnForUUID(store, uuid,
			func(it translator.Item) translator.Extension {
				return &classAddOn{owner: it.(*Item), key: key}
			},
			func(it translator.Item, _ translator.Extension) error {
				return translator.SmartSetAll(it.(*Item), r)
			},
		)
	})
}

// RegisterDependentClasses wires Note/Event/MailMessage/Share/Account/Prefs
// importers onto t, all backed by store.
func RegisterDependentClasses(t *translator.Translator, store *ItemStore) error {
	for _, cls := range []*record.Class{NoteClass, EventClass, MailMessageClass, ShareClass, AccountClass, PrefsClass} {
		if err := registerDependentImporter(t, cls, store); err != nil {
			return err
		}
	}
	return nil
}

// RegisterCAAClass wires CAARecordClass's importer, deleter and exporter
// onto t, backed by store.
func RegisterCAAClass(t *translator.Translator, store *CAARecordStore) error {
	if err := t.RegisterImporter(CAARecordClass, func(t *translator.Translator, r *record.Record) error {
		zone := valueByName(r, "zone").(string)
		name := valueByName(r, "name").(string)
		tag := valueByName(r, "tag").(string)
		entry := CAAEntry{Zone: zone, Name: name, Tag: tag}
		if existing, ok := store.Get(zone, name, tag); ok {
			entry = existing
		}
		if v := valueByName(r, "value"); v != registry.NoChange {
			entry.Value = v.(string)
		}
		if v := valueByName(r, "flag"); v != registry.NoChange {
			entry.Flag = int(v.(int64))
		}
		store.Put(entry)
		return nil
	}); err != nil {
		return err
	}

	if err := t.RegisterDeleter(CAARecordClass, func(t *translator.Translator, r *record.Record) error {
		store.Delete(valueByName(r, "zone").(string), valueByName(r, "name").(string), valueByName(r, "tag").(string))
		return nil
	}); err != nil {
		return err
	}

	entryType := reflect.TypeOf(CAAEntry{})
	return t.RegisterExporter(entryType, nil, func(t *translator.Translator, subject interface{}) ([]*record.Record, error) {
		e := subject.(CAAEntry)
		rec, err := CAARecordClass.Make(e.Zone, e.Name, e.Tag, e.Value, int64(e.Flag))
		if err != nil {
			return nil, err
		}
		if rec == registry.NoChange {
			return nil, nil
		}
		return []*record.Record{rec.(*record.Record)}, nil
	})
}

// ExportCAARecords exports every CAA entry store holds on (zone, name)
// through t.
// CAAEntry isn't a translator.Item (it has no UUID of its own), so it's
// exported via Translator.ExportSubject directly rather than ExportItem.
func ExportCAARecords(t *translator.Translator, store *CAARecordStore, zone, name string) ([]*record.Record, error) {
	var out []*record.Record
	for _, e := range store.ForName(zone, name) {
		recs, err := t.ExportSubject(e)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

// NewTranslator declares a complete catalogue translator: every class above
// wired onto one Translator, ready for ImportRecords/ExportItem.
func NewTranslator(uri string, ver int, description string, items *ItemStore, dns *CAARecordStore) (*translator.Translator, error) {
	t, err := translator.NewTranslator(uri, ver, description, nil)
	if err != nil {
		return nil, err
	}
	if err := RegisterItemClasses(t, items); err != nil {
		return nil, err
	}
	if err := RegisterDependentClasses(t, items); err != nil {
		return nil, err
	}
	if err := RegisterCAAClass(t, dns); err != nil {
		return nil, err
	}
	return t, nil
}
