package translator

import (
	"recordsync/record"
	"recordsync/registry"
)

// smartSetAttr assigns value to name on setter using the three-valued
// smart-set rule (spec.md §6.2): NoChange leaves the attribute untouched,
// Inherit resets it to its InitialValue, and any other value is assigned
// directly. Grounded on eim.py's Item.setAttributeValue dispatch on
// NoChange/Inherit sentinels.
func smartSetAttr(setter AttrSetter, name string, value interface{}) error {
	switch value {
	case registry.NoChange:
		return nil
	case registry.Inherit:
		initial, err := setter.InitialValue(name)
		if err != nil {
			return err
		}
		return setter.SetAttr(name, initial)
	default:
		return setter.SetAttr(name, value)
	}
}

// smartSetAll applies every non-key field of r onto setter via
// smartSetAttr, in field order. A typical ImporterFunc is little more than
// "resolve the item, then smartSetAll its record".
func smartSetAll(setter AttrSetter, r *record.Record) error {
	for _, f := range r.Class().Fields() {
		if f.IsKey() {
			continue
		}
		if err := smartSetAttr(setter, f.Name(), r.Value(f.Offset())); err != nil {
			return err
		}
	}
	return nil
}

// SmartSetAll is the exported form of smartSetAll, for ImporterFunc
// implementations living outside this package.
func SmartSetAll(setter AttrSetter, r *record.Record) error {
	return smartSetAll(setter, r)
}

// WithItemForUUID resolves uuid to an Item via factory and runs fn against
// it. If factory reports the item doesn't exist yet (ItemForUUID returns a
// nil Item and a nil error — the "not created yet, but a forward reference
// is fine" case), the UUID is queued as a forward reference instead of
// running fn, to be revisited once the referenced item actually shows up.
// Any non-nil error from ItemForUUID is returned as-is. Grounded on
// eim.py's withItemForUUID.
func (t *Translator) WithItemForUUID(factory ItemFactory, uuid string, fn func(Item) error) error {
	item, err := factory.ItemForUUID(uuid)
	if err != nil {
		return err
	}
	if item == nil {
		t.QueueForwardReference(uuid, nil)
		return nil
	}
	t.ResolveForwardReference(uuid)
	return fn(item)
}

// AddOnFactory resolves (creating if necessary) the add-on ext wants to
// install itself as, ensuring Extension.Add runs at most once per item.
func AddOnFactory(ext Extension) error {
	if ext.InstalledOn(ext.Item()) {
		return nil
	}
	return ext.Add()
}

// WithAddOnForUUID resolves uuid to an Item exactly as WithItemForUUID does,
// then ensures makeExt's add-on is installed on it (via AddOnFactory) before
// running fn against both. An install failure is captured via recordFailure,
// the same failure slot ImportRecord clears after each record, and returned
// without running fn. Grounded on eim.py's EIM extension pattern of
// installing an Extension on first reference during item_for_uuid
// (SPEC_FULL.md §4.8).
func (t *Translator) WithAddOnForUUID(factory ItemFactory, uuid string, makeExt func(Item) Extension, fn func(Item, Extension) error) error {
	return t.WithItemForUUID(factory, uuid, func(it Item) error {
		ext := makeExt(it)
		if err := AddOnFactory(ext); err != nil {
			t.recordFailure(err)
			return err
		}
		return fn(it, ext)
	})
}
