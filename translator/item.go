package translator

// Item is the minimal collaborator surface spec.md §6 requires from the
// hosting application's object model: something addressable by UUID that
// can carry add-ons. Everything else about "what an Item is" is left to
// the host, same as eim.py leaves items.Item's full shape to Chandler.
type Item interface {
	UUID() string
}

// ItemAddOn is an auxiliary facet attached to an Item (eim.py's
// ItemAddOn/Extension).
type ItemAddOn interface {
	Item() Item
}

// Extension is an ItemAddOn that may need to be installed on its item
// before use (eim.py's Extension.installOn/ensureInstalled pattern).
type Extension interface {
	ItemAddOn
	InstalledOn(item Item) bool
	Add() error
}

// AttrSetter lets smart-set assign or reset an item's (or add-on's)
// attributes, the Go analogue of eim.py's dynamic setattr/getattr against
// arbitrary item attributes.
type AttrSetter interface {
	SetAttr(name string, value interface{}) error
	InitialValue(name string) (interface{}, error)
}

// ItemFactory resolves an Item for a UUID, creating one if the host hasn't
// seen it before (eim.py's item_for_uuid get-or-create).
type ItemFactory interface {
	ItemForUUID(uuid string) (Item, error)
}

// ExportableExtensions is implemented by an Item that wants its add-ons
// walked during ExportItem (eim.py iterates an item's itemsForUUID-style
// extension set when exporting).
type ExportableExtensions interface {
	Extensions() []ItemAddOn
}
