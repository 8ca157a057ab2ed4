package catalogue

import (
	"fmt"
	"sync"
	"time"

	"recordsync/translator"
)

// Item is the in-memory host object model catalogue's importers/exporters
// run against — standing in for Chandler's own persistent Item, just enough
// of one to exercise translator.Item/AttrSetter/ItemFactory/
// ExportableExtensions end to end.
type Item struct {
	mu sync.Mutex

	uuid      string
	title     string
	body      string
	createdOn time.Time

	attrs     map[string]interface{}
	addons    map[string]translator.ItemAddOn
	installed map[string]bool
}

// NewItem creates a bare item for uuid, with no attributes set.
func NewItem(uuid string) *Item {
	return &Item{
		uuid:      uuid,
		attrs:     map[string]interface{}{},
		addons:    map[string]translator.ItemAddOn{},
		installed: map[string]bool{},
	}
}

// UUID implements translator.Item.
func (it *Item) UUID() string { return it.uuid }

// SetAttr implements translator.AttrSetter, dispatching the catalogue's
// well-known Item fields directly and falling everything else (add-on
// attributes) into the generic attrs bag.
func (it *Item) SetAttr(name string, value interface{}) error {
	it.mu.Lock()
	defer it.mu.Unlock()
	switch name {
	case "title":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("catalogue: Item.title wants a string, got %T", value)
		}
		it.title = s
	case "body":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("catalogue: Item.body wants a string, got %T", value)
		}
		it.body = s
	case "createdOn":
		t, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("catalogue: Item.createdOn wants a time.Time, got %T", value)
		}
		it.createdOn = t
	default:
		it.attrs[name] = value
	}
	return nil
}

// InitialValue implements translator.AttrSetter: the zero value for each
// well-known attribute, used when smart-set resets a field to Inherit.
func (it *Item) InitialValue(name string) (interface{}, error) {
	switch name {
	case "title":
		return "", nil
	case "body":
		return "", nil
	case "createdOn":
		return time.Time{}, nil
	default:
		return nil, nil
	}
}

// Attr reads back a generic (add-on) attribute, or a well-known field.
func (it *Item) Attr(name string) interface{} {
	it.mu.Lock()
	defer it.mu.Unlock()
	switch name {
	case "title":
		return it.title
	case "body":
		return it.body
	case "createdOn":
		return it.createdOn
	default:
		return it.attrs[name]
	}
}

// Title, Body and CreatedOn are convenience accessors mirroring the fields
// ItemClass's exporter reads.
func (it *Item) Title() string        { return it.Attr("title").(string) }
func (it *Item) Body() string         { return it.Attr("body").(string) }
func (it *Item) CreatedOn() time.Time { return it.Attr("createdOn").(time.Time) }

// AddOn returns the add-on registered under key, or nil.
func (it *Item) AddOn(key string) translator.ItemAddOn {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.addons[key]
}

// SetAddOn installs ext under key, marking it present for InstalledOn.
func (it *Item) SetAddOn(key string, ext translator.ItemAddOn) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.addons[key] = ext
	it.installed[key] = true
}

// HasAddOn reports whether key has already been installed on it.
func (it *Item) HasAddOn(key string) bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.installed[key]
}

// classAddOn is the translator.Extension a dependent record class (Note,
// Event, MailMessage, ...) installs on its owning Item the first time a
// record of that class is imported for it. Its Add is idempotent-by-key via
// Item.installed, and it carries no state of its own: the actual attribute
// values still land on Item.attrs via smart-set, same as before this add-on
// wrapper existed (see DESIGN.md) — classAddOn's job is only to exercise
// translator.Extension's install-once contract, not to hold data.
type classAddOn struct {
	owner *Item
	key   string
}

// Item implements translator.ItemAddOn.
func (a *classAddOn) Item() translator.Item { return a.owner }

// InstalledOn implements translator.Extension.
func (a *classAddOn) InstalledOn(item translator.Item) bool {
	return item.(*Item).HasAddOn(a.key)
}

// Add implements translator.Extension.
func (a *classAddOn) Add() error {
	a.owner.SetAddOn(a.key, a)
	return nil
}

// Extensions implements translator.ExportableExtensions.
func (it *Item) Extensions() []translator.ItemAddOn {
	it.mu.Lock()
	defer it.mu.Unlock()
	out := make([]translator.ItemAddOn, 0, len(it.addons))
	for _, a := range it.addons {
		out = append(out, a)
	}
	return out
}

// ItemStore is an in-memory translator.ItemFactory: items are created
// lazily on first reference, mirroring eim.py's item_for_uuid
// get-or-create, but never returns a nil Item — this store never defers a
// reference to a forward-reference queue, since "create on demand" makes
// every UUID immediately resolvable. A host willing to model deferred
// creation (e.g. one that must validate a UUID against an external source
// before minting an Item) would implement ItemFactory itself instead of
// using ItemStore.
type ItemStore struct {
	mu    sync.Mutex
	items map[string]*Item
}

// NewItemStore creates an empty store.
func NewItemStore() *ItemStore {
	return &ItemStore{items: map[string]*Item{}}
}

// ItemForUUID implements translator.ItemFactory. An empty uuid asks the
// store to mint a fresh one for a new item, the same request eim.py's EIM
// extension honors in item_for_uuid by generating a uuid4() when the caller
// has no UUID of its own yet to offer.
func (s *ItemStore) ItemForUUID(uuid string) (translator.Item, error) {
	norm := translator.NormalizeUUIDString(uuid)
	if norm == "" {
		fresh, err := translator.NewUUID()
		if err != nil {
			return nil, err
		}
		norm = fresh
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[norm]; ok {
		return it, nil
	}
	it := NewItem(norm)
	s.items[norm] = it
	return it, nil
}

// Get returns the *Item for uuid if the store has already created one.
func (s *ItemStore) Get(uuid string) (*Item, bool) {
	norm := translator.NormalizeUUIDString(uuid)
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[norm]
	return it, ok
}

// All returns every item the store has created, in no particular order.
func (s *ItemStore) All() []*Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	return out
}
