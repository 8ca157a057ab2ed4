// Package tfbridge adapts a catalogue record class onto a Terraform SDK
// schema.Resource, with CRUD delegating to a translator.Translator instead
// of a hand-rolled API client — the same CRUD shape
// resource/strategies/caa_record.go used, now backed by the record/diff
// algebra instead of a direct Reg.ru API call (see DESIGN.md).
package tfbridge

import (
	"fmt"
	"sort"

	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"
	"github.com/mitchellh/mapstructure"

	"recordsync/catalogue"
	"recordsync/record"
	"recordsync/recordset"
	"recordsync/translator"
)

// CAAEntryInput is the shape mapstructure decodes one element of the
// "record" list attribute into — the tfbridge analogue of the teacher's own
// hand-unpacked CAARecord struct (resource/strategies/caa_record.go's
// parseCAARecords), but driven by a real decoding library instead of manual
// type assertions.
type CAAEntryInput struct {
	Flag  int    `mapstructure:"flag"`
	Tag   string `mapstructure:"tag"`
	Value string `mapstructure:"value"`
}

func decodeCAAEntries(raw []interface{}) ([]CAAEntryInput, error) {
	var out []CAAEntryInput
	if err := mapstructure.Decode(raw, &out); err != nil {
		return nil, fmt.Errorf("tfbridge: decoding CAA records: %w", err)
	}
	return out, nil
}

// Backend is the minimal collaborator surface CAAResource needs from a
// provider's configured meta value — the tfbridge analogue of the
// teacher's own base.CachedClientInterface meta type assertion. A provider
// normally backs this with one shared translator.Translator plus store per
// configured session, the way base.CachedClientInterface backed a shared
// *CachedClient per configured provider instance.
type Backend interface {
	CAATranslator() *translator.Translator
	CAAStore() *catalogue.CAARecordStore
}

// CAASchema is the "record" attribute shape shared by CAAResource and any
// caller that needs to declare it statically (e.g. a provider's
// ResourcesMap, which needs a *schema.Resource before a Backend exists).
func CAASchema() map[string]*schema.Schema {
	return map[string]*schema.Schema{
		"zone": {Type: schema.TypeString, Required: true, ForceNew: true},
		"name": {Type: schema.TypeString, Required: true, ForceNew: true},
		"record": {
			Type:     schema.TypeList,
			Required: true,
			Elem: &schema.Resource{
				Schema: map[string]*schema.Schema{
					"flag":  {Type: schema.TypeInt, Optional: true, Default: 0},
					"tag":   {Type: schema.TypeString, Required: true},
					"value": {Type: schema.TypeString, Required: true},
				},
			},
		},
	}
}

// CAAResource declares the "recordsync_caa_record"-shaped schema.Resource,
// identical in surface to the teacher's own CAA resource, whose Create/
// Read/Update/Delete now build a recordset.Diff and hand it to the
// meta-supplied Backend's translator/store instead of calling a DNS API
// directly.
func CAAResource() *schema.Resource {
	return &schema.Resource{
		Schema: CAASchema(),
		Create: func(d *schema.ResourceData, meta interface{}) error {
			b := meta.(Backend)
			return caaUpsert(b.CAATranslator(), b.CAAStore(), d)
		},
		Read: func(d *schema.ResourceData, meta interface{}) error {
			b := meta.(Backend)
			return caaRead(b.CAATranslator(), b.CAAStore(), d)
		},
		Update: func(d *schema.ResourceData, meta interface{}) error {
			b := meta.(Backend)
			return caaUpsert(b.CAATranslator(), b.CAAStore(), d)
		},
		Delete: func(d *schema.ResourceData, meta interface{}) error {
			b := meta.(Backend)
			return caaDelete(b.CAATranslator(), b.CAAStore(), d)
		},
	}
}

func caaUpsert(t *translator.Translator, store *catalogue.CAARecordStore, d *schema.ResourceData) error {
	zone := d.Get("zone").(string)
	name := d.Get("name").(string)
	raw := d.Get("record").([]interface{})

	entries, err := decodeCAAEntries(raw)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("at least one CAA record must be specified")
	}

	var wanted []*record.Record
	for _, e := range entries {
		rec, err := catalogue.CAARecordClass.Make(zone, name, e.Tag, e.Value, int64(e.Flag))
		if err != nil {
			return fmt.Errorf("failed to build CAA record %s: %w", e.Value, err)
		}
		if r, ok := rec.(*record.Record); ok {
			wanted = append(wanted, r)
		}
	}

	existing, err := catalogue.ExportCAARecords(t, store, zone, name)
	if err != nil {
		return err
	}

	wantedSet, err := recordset.NewSet(wanted...)
	if err != nil {
		return err
	}
	existingSet, err := recordset.NewSet(existing...)
	if err != nil {
		return err
	}
	diff, err := wantedSet.Subtract(existingSet)
	if err != nil {
		return err
	}

	if err := t.ImportRecords(diff); err != nil {
		return fmt.Errorf("failed to apply CAA records for %s.%s: %w", name, zone, err)
	}

	d.SetId(fmt.Sprintf("%s/%s", zone, name))
	return caaRead(t, store, d)
}

func caaRead(t *translator.Translator, store *catalogue.CAARecordStore, d *schema.ResourceData) error {
	zone := d.Get("zone").(string)
	name := d.Get("name").(string)

	entries := store.ForName(zone, name)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Tag < entries[j].Tag })

	out := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]interface{}{"flag": e.Flag, "tag": e.Tag, "value": e.Value})
	}
	return d.Set("record", out)
}

func caaDelete(t *translator.Translator, store *catalogue.CAARecordStore, d *schema.ResourceData) error {
	zone := d.Get("zone").(string)
	name := d.Get("name").(string)

	existing, err := catalogue.ExportCAARecords(t, store, zone, name)
	if err != nil {
		return err
	}
	existingSet, err := recordset.NewSet(existing...)
	if err != nil {
		return err
	}
	emptySet, err := recordset.NewSet()
	if err != nil {
		return err
	}
	diff, err := emptySet.Subtract(existingSet)
	if err != nil {
		return err
	}
	return t.ImportRecords(diff)
}
