// Command recsync-explain renders the records a CAA-record zone import
// would apply, plus any field-level conflicts, color-coded the way a
// terraform plan summary highlights additions versus changes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"recordsync/catalogue"
	"recordsync/record"
	"recordsync/recordset"
	"recordsync/translator"
)

func main() {
	zone := flag.String("zone", "example.com", "DNS zone to reconcile")
	name := flag.String("name", "@", "record name within the zone")
	flag.Parse()

	items := catalogue.NewItemStore()
	dns := catalogue.NewCAARecordStore()
	tr, err := catalogue.NewTranslator("urn:recordsync:translator:explain", 1, "recsync-explain session", items, dns)
	if err != nil {
		fail(err)
	}

	// Seed the store with a record the "incoming" side will collide with,
	// purely so there's something interesting to explain.
	dns.Put(catalogue.CAAEntry{Zone: *zone, Name: *name, Tag: "issue", Value: "letsencrypt.org", Flag: 0})

	existing, err := catalogue.ExportCAARecords(tr, dns, *zone, *name)
	if err != nil {
		fail(err)
	}

	incomingRec, err := catalogue.CAARecordClass.Make(*zone, *name, "issue", "digicert.com", int64(128))
	if err != nil {
		fail(err)
	}
	incomingRecord, ok := incomingRec.(*record.Record)
	if !ok {
		fmt.Println("no change to apply")
		return
	}

	a, err := recordset.NewDiff([]*record.Record{incomingRecord}, nil)
	if err != nil {
		fail(err)
	}
	b, err := recordset.NewDiff(existing, nil)
	if err != nil {
		fail(err)
	}
	merged, err := a.Union(b)
	if err != nil {
		fail(err)
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, r := range merged.Inclusions() {
		fmt.Println(green("+ " + r.String()))
	}
	for _, r := range merged.Exclusions() {
		fmt.Println(red("- " + r.String()))
	}
	for _, c := range translator.ExplainConflicts(merged) {
		fmt.Println(yellow("! " + c.String()))
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "recsync-explain:", err)
	os.Exit(1)
}
