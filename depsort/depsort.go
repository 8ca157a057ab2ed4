// Package depsort implements spec.md's C6 (dependency-aware ordering): a
// one-pass sort that releases records only once the records their keys
// depend on (Record.RequiresKeys) have already been released, tolerating
// unresolved/cyclic dependencies by walking up to a parent key instead of
// failing. Grounded on eim.py's sort_records (see DESIGN.md).
package depsort

import (
	"github.com/hashicorp/go-hclog"

	"recordsync/record"
)

// Sorter holds the incremental state of one sort pass. Unlike eim.py's
// generator-based sort_records, Sorter is push-based: the natural Go shape
// for a streaming, allocation-light, single-threaded algorithm (spec.md §5
// doesn't ask for concurrent sorting).
type Sorter struct {
	seen    map[record.Key]bool
	waiting map[record.Key][]*pending
	log     hclog.Logger
}

type pending struct {
	remaining map[record.Key]bool
	rec       *record.Record
}

// NewSorter builds an empty Sorter. A nil logger falls back to
// hclog.Default(), the same role the teacher's package-level log.Printf
// calls play.
func NewSorter(log hclog.Logger) *Sorter {
	if log == nil {
		log = hclog.Default().Named("recordsync.depsort")
	}
	return &Sorter{
		seen:    map[record.Key]bool{},
		waiting: map[record.Key][]*pending{},
		log:     log,
	}
}

// Push feeds one record into the sort and returns the records that become
// releasable as an immediate result (r itself, if its dependencies are
// already all seen, plus any records that were waiting specifically on r's
// key). Records whose dependencies aren't yet satisfied are held until a
// later Push or Flush resolves them.
func (s *Sorter) Push(r *record.Record) []*record.Record {
	deps := map[record.Key]bool{}
	for _, k := range r.RequiresKeys() {
		if !s.seen[k] {
			deps[k] = true
		}
	}
	if len(deps) == 0 {
		out := []*record.Record{r}
		return append(out, s.release(r.Key())...)
	}
	p := &pending{remaining: deps, rec: r}
	for k := range deps {
		s.waiting[k] = append(s.waiting[k], p)
	}
	return nil
}

// release marks key (and transitively, every key it unblocks) as seen, and
// returns every record that becomes fully resolved as a result, in
// resolution order.
func (s *Sorter) release(k record.Key) []*record.Record {
	var out []*record.Record
	queue := []record.Key{k}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if s.seen[cur] {
			continue
		}
		s.seen[cur] = true
		pendings, ok := s.waiting[cur]
		if !ok {
			continue
		}
		delete(s.waiting, cur)
		for _, p := range pendings {
			delete(p.remaining, cur)
			if len(p.remaining) == 0 {
				out = append(out, p.rec)
				queue = append(queue, p.rec.Key())
			}
		}
	}
	return out
}

// highestUnseenAncestor walks k -> parentOf(k) -> ... until the chain runs
// out of foreign-key fields to follow, or reaches an ancestor that's
// already seen, returning the last unseen key in the chain. Grounded on
// eim.py's highest_unseen_parent / parent_of.
func (s *Sorter) highestUnseenAncestor(k record.Key) record.Key {
	for {
		parent, ok := parentOf(k)
		if !ok || s.seen[parent] {
			return k
		}
		k = parent
	}
}

func parentOf(k record.Key) (record.Key, bool) {
	if k.Class == nil {
		return record.Key{}, false
	}
	for _, f := range k.Class.Fields() {
		if !f.IsKey() {
			continue
		}
		if parentField, ok := f.Type().(*record.Field); ok {
			return k.WithClass(parentField.Owner()), true
		}
	}
	return record.Key{}, false
}

// Flush resolves everything still waiting after all input has been pushed,
// by repeatedly releasing the highest unseen ancestor of some outstanding
// key. If that ancestor has no direct waiters of its own (it was only a
// synthesized parent, not a real registered dependency), it's marked seen
// directly so the next pass climbs one hop further — the Go equivalent of
// the source's retry-with-taller-ancestor loop. A cycle or an ancestor walk
// that never finds a real dependency is tolerated, not an error; a [WARN]
// is logged instead (the supplemented diagnostic from SPEC_FULL.md §12.4).
func (s *Sorter) Flush() []*record.Record {
	var out []*record.Record
	for len(s.waiting) > 0 {
		var pick record.Key
		for k := range s.waiting {
			pick = k
			break
		}
		ancestor := s.highestUnseenAncestor(pick)
		released := s.release(ancestor)
		if len(released) == 0 {
			s.log.Warn("dependency sort: releasing unresolved key without a registered dependent; tolerating a cycle or missing reference", "key", ancestor.String())
			s.seen[ancestor] = true
		}
		out = append(out, released...)
	}
	return out
}

// Sort runs a complete, non-streaming sort over a fixed slice of records:
// a convenience wrapper over Push/Flush for callers that already have the
// whole input in hand.
func Sort(records []*record.Record, log hclog.Logger) []*record.Record {
	s := NewSorter(log)
	var out []*record.Record
	for _, r := range records {
		out = append(out, s.Push(r)...)
	}
	out = append(out, s.Flush()...)
	return out
}
