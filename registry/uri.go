package registry

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"recordsync/recerr"
)

// URIRegistry is a process-wide mapping from URI string to a schema object
// (a *TypeInfo, a *record.Class, a *filter.Filter, ...). Schema objects are
// created once, at process start, and live for the process lifetime; unlike
// the source's WeakValueDictionary, there's no need for weak references
// here (see DESIGN.md).
type URIRegistry struct {
	mu   sync.RWMutex
	objs map[string]interface{}
	log  hclog.Logger
}

// NewURIRegistry builds an empty registry. The module's constructors and
// its tests all register with Default; each test uses URIs of its own.
func NewURIRegistry() *URIRegistry {
	return &URIRegistry{
		objs: make(map[string]interface{}),
		log:  hclog.Default().Named("recordsync.registry.uri"),
	}
}

// Default is the process-wide registry used by registry.TypeInfoFor and by
// type, record-class, filter and translator construction; none of those
// constructors accepts another registry.
var Default = NewURIRegistry()

// Register associates uri with obj. Registering the same uri with the same
// object again is a no-op; registering it with a different object is a
// collision. A blank uri is accepted unless reqMsg is non-empty, in which
// case it names the requirement that was violated (e.g. "record classes
// must have a URI").
func (r *URIRegistry) Register(uri string, obj interface{}, reqMsg string) error {
	if uri == "" {
		if reqMsg != "" {
			return fmt.Errorf("%s", reqMsg)
		}
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.objs[uri]; ok {
		if existing != obj {
			return fmt.Errorf("%w: %s", recerr.ErrURICollision, uri)
		}
		return nil
	}
	r.objs[uri] = obj
	r.log.Debug("registered schema object", "uri", uri)
	return nil
}

// Lookup returns the object registered under uri, if any.
func (r *URIRegistry) Lookup(uri string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objs[uri]
	return obj, ok
}
