package apimod

import (
	"reflect"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// InterfaceInfo describes a defined interface
type InterfaceInfo struct {
	// Type is the interface type itself
	Type reflect.Type

	// Name is the qualified type name, e.g. "memory.MemoryApiTrait"
	Name string

	// PkgPath is the import path of the defining package
	PkgPath string

	// Implementation is the dynamic type of the registered implementation,
	// nil while the interface is unimplemented
	Implementation reflect.Type
}

// Implemented reports whether an implementation has been registered
func (i InterfaceInfo) Implemented() bool {
	return i.Implementation != nil
}

// Registry maps interface types to their single implementation
type Registry interface {
	// Define records an interface type. Defining twice is an error.
	Define(iface reflect.Type) error

	// Implement records the implementation of a defined interface. An
	// interface accepts exactly one implementation.
	Implement(iface reflect.Type, impl any) error

	// Lookup returns the implementation of an interface
	Lookup(iface reflect.Type) (any, error)

	// Interfaces returns every defined interface sorted by name
	Interfaces() []InterfaceInfo
}

type registryEntry struct {
	impl     any
	implType reflect.Type
}

// inMemoryRegistry implements Registry
type inMemoryRegistry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]*registryEntry
}

// NewInMemoryRegistry creates a new in-memory registry
func NewInMemoryRegistry() Registry {
	return &inMemoryRegistry{
		entries: make(map[reflect.Type]*registryEntry),
	}
}

func (r *inMemoryRegistry) Define(iface reflect.Type) error {
	if err := checkInterface(iface); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[iface]; exists {
		return errors.Wrapf(ErrAlreadyDefined, "%s", iface)
	}
	r.entries[iface] = &registryEntry{}
	return nil
}

func (r *inMemoryRegistry) Implement(iface reflect.Type, impl any) error {
	if err := checkInterface(iface); err != nil {
		return err
	}
	if impl == nil || !reflect.TypeOf(impl).Implements(iface) {
		return errors.Wrapf(ErrInvalidImplementation, "%T for %s", impl, iface)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[iface]
	if !exists {
		return errors.WithHintf(errors.Wrapf(ErrNotDefined, "%s", iface),
			"the implementing package must import %s", iface.PkgPath())
	}
	if entry.impl != nil {
		return errors.WithHintf(errors.Wrapf(ErrAlreadyImplemented, "%s by %s", iface, entry.implType),
			"only one package may implement %s; remove the import of one of them", iface)
	}

	entry.impl = impl
	entry.implType = reflect.TypeOf(impl)
	return nil
}

func (r *inMemoryRegistry) Lookup(iface reflect.Type) (any, error) {
	r.mu.RLock()
	entry, exists := r.entries[iface]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Wrapf(ErrNotDefined, "%s", iface)
	}
	if entry.impl == nil {
		return nil, errors.WithHintf(errors.Wrapf(ErrNotImplemented, "%s", iface),
			"import the package implementing %s, usually with a blank import in main", iface)
	}
	return entry.impl, nil
}

func (r *inMemoryRegistry) Interfaces() []InterfaceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]InterfaceInfo, 0, len(r.entries))
	for iface, entry := range r.entries {
		result = append(result, InterfaceInfo{
			Type:           iface,
			Name:           iface.String(),
			PkgPath:        iface.PkgPath(),
			Implementation: entry.implType,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PkgPath != result[j].PkgPath {
			return result[i].PkgPath < result[j].PkgPath
		}
		return result[i].Name < result[j].Name
	})
	return result
}

func checkInterface(t reflect.Type) error {
	if t == nil || t.Kind() != reflect.Interface {
		return errors.Wrapf(ErrNotInterface, "%v", t)
	}
	return nil
}

// DefaultRegistry is the registry used by generated code
var DefaultRegistry = NewInMemoryRegistry()

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// DefineInterface registers T as an API interface. It is called from the
// init function of a generated definition package and panics when T is not
// an interface or is defined twice.
func DefineInterface[T any]() {
	if err := DefaultRegistry.Define(typeOf[T]()); err != nil {
		panic(err)
	}
}

// ImplInterface registers impl as the implementation of T. It is called from
// the init function of a generated implementation package and panics when T
// already has an implementation.
func ImplInterface[T any](impl T) {
	if err := DefaultRegistry.Implement(typeOf[T](), impl); err != nil {
		panic(err)
	}
}

// CallInterface returns the implementation of T. It panics with
// ErrNotImplemented when no package implementing T was linked in.
func CallInterface[T any]() T {
	impl, err := DefaultRegistry.Lookup(typeOf[T]())
	if err != nil {
		panic(err)
	}
	return impl.(T)
}

// LookupInterface returns the implementation of T registered with r
func LookupInterface[T any](r Registry) (T, bool) {
	impl, err := r.Lookup(typeOf[T]())
	if err != nil {
		var zero T
		return zero, false
	}
	typed, ok := impl.(T)
	return typed, ok
}

// Interfaces returns every interface defined in the default registry
func Interfaces() []InterfaceInfo {
	return DefaultRegistry.Interfaces()
}
