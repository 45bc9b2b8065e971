// Package objects is the guest side of the boundary: an object table that
// hands out stable handles for guest values, and a registry of classes the
// host can resolve, construct and invoke.
package objects

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/wasmglue/wasmglue/wire"
)

// Method implements one guest operation. For instance methods c.Self is the
// receiver; for static methods and constructors it is nil.
type Method func(c *Call) (wire.Value, error)

// Class is a guest class. New may be nil for classes only ever returned from
// other operations.
type Class struct {
	Name    string
	New     func(c *Call) (any, error)
	Methods map[string]Method
	Static  map[string]Method
}

// Ops lists every operation name of the class, sorted.
func (cls *Class) Ops() []string {
	ops := make([]string, 0, len(cls.Methods)+len(cls.Static))
	for name := range cls.Methods {
		ops = append(ops, name)
	}
	for name := range cls.Static {
		ops = append(ops, name)
	}
	slices.Sort(ops)
	return slices.Compact(ops)
}

type entry struct {
	obj any
	cls *Class
}

// Runtime holds the guest object table and module registry. Slot 0 of the
// table is never used, so handle 0 is null.
type Runtime struct {
	mu      sync.Mutex
	modules map[string]map[string]*Class
	table   []entry
	slots   map[any]wire.Handle
}

func NewRuntime() *Runtime {
	return &Runtime{
		modules: make(map[string]map[string]*Class),
		table:   make([]entry, 1),
		slots:   make(map[any]wire.Handle),
	}
}

// Register exports cls as module.cls.Name.
func (r *Runtime) Register(module string, cls *Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[module]
	if !ok {
		m = make(map[string]*Class)
		r.modules[module] = m
	}
	if _, dup := m[cls.Name]; dup {
		panic(fmt.Sprintf("objects: %s.%s registered twice", module, cls.Name))
	}
	m[cls.Name] = cls
}

// Lookup returns the class exported as module.name.
func (r *Runtime) Lookup(module, name string) (*Class, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cls, ok := r.modules[module][name]
	return cls, ok
}

// Wrap returns a reference to obj. Pointers are interned: the same pointer
// always gets the same handle. Other values get a new handle on every call.
// cls may be nil for objects without operations. A nil obj yields null.
func (r *Runtime) Wrap(cls *Class, obj any) wire.Value {
	return wire.Ref(r.intern(cls, obj))
}

func (r *Runtime) intern(cls *Class, obj any) wire.Handle {
	if obj == nil {
		return wire.NullHandle
	}
	if rv := reflect.ValueOf(obj); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return wire.NullHandle
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Only reference kinds have identity; values are exported fresh each time.
	internable := false
	switch reflect.TypeOf(obj).Kind() {
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		internable = true
	}
	if internable {
		if h, ok := r.slots[obj]; ok {
			if r.table[h].cls == nil {
				r.table[h].cls = cls
			}
			return h
		}
	}
	h := wire.Handle(len(r.table))
	r.table = append(r.table, entry{obj: obj, cls: cls})
	if internable {
		r.slots[obj] = h
	}
	return h
}

// Deref returns the object at h.
func (r *Runtime) Deref(h wire.Handle) (any, *Class, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.IsNull() || int(h) >= len(r.table) {
		return nil, nil, false
	}
	e := r.table[h]
	return e.obj, e.cls, true
}

// Len returns the number of live table entries.
func (r *Runtime) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.table) - 1
}

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
)

// Default is the runtime served by the guest plugin exports.
func Default() *Runtime {
	defaultOnce.Do(func() { defaultRuntime = NewRuntime() })
	return defaultRuntime
}

// Register exports cls on the Default runtime.
func Register(module string, cls *Class) { Default().Register(module, cls) }
