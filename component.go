package archway

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/TheBitDrifter/table"
)

// Component is anything archway can store a column of: a handle that
// has been registered with a recorded byte size. table.ElementType is
// the typed realization of that recorded size — every Go type
// registered into a schema carries its own reflect-derived size.
type Component interface {
	table.ElementType
}

// componentInfo is the registry entry behind NewComponent: a handle, its
// name, its recorded size, and the table.ElementType used to back its
// column.
type componentInfo struct {
	handle      Handle
	name        string
	size        uintptr
	elementType table.ElementType
	// goType is the reflect.Type backing elementType's column. Reactive
	// callbacks and override-from-base don't know T at compile time, so
	// they locate a row's cell by matching reflect types against
	// table.Table.Rows() (columnstore.go's cellFor).
	goType reflect.Type
}

// componentRegistry maps names and handles to componentInfo, making
// registration idempotent: re-registering the same name returns the
// same handle, but re-registering with a different size is an error.
type componentRegistry struct {
	byName   map[string]*componentInfo
	byHandle map[Handle]*componentInfo
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{
		byName:   make(map[string]*componentInfo),
		byHandle: make(map[Handle]*componentInfo),
	}
}

func (r *componentRegistry) register(w *World, name string, size uintptr, elementType table.ElementType, goType reflect.Type) (*componentInfo, error) {
	if existing, ok := r.byName[name]; ok {
		if existing.size != size {
			return nil, TypeMismatchError{Name: name, Expected: existing.size, Got: size}
		}
		return existing, nil
	}
	h, err := w.handles.Allocate()
	if err != nil {
		return nil, err
	}
	w.schema.Register(elementType)
	info := &componentInfo{handle: h, name: name, size: size, elementType: elementType, goType: goType}
	r.byName[name] = info
	r.byHandle[h] = info
	return info, nil
}

func (r *componentRegistry) byID(h Handle) (*componentInfo, bool) {
	info, ok := r.byHandle[h]
	return info, ok
}

func (r *componentRegistry) byNameLookup(name string) (*componentInfo, bool) {
	info, ok := r.byName[name]
	return info, ok
}

// AccessibleComponent is the generic, typed façade over a registered
// component: a Component<T> wrapper over the untyped byte storage
// table.Table keeps, reached through table.Accessor[T].
type AccessibleComponent[T any] struct {
	Component
	ID Handle
	table.Accessor[T]
}

// NewComponent registers T (by its Go type name) against w and returns a
// typed accessor for it. Re-registering the same Go type is idempotent.
func NewComponent[T any](w *World) AccessibleComponent[T] {
	return NewComponentNamed[T](w, fmt.Sprintf("%T", *new(T)))
}

// NewComponentNamed registers T under an explicit name, letting two
// distinct Go types share a logical component name only if their sizes
// agree.
func NewComponentNamed[T any](w *World, name string) AccessibleComponent[T] {
	iden := table.FactoryNewElementType[T]()
	var zero T
	info, err := w.components.register(w, name, unsafe.Sizeof(zero), iden, reflect.TypeOf(zero))
	if err != nil {
		panic(err)
	}
	return AccessibleComponent[T]{
		Component: info.elementType,
		ID:        info.handle,
		Accessor:  table.FactoryNewAccessor[T](info.elementType),
	}
}

// GetFromRow retrieves the component value for the row a cursor slice
// entry refers to.
func (c AccessibleComponent[T]) GetFromRow(row Row) *T {
	return c.Get(row.Index, row.Table.table)
}

// GetFromEntity retrieves the component value for a live entity handle.
func (c AccessibleComponent[T]) GetFromEntity(w *World, e Handle) (*T, error) {
	rec := w.directory.Get(e)
	if rec == nil || rec.Table == nil {
		return nil, fmt.Errorf("archway: entity %d has no components", uint64(e))
	}
	return c.Get(rec.RowIndex(), rec.Table.table), nil
}

// CheckRow reports whether the component is present in the row's table.
func (c AccessibleComponent[T]) CheckRow(row Row) bool {
	return c.Accessor.Check(row.Table.table)
}

// Set writes value into e's cell for this component and fires on_set,
// the explicit-write primitive distinct from mutating a GetFromEntity
// pointer directly (which bypasses reactive notification).
func (c AccessibleComponent[T]) Set(w *World, e Handle, value T) error {
	cell, err := c.GetFromEntity(w, e)
	if err != nil {
		return err
	}
	*cell = value
	w.reactive.fireOnSet(c.ID, e, cell)
	return nil
}
