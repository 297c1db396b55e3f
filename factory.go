package archway

// factory implements the factory pattern for top-level archway construction,
// letting callers reach for a package-level Factory instead of remembering
// every constructor's name.
type factory struct{}

// Factory is the global factory instance for creating archway worlds,
// components, and caches.
var Factory factory

// NewWorld creates a new World with the given config.
func (f factory) NewWorld(cfg Config) (*World, error) {
	return NewWorld(cfg)
}

// NewSignature builds a Signature from a set of columns.
func (f factory) NewSignature(columns ...Column) Signature {
	return NewSignature(columns...)
}

// NewQuery compiles sig into a queryImpl bound to w.
func (f factory) NewQuery(w *World, sig Signature) *queryImpl {
	return w.NewQuery(sig)
}

// FactoryNewComponent creates a component-agnostic AccessibleComponent for
// type T, registered against w.
func FactoryNewComponent[T any](w *World) AccessibleComponent[T] {
	return NewComponent[T](w)
}

// FactoryNewCache creates a new Cache with the specified capacity.
func FactoryNewCache[T any](cap int) Cache[T] {
	return NewSimpleCache[T](cap)
}
