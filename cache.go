package archway

import "fmt"

// Cache is a capacity-bounded name-to-item registry: Register assigns
// the next free slot, GetIndex/GetItem look it back up either way.
type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(string, T) (int, error)
	Clear()
}

// SimpleCache is the array-backed Cache implementation: a dense slice of
// items plus a name index, so both name and integer lookup are O(1).
type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}

var _ Cache[any] = &SimpleCache[any]{}

// NewSimpleCache builds an empty cache pre-sized to cap, so items never
// outlive a Register-triggered reallocation: GetItem's returned pointer
// stays valid for the cache's whole lifetime as long as registrations
// stay within cap.
func NewSimpleCache[T any](cap int) *SimpleCache[T] {
	return &SimpleCache[T]{
		items:       make([]T, 0, cap),
		itemIndices: make(map[string]int, cap),
		maxCapacity: cap,
	}
}

func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *SimpleCache[T]) GetItem(index int) *T {
	return &c.items[index]
}

func (c *SimpleCache[T]) GetItem32(index uint32) *T {
	return &c.items[index]
}

func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if existing, ok := c.itemIndices[key]; ok {
		return existing, nil
	}
	if len(c.itemIndices) >= c.maxCapacity {
		return -1, fmt.Errorf("archway: cache at maximum capacity (%d)", c.maxCapacity)
	}
	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)
	return idx, nil
}

func (c *SimpleCache[T]) Clear() {
	c.items = c.items[:0]
	c.itemIndices = make(map[string]int, c.maxCapacity)
}

// namedQueryCapacity bounds how many distinct named queries a world
// tracks; queries built without a name (the common case) never touch
// this cache at all.
const namedQueryCapacity = 4096

// namedQueries is a world's registry of queries registered under a
// caller-chosen name, letting systems look a shared query up without
// holding onto the *queryImpl themselves.
type namedQueries struct {
	cache *SimpleCache[*queryImpl]
}

func newNamedQueries() *namedQueries {
	return &namedQueries{cache: NewSimpleCache[*queryImpl](namedQueryCapacity)}
}

// RegisterQuery names q so QueryByName(name) can retrieve it later.
// Re-registering an existing name returns the query already stored
// there, mirroring new_component's idempotent-by-name policy.
func (w *World) RegisterQuery(name string, q *queryImpl) (*queryImpl, error) {
	idx, err := w.named.cache.Register(name, q)
	if err != nil {
		return nil, err
	}
	return *w.named.cache.GetItem(idx), nil
}

// QueryByName retrieves a query previously registered with RegisterQuery.
func (w *World) QueryByName(name string) (*queryImpl, bool) {
	idx, ok := w.named.cache.GetIndex(name)
	if !ok {
		return nil, false
	}
	return *w.named.cache.GetItem(idx), true
}
