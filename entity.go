package archway

import (
	"fmt"
	"sort"
	"strings"
)

// EntityDestroyCallback is invoked when an entity that has registered one
// is deleted.
type EntityDestroyCallback func(Entity)

// Entity is a thin, ergonomic wrapper around a (World, Handle) pair: the
// same mutations World exposes directly on a bare Handle, but as methods
// a caller can pass around and chain without re-threading the world.
type Entity struct {
	world *World
	h     Handle
}

// Wrap returns the Entity façade for h in w. It does not allocate or
// validate h; use World.New directly to create one from scratch.
func (w *World) Wrap(h Handle) Entity { return Entity{world: w, h: h} }

// Handle returns the underlying handle.
func (e Entity) Handle() Handle { return e.h }

// Valid reports whether e's handle is non-zero and still present in the
// directory.
func (e Entity) Valid() bool {
	if e.h == 0 {
		return false
	}
	return e.world.directory.Get(e.h) != nil
}

// AddComponent adds c to e's type, delegating to World.Add.
func (e Entity) AddComponent(c Handle) error {
	return e.world.Add(e.h, c)
}

// RemoveComponent removes c from e's type, delegating to World.Remove.
func (e Entity) RemoveComponent(c Handle) error {
	return e.world.Remove(e.h, c)
}

// HasComponent reports whether e owns or inherits c.
func (e Entity) HasComponent(c Handle) bool {
	return e.world.Has(e.h, c)
}

// SetParent wires a CHILDOF relation from e to parent, registering
// callback to run (through the world's destroy-callback registry) if the
// parent is deleted.
// An entity may have at most one CHILDOF parent at a time; SetParent
// returns an error if e already has one.
func (e Entity) SetParent(parent Entity, callback EntityDestroyCallback) error {
	if existing, ok := e.Parent(); ok {
		return fmt.Errorf("archway: entity %d already has parent %d", uint64(e.h), uint64(existing.h))
	}
	if err := e.world.Add(e.h, ChildOf(parent.h)); err != nil {
		return err
	}
	if callback != nil {
		e.world.onEntityDestroyed(parent.h, func() { callback(e) })
	}
	return nil
}

// Parent returns e's CHILDOF target, if any.
func (e Entity) Parent() (Entity, bool) {
	rec := e.world.directory.Get(e.h)
	if rec == nil || rec.Table == nil || !rec.Table.hasParent || len(rec.Table.parentHandles) == 0 {
		return Entity{}, false
	}
	return e.world.Wrap(rec.Table.parentHandles[0]), true
}

// Components returns the type ids e currently owns.
func (e Entity) Components() []Handle {
	rec := e.world.directory.Get(e.h)
	if rec == nil || rec.Table == nil {
		return nil
	}
	return append([]Handle(nil), rec.Table.typ...)
}

// ComponentsAsString renders e's owned components as a sorted,
// bracketed list of their registered names, for logging and tests.
func (e Entity) ComponentsAsString() string {
	ids := e.Components()
	if len(ids) == 0 {
		return "[]"
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if info, ok := e.world.components.byID(id); ok {
			names = append(names, info.name)
		}
	}
	sort.Strings(names)
	return "[" + strings.Join(names, ", ") + "]"
}

// Destroy deletes e, firing any destroy callbacks registered through
// SetParent by entities that named e as their parent.
func (e Entity) Destroy() error {
	return e.world.Delete(e.h)
}

// destroyCallbacks maps a handle to the destroy-notification thunks
// registered against it via SetParent.
type destroyCallbacks struct {
	byHandle map[Handle][]func()
}

func (w *World) onEntityDestroyed(target Handle, thunk func()) {
	if w.destroyCbs == nil {
		w.destroyCbs = &destroyCallbacks{byHandle: make(map[Handle][]func())}
	}
	w.destroyCbs.byHandle[target] = append(w.destroyCbs.byHandle[target], thunk)
}

// fireDestroyCallbacks runs and clears every thunk registered against e,
// called from Delete after the directory record is cleared.
func (w *World) fireDestroyCallbacks(e Handle) {
	if w.destroyCbs == nil {
		return
	}
	cbs := w.destroyCbs.byHandle[e]
	delete(w.destroyCbs.byHandle, e)
	for _, cb := range cbs {
		cb()
	}
}
