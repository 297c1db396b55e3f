/*
Package archway is an archetype-based entity/component store.

Entities are opaque 64-bit handles. Components are plain data registered
against a handle and attached to entities. Archway groups entities by the
exact set of components they hold (their type) and keeps each group's
component values in parallel column arrays (a table), so bulk iteration
over a query walks dense, cache-friendly slices rather than scattered
objects.

Core Concepts:

  - Handle: a unique 64-bit id for an entity, a component, or a relation
    target.
  - Component: data registered against a handle with NewComponent[T].
  - Table: the set of entities sharing the exact same component set, plus
    the column storage for those components.
  - Archetype graph: tables connected by per-component add/remove edges,
    so moving an entity from one type to another is a graph walk, not a
    search.
  - Stage: a per-writer shadow store that buffers mutations during a
    world step and merges them back into the main store at step end.

Basic Usage:

	w, _ := archway.NewWorld(archway.Config{})

	position := archway.NewComponent[Position](w)
	velocity := archway.NewComponent[Velocity](w)

	e, _ := w.New(position.ID, velocity.ID)

	q := w.NewQuery(archway.NewSignature(
		archway.Self(position.ID),
		archway.Self(velocity.ID),
	))
	it := w.Iter(q, 0, -1)
	for {
		slice, ok := it.Next()
		if !ok {
			break
		}
		for i := 0; i < slice.Count; i++ {
			pos := position.GetFromRow(slice.Row(i))
			vel := velocity.GetFromRow(slice.Row(i))
			pos.X += vel.X
			pos.Y += vel.Y
		}
	}

Archway is a storage-and-transition engine: the signature text parser, the
worker pool, timing and the public CLI-free façade are treated as external
collaborators and are not part of this package.
*/
package archway
