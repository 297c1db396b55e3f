package archway

import "sort"

// queryImpl is a pre-bound query: the signature it matches, the set of
// tables currently bound to it, and the Disabled/Prefab exclusion
// policy decided once at creation time.
type queryImpl struct {
	world      *World
	sig        Signature
	includeTag bool // true once the signature names Disabled or Prefab itself
	systemRef  Handle

	byTable  map[*tableNode]*binding
	ordered  []*binding // kept sorted by depth when the signature has a CASCADE column
	cascades bool
}

// NewQuery compiles sig into a query, eagerly binds every existing table
// that matches it, and registers it as live so future table creation and
// should-match rematch passes keep it current.
func (w *World) NewQuery(sig Signature) *queryImpl {
	q := newQueryImpl(w, sig)
	w.liveQueries = append(w.liveQueries, q)
	return q
}

// newQueryImpl builds and eagerly binds a query without registering it in
// w.liveQueries, for one-shot internal uses (filter.go's CountWFilter and
// DeleteWFilter) that never outlive a single call and would otherwise
// leak an entry that every future rematch pass has to walk.
func newQueryImpl(w *World, sig Signature) *queryImpl {
	q := &queryImpl{
		world:   w,
		sig:     sig,
		byTable: make(map[*tableNode]*binding),
	}
	for _, col := range sig.Columns {
		if col.Kind == SourceCascade {
			q.cascades = true
		}
	}
	q.includeTag = sig.names(w.disabledTag) || sig.names(w.prefabTag)
	for _, n := range w.graph.all {
		q.tryBind(n)
	}
	return q
}

// WithSystemEntity sets the entity SYSTEM-source columns resolve
// against, since the engine treats "the query's own entity" as fed in
// by the external scheduler rather than resolved internally. Since a
// SYSTEM column's match result depends only on systemRef (not on the
// candidate table), changing it forces every already-bound table to be
// re-evaluated from scratch.
func (q *queryImpl) WithSystemEntity(e Handle) *queryImpl {
	if q.systemRef == e {
		return q
	}
	q.systemRef = e
	q.byTable = make(map[*tableNode]*binding)
	q.ordered = nil
	for _, n := range q.world.graph.all {
		n.unmatchQuery(q)
	}
	q.rematch()
	return q
}

// tryBind attempts to match n and, on success, records the binding and
// registers q on n.matchedQueries so a future rematch pass can find it.
func (q *queryImpl) tryBind(n *tableNode) {
	if _, already := q.byTable[n]; already {
		return
	}
	b, ok := matchTable(q.world, q.sig, q.includeTag, q.systemRef, n)
	if !ok {
		return
	}
	q.byTable[n] = b
	n.matchedQueries = append(n.matchedQueries, q)
	if q.cascades {
		q.insertOrdered(b)
	} else {
		q.ordered = append(q.ordered, b)
	}
}

// insertOrdered keeps q.ordered sorted by non-decreasing container
// depth for CASCADE queries; insertion order is preserved within a
// depth.
func (q *queryImpl) insertOrdered(b *binding) {
	i := sort.Search(len(q.ordered), func(i int) bool { return q.ordered[i].depth > b.depth })
	q.ordered = append(q.ordered, nil)
	copy(q.ordered[i+1:], q.ordered[i:])
	q.ordered[i] = b
}

// rematch re-evaluates every table against q, called once per step when
// the world's should-match flag is set. A watched owner entity's type can
// change which tables a SHARED/CONTAINER/fixed-entity/SYSTEM column
// resolves against, so already-bound tables must be re-checked too, not
// just tables that weren't bound before.
func (q *queryImpl) rematch() {
	for _, n := range q.world.graph.all {
		if _, already := q.byTable[n]; already {
			q.reevaluate(n)
			continue
		}
		q.tryBind(n)
	}
}

// reevaluate re-runs matchTable against an already-bound table n: unbinds
// it if it no longer matches, or replaces its binding (new references,
// possibly new depth) if it still does.
func (q *queryImpl) reevaluate(n *tableNode) {
	b, ok := matchTable(q.world, q.sig, q.includeTag, q.systemRef, n)
	if !ok {
		q.unbind(n)
		return
	}
	q.byTable[n] = b
	q.replaceOrdered(n, b)
}

// unbind drops n from q's bound-table set, its ordered slice, and n's own
// matchedQueries list.
func (q *queryImpl) unbind(n *tableNode) {
	if _, ok := q.byTable[n]; !ok {
		return
	}
	delete(q.byTable, n)
	n.unmatchQuery(q)
	q.removeOrdered(n)
}

// removeOrdered drops n's current binding from q.ordered, if present.
func (q *queryImpl) removeOrdered(n *tableNode) {
	for i, b := range q.ordered {
		if b.table == n {
			q.ordered = append(q.ordered[:i], q.ordered[i+1:]...)
			return
		}
	}
}

// replaceOrdered swaps n's previous binding in q.ordered for b, preserving
// CASCADE order if the depth changed.
func (q *queryImpl) replaceOrdered(n *tableNode, b *binding) {
	q.removeOrdered(n)
	if q.cascades {
		q.insertOrdered(b)
	} else {
		q.ordered = append(q.ordered, b)
	}
}

// refreshReferences re-resolves every cached reference across all of
// q's bindings, run lazily before iteration when should-resolve is set.
// A cell may be non-nil yet point into a column array that has since
// been reallocated, so every binding is re-resolved, not only those
// with a nil cell.
func (q *queryImpl) refreshReferences() {
	for _, b := range q.ordered {
		b.reresolve(q.world)
	}
}
