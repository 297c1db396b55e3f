package archway

// reference is a cached (entity, component, ptr) triple for one
// non-self signature column. The cell is re-resolved whenever the
// world's should-resolve flag is set, since it may point into
// main-stage column data that a prior mutation reallocated.
type reference struct {
	entity    Handle
	component Handle
	cell      any
}

// binding is what the matcher stores per matched table: columns[i] is
// positive 1-based into the table's own data columns, negative 1-based
// into references, or zero for an absent OPTIONAL.
type binding struct {
	table      *tableNode
	columns    []int
	components []Handle
	references []reference
	depth      int // container-hierarchy depth, for CASCADE ordering
}

// stale reports whether any reference this binding caches has no live
// cell (reresolve and buildReference leave cell nil when the owner has
// no table or cellFor finds no matching column).
func (b *binding) stale() bool {
	for _, ref := range b.references {
		if ref.cell == nil {
			return true
		}
	}
	return false
}

// matchTable evaluates sig against n's type and, on a match, computes
// the per-table binding: owned/shared/container resolution, OR variant
// selection, and the references cache for every non-self column.
func matchTable(w *World, sig Signature, includeDisabledPrefab bool, systemRef Handle, n *tableNode) (*binding, bool) {
	if !includeDisabledPrefab {
		if n.isDisabled && !sig.names(w.disabledTag) {
			return nil, false
		}
		if n.isPrefab && !sig.names(w.prefabTag) {
			return nil, false
		}
	}

	b := &binding{table: n}
	if n.hasParent {
		b.depth = containerDepth(w, n)
	}

	for _, col := range sig.Columns {
		idx, comp, ref, ok := evalColumn(w, n, systemRef, col)
		switch col.Op {
		case OpAnd, OpOr:
			if !ok {
				return nil, false
			}
		case OpNot:
			if ok {
				return nil, false
			}
			continue
		case OpOptional:
			// always matches; idx/comp/ref reflect presence or the zero
			// sentinel computed by evalColumn
		}
		if ref != nil {
			b.references = append(b.references, *ref)
			idx = -len(b.references) // 1-based negative index into references
		}
		b.columns = append(b.columns, idx)
		b.components = append(b.components, comp)
	}
	return b, true
}

// names reports whether sig explicitly references id anywhere, used to
// decide whether a Disabled/Prefab-tagged table is excluded by default.
func (sig Signature) names(id Handle) bool {
	for _, col := range sig.Columns {
		for _, cid := range col.Ids {
			if cid == id {
				return true
			}
		}
	}
	return false
}

// evalColumn resolves one signature column against table n. idx is the
// 1-based column/reference index to store in binding.columns (0 means
// "optional, absent"); comp is the concrete component id chosen (useful
// for OR); ref is non-nil for any non-self source.
func evalColumn(w *World, n *tableNode, systemRef Handle, col Column) (idx int, comp Handle, ref *reference, ok bool) {
	switch col.Kind {
	case SourceSelf, SourceOwned:
		return evalOwned(n, col)
	case SourceShared:
		return evalShared(w, n, col)
	case SourceContainer:
		return evalContainer(w, n, col)
	case SourceEmpty:
		_, _, _, present := evalOwned(n, col)
		return 0, firstID(col), nil, present
	case SourceSystem:
		return evalSystemEntity(w, systemRef, col)
	case SourceEntity:
		return evalFixedEntity(w, col)
	case SourceCascade:
		return evalOwned(n, col)
	}
	return 0, 0, nil, false
}

func firstID(col Column) Handle {
	if len(col.Ids) == 0 {
		return 0
	}
	return col.Ids[0]
}

// dataColumnIndex returns the 1-based position of id's column among n's
// own element types (reserved Handle/*Record columns occupy slots 1-2),
// or 0 if n carries no data column for id (e.g. id is a tag).
func dataColumnIndex(n *tableNode, id Handle) int {
	pos := 2
	for _, cid := range n.typ {
		if cid.Flag() != 0 {
			continue // relation pseudo-ids carry no column
		}
		pos++
		if cid == id {
			return pos
		}
	}
	return 0
}

func evalOwned(n *tableNode, col Column) (int, Handle, *reference, bool) {
	for _, id := range col.Ids {
		if n.typ.Contains(id) {
			return dataColumnIndex(n, id), id, nil, true
		}
	}
	return 0, firstID(col), nil, false
}

// evalShared resolves a SHARED column: the component must be inherited
// through an INSTANCEOF base and not owned directly. When no base
// currently owns the component, every base is watched anyway: a later
// commit that gives one of them the component must make this table
// eligible for rematch even though no reference exists yet to pin the
// watch on (matcher_test.go's TestSharedQueryRematchesWhenBaseGainsComponent).
func evalShared(w *World, n *tableNode, col Column) (int, Handle, *reference, bool) {
	if !n.hasBase {
		return 0, firstID(col), nil, false
	}
	for _, id := range col.Ids {
		if n.typ.Contains(id) {
			continue // owned, not shared
		}
		for _, base := range n.baseHandles {
			if owner, ok := findBaseOwner(w, base, id); ok {
				return -1, id, buildReference(w, owner, id), true
			}
		}
	}
	for _, base := range n.baseHandles {
		watchEntity(w, base)
	}
	return 0, firstID(col), nil, false
}

func findBaseOwner(w *World, base Handle, id Handle) (Handle, bool) {
	return w.findOwnerAmongBases(base, id, map[Handle]bool{})
}

// evalContainer resolves a CONTAINER column: some CHILDOF ancestor must
// own the component. Mirrors evalShared: the immediate parents are
// watched even on a miss, so a later commit against one of them (or a
// table-graph change reachable from it) can make this table match.
func evalContainer(w *World, n *tableNode, col Column) (int, Handle, *reference, bool) {
	if !n.hasParent {
		return 0, firstID(col), nil, false
	}
	for _, id := range col.Ids {
		for _, parent := range n.parentHandles {
			if owner, ok := findContainerOwner(w, parent, id); ok {
				return -1, id, buildReference(w, owner, id), true
			}
		}
	}
	for _, parent := range n.parentHandles {
		watchEntity(w, parent)
	}
	return 0, firstID(col), nil, false
}

func findContainerOwner(w *World, start Handle, id Handle) (Handle, bool) {
	seen := map[Handle]bool{}
	cur := start
	for !seen[cur] {
		seen[cur] = true
		if w.HasOwned(cur, id) {
			return cur, true
		}
		rec := w.directory.Get(cur)
		if rec == nil || rec.Table == nil || !rec.Table.hasParent || len(rec.Table.parentHandles) == 0 {
			return 0, false
		}
		cur = rec.Table.parentHandles[0]
	}
	return 0, false
}

func evalFixedEntity(w *World, col Column) (int, Handle, *reference, bool) {
	id := firstID(col)
	if !w.HasOwned(col.Entity, id) {
		watchEntity(w, col.Entity)
		return 0, id, nil, false
	}
	return -1, id, buildReference(w, col.Entity, id), true
}

// evalSystemEntity resolves a SYSTEM column: the component is fetched
// from the query's own driving entity (set via queryImpl.WithSystemEntity)
// rather than from the matched table itself. An unset systemRef (zero
// handle) never matches, the same as a fixed entity with no such owner.
func evalSystemEntity(w *World, systemRef Handle, col Column) (int, Handle, *reference, bool) {
	id := firstID(col)
	if systemRef == 0 {
		return 0, id, nil, false
	}
	if !w.HasOwned(systemRef, id) {
		watchEntity(w, systemRef)
		return 0, id, nil, false
	}
	return -1, id, buildReference(w, systemRef, id), true
}

// watchEntity marks e's main-stage record watched, creating an empty
// placeholder record first if e has no record yet (an entity can be a
// relation target, and so watchable, before it owns anything of its
// own). A later structural change to a watched entity raises the world's
// should-match flag (commit.go), giving every query bound against a
// dependent table a chance to re-evaluate.
func watchEntity(w *World, e Handle) {
	rec, _ := w.directory.GetOrCreate(e)
	rec.SetWatched(true)
}

func buildReference(w *World, owner Handle, id Handle) *reference {
	ownerRec := w.directory.Get(owner)
	if ownerRec == nil || ownerRec.Table == nil {
		return &reference{entity: owner, component: id}
	}
	// owner is resolved as something other than self for this column
	// (SHARED/CONTAINER/fixed-entity/SYSTEM), so a later structural
	// change to owner's own type must trigger a query rematch.
	watchEntity(w, owner)
	info, ok := w.components.byID(id)
	if !ok {
		return &reference{entity: owner, component: id}
	}
	cell := cellFor(ownerRec.Table.table, info.goType, ownerRec.RowIndex())
	return &reference{entity: owner, component: id, cell: cell}
}

// reresolve recomputes every cached reference pointer, run once before
// the next iteration after should-resolve has been raised.
func (b *binding) reresolve(w *World) {
	for i := range b.references {
		ref := &b.references[i]
		info, ok := w.components.byID(ref.component)
		if !ok {
			continue
		}
		ownerRec := w.directory.Get(ref.entity)
		if ownerRec == nil || ownerRec.Table == nil {
			ref.cell = nil
			continue
		}
		ref.cell = cellFor(ownerRec.Table.table, info.goType, ownerRec.RowIndex())
	}
}

// containerDepth computes n's CASCADE ordering depth: the number of
// CHILDOF hops from n's representative entity to the tree root. Tables
// carry this as a property of their type, computed once at bind time.
func containerDepth(w *World, n *tableNode) int {
	if len(n.parentHandles) == 0 {
		return 0
	}
	depth := 0
	cur := n.parentHandles[0]
	seen := map[Handle]bool{}
	for !seen[cur] {
		seen[cur] = true
		depth++
		rec := w.directory.Get(cur)
		if rec == nil || rec.Table == nil || !rec.Table.hasParent || len(rec.Table.parentHandles) == 0 {
			break
		}
		cur = rec.Table.parentHandles[0]
	}
	return depth
}
