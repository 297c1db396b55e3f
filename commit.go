package archway

// New creates one entity with the given initial component set. An
// empty component list is fine — the entity lands in the root table
// with an empty record until something is added.
func (w *World) New(components ...Handle) (Handle, error) {
	if err := w.checkNotIterating(); err != nil {
		return 0, err
	}
	h, err := w.handles.Allocate()
	if err != nil {
		return 0, err
	}
	if len(components) == 0 {
		w.directory.GetOrCreate(h)
		return h, nil
	}
	if _, err := w.commit(h, components, nil); err != nil {
		return 0, err
	}
	return h, nil
}

// NewWCount creates n entities sharing the same initial component set in
// one table. n == 0 is a no-op that returns an empty slice.
func (w *World) NewWCount(n int, components ...Handle) ([]Handle, error) {
	if n == 0 {
		return nil, nil
	}
	if err := w.checkNotIterating(); err != nil {
		return nil, err
	}
	dst, err := w.graph.FindOrCreate(components)
	if err != nil {
		return nil, err
	}
	entries, err := w.growMainTable(dst.table, n)
	if err != nil {
		return nil, err
	}
	out := make([]Handle, n)
	for i, entry := range entries {
		h, err := w.handles.Allocate()
		if err != nil {
			return nil, err
		}
		row := entry.Index()
		*w.handleAcc.Get(row, dst.table) = h
		rec, _ := w.directory.GetOrCreate(h)
		rec.Table = dst
		rec.entry = entry
		*w.recordAcc.Get(row, dst.table) = rec
		out[i] = h
		w.fireNewEntity(dst, h, Type(components).LowIDs())
	}
	return out, nil
}

// Add adds ids to e's type. Adding an already present id is a no-op
// (self-loop, no OnAdd).
func (w *World) Add(e Handle, ids ...Handle) error {
	_, err := w.commit(e, ids, nil)
	return err
}

// Remove removes ids from e's type. Removing an absent id is a no-op
// (no OnRemove fires, destination == source).
func (w *World) Remove(e Handle, ids ...Handle) error {
	_, err := w.commit(e, nil, ids)
	return err
}

// AddRemove performs one atomic transition for both an add-set and a
// remove-set.
func (w *World) AddRemove(e Handle, add, remove []Handle) error {
	_, err := w.commit(e, add, remove)
	return err
}

// Delete destroys e: every component it owns fires OnRemove, its row is
// dropped, and its directory record is cleared.
func (w *World) Delete(e Handle) error {
	if err := w.checkNotIterating(); err != nil {
		return err
	}
	rec := w.directory.Get(e)
	if rec == nil || rec.Empty() {
		w.directory.Remove(e)
		w.fireDestroyCallbacks(e)
		return nil
	}
	if err := w.deleteEntity(rec.Table, rec); err != nil {
		return err
	}
	w.directory.Remove(e)
	w.fireDestroyCallbacks(e)
	return nil
}

// Has reports whether e's type contains id, either owned or inherited
// through an INSTANCEOF base.
func (w *World) Has(e Handle, id Handle) bool {
	if w.HasOwned(e, id) {
		return true
	}
	_, ok := w.GetParent(e, id)
	return ok
}

// HasOwned reports whether e directly owns id, ignoring inheritance.
func (w *World) HasOwned(e Handle, id Handle) bool {
	rec := w.directory.Get(e)
	if rec == nil || rec.Table == nil {
		return false
	}
	return rec.Table.typ.Contains(id)
}

// GetParent walks e's INSTANCEOF base chain looking for a base that owns
// component. It returns the owning base's handle.
func (w *World) GetParent(e Handle, component Handle) (Handle, bool) {
	rec := w.directory.Get(e)
	if rec == nil || rec.Table == nil || !rec.Table.hasBase {
		return 0, false
	}
	seen := map[Handle]bool{e: true}
	for _, base := range rec.Table.baseHandles {
		if found, ok := w.findOwnerAmongBases(base, component, seen); ok {
			return found, true
		}
	}
	return 0, false
}

func (w *World) findOwnerAmongBases(base Handle, component Handle, seen map[Handle]bool) (Handle, bool) {
	if seen[base] {
		return 0, false // one-level cycle memoisation
	}
	seen[base] = true
	if w.HasOwned(base, component) {
		return base, true
	}
	baseRec := w.directory.Get(base)
	if baseRec == nil || baseRec.Table == nil || !baseRec.Table.hasBase {
		return 0, false
	}
	for _, grandBase := range baseRec.Table.baseHandles {
		if found, ok := w.findOwnerAmongBases(grandBase, component, seen); ok {
			return found, true
		}
	}
	return 0, false
}

// Clone duplicates e's type, and optionally its component values, into a
// freshly allocated handle.
func (w *World) Clone(e Handle, copyValue bool) (Handle, error) {
	rec := w.directory.Get(e)
	if rec == nil || rec.Table == nil {
		return w.New()
	}
	clone, err := w.New()
	if err != nil {
		return 0, err
	}
	if _, err := w.commit(clone, rec.Table.typ, nil); err != nil {
		return 0, err
	}
	if copyValue {
		cloneRec := w.directory.Get(clone)
		moveCells(w, rec.Table, cloneRec.Table, rec.RowIndex(), cloneRec.RowIndex())
	}
	return clone, nil
}

// commit is the transition engine: compute the destination table for
// (toAdd, toRemove), move the row, invoke reactive actions.
func (w *World) commit(e Handle, toAdd, toRemove []Handle) (bool, error) {
	if err := w.checkNotIterating(); err != nil {
		return false, err
	}
	rec, _ := w.directory.GetOrCreate(e)
	var srcTable *tableNode
	if rec.Table != nil {
		srcTable = rec.Table
	}

	dstTable, added, removed, err := w.graph.traverse(srcTable, toAdd, toRemove)
	if err != nil {
		return false, err
	}
	if dstTable == srcTable {
		return false, nil
	}

	switch {
	case srcTable == nil:
		if err := w.newEntity(dstTable, e, rec, added); err != nil {
			return false, err
		}
	case dstTable == nil:
		if err := w.deleteEntity(srcTable, rec); err != nil {
			return false, err
		}
		w.directory.Remove(e)
	default:
		if err := w.moveEntity(srcTable, dstTable, e, rec, added, removed); err != nil {
			return false, err
		}
	}

	if !w.handles.InRange(e) {
		return false, OutOfRangeError{Handle: e, Min: w.handles.min, Max: w.handles.max}
	}
	if rec.Watched() {
		w.shouldMatch = true
	}
	return true, nil
}

// newEntity places e, which owns no prior table, into dst.
func (w *World) newEntity(dst *tableNode, e Handle, rec *Record, added []Handle) error {
	entries, err := w.growMainTable(dst.table, 1)
	if err != nil {
		return err
	}
	entry := entries[0]
	row := entry.Index()
	*w.handleAcc.Get(row, dst.table) = e
	rec.Table = dst
	rec.entry = entry
	*w.recordAcc.Get(row, dst.table) = rec

	w.fireNewEntity(dst, e, added)
	return nil
}

// fireNewEntity runs OnAdd for every newly-added component (applying
// override-from-base first), then the table's OnNew list, once the row
// physically exists.
func (w *World) fireNewEntity(dst *tableNode, e Handle, added []Handle) {
	for _, id := range added {
		info, ok := w.components.byID(id)
		if !ok {
			continue
		}
		// Re-fetch the record fresh every iteration: an OnAdd for an
		// earlier id may itself move e before later ids are notified, so
		// the live table/row must be read each time rather than reusing
		// dst from before the loop started.
		rec := w.directory.Get(e)
		if rec == nil || rec.Table == nil {
			continue
		}
		cell := cellFor(rec.Table.table, info.goType, rec.RowIndex())
		if cell == nil {
			continue
		}
		w.reactive.fireInit(id, e, cell)
		if rec.Table.hasBase {
			w.applyOverrideFromBase(rec.Table, e, id, info)
		}
		w.reactive.fireOnAdd(id, e, cell)
	}
	w.reactive.fireOnNew(dst, e)
}

// applyOverrideFromBase copies a component's value from the entity's
// INSTANCEOF base into its own cell the moment it begins to own that
// component, then fires OnSet. Bases are walked last-added-first with
// one-level cycle memoisation.
func (w *World) applyOverrideFromBase(dst *tableNode, e Handle, id Handle, info *componentInfo) {
	for i := len(dst.baseHandles) - 1; i >= 0; i-- {
		owner, ok := w.findOwnerAmongBases(dst.baseHandles[i], id, map[Handle]bool{e: true})
		if !ok {
			continue
		}
		ownerRec := w.directory.Get(owner)
		if ownerRec == nil || ownerRec.Table == nil {
			continue
		}
		entityRec := w.directory.Get(e)
		srcCell := cellFor(ownerRec.Table.table, info.goType, ownerRec.RowIndex())
		dstCell := cellFor(dst.table, info.goType, entityRec.RowIndex())
		if srcCell == nil || dstCell == nil {
			continue
		}
		copyCell(dstCell, srcCell)
		w.reactive.fireOnSet(id, e, dstCell)
		return
	}
}

// moveEntity relocates e from src to dst. It fires OnRemove/Fini for
// components that src owns and dst does not while the old cell is still
// live, transfers the row, then fires Init/OnAdd for the newly-present
// components. TransferEntries carries every column common to both
// tables (including the reserved Handle/*Record columns, since those
// share one ElementType across all tables) in one call rather than a
// manual copy loop.
func (w *World) moveEntity(src, dst *tableNode, e Handle, rec *Record, added, removed []Handle) error {
	srcRow := rec.RowIndex()

	for _, id := range removed {
		info, ok := w.components.byID(id)
		if !ok {
			continue
		}
		cell := cellFor(src.table, info.goType, srcRow)
		if cell == nil {
			continue
		}
		w.reactive.fireOnRemove(id, e, cell)
		w.reactive.fireFini(id, e, cell)
	}

	if err := w.transferToMainTable(src.table, dst.table, srcRow); err != nil {
		return err
	}
	// rec.entry was built from the world's shared EntryIndex, so its
	// Index()/Table() already reflect the transfer; only the node
	// wrapper needs updating.
	rec.Table = dst

	for _, id := range added {
		info, ok := w.components.byID(id)
		if !ok {
			continue
		}
		// rec.Table may no longer be dst: an OnAdd fired for an earlier
		// id in this same loop is free to move e again before later ids
		// are notified, so the live table/row is re-read every pass
		// instead of reusing dst/srcRow captured before the loop.
		if rec.Table == nil {
			continue
		}
		cell := cellFor(rec.Table.table, info.goType, rec.RowIndex())
		if cell == nil {
			continue
		}
		w.reactive.fireInit(id, e, cell)
		if rec.Table.hasBase {
			w.applyOverrideFromBase(rec.Table, e, id, info)
		}
		w.reactive.fireOnAdd(id, e, cell)
	}
	return nil
}

// deleteEntity fires OnRemove/Fini for every component src owns, then
// drops the row.
func (w *World) deleteEntity(src *tableNode, rec *Record) error {
	row := rec.RowIndex()
	for _, id := range src.typ.LowIDs() {
		info, ok := w.components.byID(id)
		if !ok {
			continue
		}
		cell := cellFor(src.table, info.goType, row)
		if cell == nil {
			continue
		}
		w.reactive.fireOnRemove(id, 0, cell)
		w.reactive.fireFini(id, 0, cell)
	}
	_, err := src.table.DeleteEntries(int(rec.entryID()))
	return err
}
