package archway

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// Stage is a non-main writer's buffer: its own shadow column store
// per table it has touched, its own shadow entity directory, and the
// dirty-tables list Merge walks. Every writer, including the main
// thread, binds to a stage; stage 0 is conventionally the main stage
// and is represented directly by World rather than by a Stage value.
type Stage struct {
	id    int
	world *World

	entryIndex table.EntryIndex
	directory  *stagedDirectory

	shadow map[*tableNode]table.Table
	dirty  []*tableNode
}

func newStage(w *World, id int) *Stage {
	return &Stage{
		id:         id,
		world:      w,
		entryIndex: table.Factory.NewEntryIndex(),
		directory:  newStagedDirectory(),
		shadow:     make(map[*tableNode]table.Table),
	}
}

// Stage returns the writer buffer for id, creating it on first use.
func (w *World) Stage(id int) *Stage {
	s, ok := w.stages[id]
	if !ok {
		s = newStage(w, id)
		w.stages[id] = s
	}
	return s
}

// shadowTable returns (creating if necessary) n's shadow column store in
// this stage, and marks n dirty.
func (s *Stage) shadowTable(n *tableNode) (table.Table, error) {
	if tbl, ok := s.shadow[n]; ok {
		return tbl, nil
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(s.world.schema).
		WithEntryIndex(s.entryIndex).
		WithElementTypes(buildElementTypes(s.world, n.typ)...).
		WithEvents(s.world.cfg.TableEvents).
		Build()
	if err != nil {
		return nil, err
	}
	s.shadow[n] = tbl
	s.dirty = append(s.dirty, n)
	return tbl, nil
}

// recordFor returns this stage's shadow record for e, creating an empty
// one on first use. The shadow record's own table field is nil until a
// write actually places a row for e in this stage; until then transition
// starts from e's main-stage table.
func (s *Stage) recordFor(e Handle) *Record {
	if rec, ok := s.directory.get(e); ok {
		return rec
	}
	rec := s.directory.getOrCreate(e)
	return rec
}

// New allocates e and, if components is non-empty, places it directly
// into this stage's shadow store.
func (s *Stage) New(components ...Handle) (Handle, error) {
	h, err := s.world.handles.Allocate()
	if err != nil {
		return 0, err
	}
	rec := s.directory.getOrCreate(h)
	if len(components) == 0 {
		return h, nil
	}
	if err := s.transition(h, rec, components, nil); err != nil {
		return 0, err
	}
	return h, nil
}

// Add stages ids onto e's type.
func (s *Stage) Add(e Handle, ids ...Handle) error {
	rec := s.recordFor(e)
	return s.transition(e, rec, ids, nil)
}

// Remove stages ids off of e's type.
func (s *Stage) Remove(e Handle, ids ...Handle) error {
	rec := s.recordFor(e)
	return s.transition(e, rec, nil, ids)
}

// Delete marks e for removal, visible to this stage's get/has
// immediately, applied to main only at Merge.
func (s *Stage) Delete(e Handle) {
	s.directory.removeOnMerge[e] = true
}

// Has reports whether e's type, as this stage currently sees it,
// contains id — honouring a staged remove-on-merge before falling back
// to the main-stage type.
func (s *Stage) Has(e Handle, id Handle) bool {
	if s.directory.removeOnMerge[e] {
		return false
	}
	if rec, ok := s.directory.get(e); ok && rec.Table != nil {
		return rec.Table.typ.Contains(id)
	}
	return s.world.HasOwned(e, id)
}

// transition computes e's destination table for (toAdd, toRemove) using
// the shared archetype graph, then moves or creates e's row in this
// stage's shadow store for that table.
func (s *Stage) transition(e Handle, rec *Record, toAdd, toRemove []Handle) error {
	var cur *tableNode
	if rec.Table != nil {
		cur = rec.Table
	} else if mainRec := s.world.directory.Get(e); mainRec != nil && !mainRec.Empty() {
		cur = mainRec.Table
	}

	dst, _, _, err := s.world.graph.traverse(cur, toAdd, toRemove)
	if err != nil {
		return err
	}
	if dst == nil {
		s.directory.removeOnMerge[e] = true
		rec.Table = nil
		return nil
	}
	if dst == rec.Table {
		return nil
	}

	tbl, err := s.shadowTable(dst)
	if err != nil {
		return err
	}
	entries, err := tbl.NewEntries(1)
	if err != nil {
		return err
	}
	entry := entries[0]
	row := entry.Index()
	*s.world.handleAcc.Get(row, tbl) = e
	*s.world.recordAcc.Get(row, tbl) = nil // nil unless e has a main-stage record, copied in below

	switch {
	case rec.Table != nil:
		// e already had a row in this stage (a prior staged table); its
		// cells live in that table's shadow store.
		if srcTbl, ok := s.shadow[rec.Table]; ok && rec.entry != nil {
			copyMatchingColumns(srcTbl, tbl, rec.entry.Index(), row)
		}
	case cur != nil:
		// e's only prior row is in the main stage.
		if mainRec := s.world.directory.Get(e); mainRec != nil && mainRec.Table == cur {
			copyMatchingColumns(cur.table, tbl, mainRec.RowIndex(), row)
		}
	}

	rec.Table = dst
	rec.entry = entry
	return nil
}

// Merge folds this stage's shadow stores into the main stage (spec
// §4.7 steps 1-4) and clears the stage for reuse.
func (s *Stage) Merge() error {
	for _, n := range s.dirty {
		shadow, ok := s.shadow[n]
		if !ok {
			continue
		}
		length := shadow.Length()
		for row := 0; row < length; row++ {
			e := *s.world.handleAcc.Get(row, shadow)
			if e == 0 {
				continue
			}
			if s.directory.removeOnMerge[e] {
				continue
			}
			// Only e's latest staged row is merged; rows it left behind in
			// earlier shadow tables are skipped, so e is placed once,
			// straight into its final table.
			if rec, ok := s.directory.get(e); !ok || rec.Table != n || rec.entry == nil || rec.entry.Index() != row {
				continue
			}
			if err := s.mergeRow(n, shadow, row, e); err != nil {
				return err
			}
		}
	}
	for e := range s.directory.removeOnMerge {
		if err := s.world.Delete(e); err != nil {
			return err
		}
	}
	s.shadow = make(map[*tableNode]table.Table)
	s.dirty = nil
	s.directory.clear()
	return nil
}

// mergeRow places one shadow row into n's main-stage store: a brand new
// main record, a transfer from a different main table, or an in-place
// column update if the entity was already in n's main store. Reactive
// actions fire exactly as they would for an equivalent direct commit
// (spec §4.7 scenario 5: OnAdd for every component the entity gained
// across the whole staged sequence, in type order, on the main stage).
func (s *Stage) mergeRow(n *tableNode, shadow table.Table, shadowRow int, e Handle) error {
	mainRec, isNew := s.world.directory.GetOrCreate(e)
	if isNew || mainRec.Table == nil {
		entries, err := s.world.growMainTable(n.table, 1)
		if err != nil {
			return err
		}
		entry := entries[0]
		dstRow := entry.Index()
		*s.world.handleAcc.Get(dstRow, n.table) = e
		mainRec.Table = n
		mainRec.entry = entry
		copyMatchingColumns(shadow, n.table, shadowRow, dstRow)
		*s.world.recordAcc.Get(dstRow, n.table) = mainRec
		s.world.fireNewEntity(n, e, n.typ.LowIDs())
		return nil
	}

	oldTable := mainRec.Table
	if oldTable == n {
		copyMatchingColumns(shadow, n.table, shadowRow, mainRec.RowIndex())
		return nil
	}

	oldRow := mainRec.RowIndex()
	for _, id := range DiffLowIDs(oldTable.typ, n.typ) {
		info, ok := s.world.components.byID(id)
		if !ok {
			continue
		}
		cell := cellFor(oldTable.table, info.goType, oldRow)
		if cell == nil {
			continue
		}
		s.world.reactive.fireOnRemove(id, e, cell)
		s.world.reactive.fireFini(id, e, cell)
	}

	if err := s.world.transferToMainTable(oldTable.table, n.table, oldRow); err != nil {
		return err
	}
	mainRec.Table = n
	copyMatchingColumns(shadow, n.table, shadowRow, mainRec.RowIndex())

	for _, id := range DiffLowIDs(n.typ, oldTable.typ) {
		info, ok := s.world.components.byID(id)
		if !ok {
			continue
		}
		// Re-fetch the record fresh every iteration: a callback for an
		// earlier id is free to move e again before later ids are
		// notified, and mainRec.Table/RowIndex must reflect wherever it
		// landed, not n/oldRow captured before the loop started.
		liveRec := s.world.directory.Get(e)
		if liveRec == nil || liveRec.Table == nil {
			continue
		}
		cell := cellFor(liveRec.Table.table, info.goType, liveRec.RowIndex())
		if cell == nil {
			continue
		}
		s.world.reactive.fireInit(id, e, cell)
		if liveRec.Table.hasBase {
			s.world.applyOverrideFromBase(liveRec.Table, e, id, info)
		}
		s.world.reactive.fireOnAdd(id, e, cell)
	}
	return nil
}

// copyMatchingColumns memcpys every column shadow and dst have in
// common for one row pair — step 3 of Merge ("column-wise memcpy from S
// into T's main store").
func copyMatchingColumns(shadow, dst table.Table, shadowRow, dstRow int) {
	for _, dRaw := range dst.Rows() {
		d := reflect.Value(dRaw)
		for _, sRaw := range shadow.Rows() {
			sR := reflect.Value(sRaw)
			if d.Type().Elem() == sR.Type().Elem() {
				d.Index(dstRow).Set(sR.Index(shadowRow))
				break
			}
		}
	}
}
