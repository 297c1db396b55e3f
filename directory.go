package archway

import "github.com/TheBitDrifter/table"

// Record is the (table, row) pair the entity directory keeps for a
// handle. Rather than freeze a row number at insert time, Record holds
// the live table.Entry the column-store dependency already keeps
// current across swaps and transfers — so RowIndex() is always accurate
// without a manual fixup pass. Watched tracks the negative-row meaning
// separately; Row() renders both back into a signed convention for
// callers that want it literally.
type Record struct {
	Table   *tableNode
	entry   table.Entry
	watched bool
}

// Watched reports whether this record's entity is observed by a query
// from a source other than self.
func (r *Record) Watched() bool { return r.watched }

// SetWatched marks/unmarks the record, causing the world's
// should-match flag to be raised on the entity's next commit.
func (r *Record) SetWatched(w bool) { r.watched = w }

// RowIndex returns the real, zero-based row, or -1 if the entity has not
// been placed in any table.
func (r *Record) RowIndex() int {
	if r.entry == nil {
		return -1
	}
	return r.entry.Index()
}

// Row renders the record into a signed convention: positive for a
// regular entity (real row = Row-1), negative for a watched entity
// (real row = -Row-1), zero for "empty entity".
func (r *Record) Row() int32 {
	if r.entry == nil {
		return 0
	}
	row := int32(r.entry.Index()) + 1
	if r.watched {
		return -row
	}
	return row
}

// Empty reports whether the entity has not yet been placed in a table.
func (r *Record) Empty() bool { return r.entry == nil }

func (r *Record) entryID() table.EntryID {
	if r.entry == nil {
		return 0
	}
	return r.entry.ID()
}

// Directory is the sparse-set entity directory for the main stage. It
// gives O(1) lookup by handle and dense iteration, and its Records have
// stable addresses: the dense slice holds *Record, so growing it never
// moves an already-handed-out Record.
type Directory struct {
	sparse  map[Handle]int32 // handle -> 1-based index into dense; 0 = absent
	dense   []*Record
	handles []Handle // parallel to dense, for reverse lookup / iteration
}

// NewDirectory builds an empty main-stage directory.
func NewDirectory() *Directory {
	return &Directory{sparse: make(map[Handle]int32)}
}

// Get returns the record for h, or nil if h has never been seen.
func (d *Directory) Get(h Handle) *Record {
	idx, ok := d.sparse[h]
	if !ok {
		return nil
	}
	return d.dense[idx-1]
}

// GetOrCreate returns the record for h, creating an empty one if h is
// new. isNew reports whether a record was created.
func (d *Directory) GetOrCreate(h Handle) (rec *Record, isNew bool) {
	if idx, ok := d.sparse[h]; ok {
		return d.dense[idx-1], false
	}
	rec = &Record{}
	d.dense = append(d.dense, rec)
	d.handles = append(d.handles, h)
	d.sparse[h] = int32(len(d.dense))
	return rec, true
}

// Remove zeroes the directory entry for h so Get(h) again returns nil.
// The slot is not compacted out of the dense slice; entity ids are never
// recycled within a world, so a freed slot is simply dead weight rather
// than a reusable one.
func (d *Directory) Remove(h Handle) {
	idx, ok := d.sparse[h]
	if !ok {
		return
	}
	d.dense[idx-1] = &Record{}
	delete(d.sparse, h)
}

// Count returns the number of live entries, for cross-checking against
// per-table row counts.
func (d *Directory) Count() int { return len(d.sparse) }

// Each calls fn for every (handle, record) pair currently indexed.
func (d *Directory) Each(fn func(h Handle, rec *Record)) {
	for h, idx := range d.sparse {
		fn(h, d.dense[idx-1])
	}
}

// stagedDirectory is the per-stage shadow directory. Unlike the
// main-stage Directory it is a plain map: staged records must never be
// pointer-cached across calls, since the stage is cleared wholesale on
// merge.
type stagedDirectory struct {
	records map[Handle]*Record
	// removeOnMerge tracks entities whose removal is only visible to
	// this stage until Merge runs.
	removeOnMerge map[Handle]bool
}

func newStagedDirectory() *stagedDirectory {
	return &stagedDirectory{
		records:       make(map[Handle]*Record),
		removeOnMerge: make(map[Handle]bool),
	}
}

func (d *stagedDirectory) get(h Handle) (*Record, bool) {
	r, ok := d.records[h]
	return r, ok
}

func (d *stagedDirectory) getOrCreate(h Handle) *Record {
	if r, ok := d.records[h]; ok {
		return r
	}
	r := &Record{}
	d.records[h] = r
	return r
}

func (d *stagedDirectory) clear() {
	d.records = make(map[Handle]*Record)
	d.removeOnMerge = make(map[Handle]bool)
}
