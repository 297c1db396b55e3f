package archway

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/table"
)

// BulkColumn is one component's worth of values for a bulk load: the
// component id the values belong to, and a slice of that component's Go
// type.
type BulkColumn struct {
	Component Handle
	Values    any // a slice, e.g. []Position
}

// BulkLoad describes a homogeneous batch insert: every entity in the
// batch ends up with the same component set. Entities lets the caller
// supply pre-allocated handles (e.g. from a worker's pre-allocated
// range); if nil, fresh handles are minted.
type BulkLoad struct {
	Entities   []Handle
	Components []Handle
	Columns    []BulkColumn
	RowCount   int
}

// SetWData performs one atomic transition for an entire homogeneous
// batch: every new row lands in the same destination table in one
// table.NewEntries call. When every row of the batch is new and the rows
// are contiguous, each column is filled with one reflect.Copy; otherwise
// cells are written row by row. A row whose
// entity is already present in the destination table is updated in
// place with zero row motion (spec §8 scenario 3: a second call with
// the same entity array is an in-place update, not a re-insert); a row
// whose entity exists in a different table is first moved there
// through the ordinary commit path, which fires OnAdd/OnRemove exactly
// as a direct Add/Remove would.
func (w *World) SetWData(load BulkLoad) ([]Handle, error) {
	if load.RowCount == 0 {
		return nil, nil
	}
	if err := w.checkNotIterating(); err != nil {
		return nil, err
	}
	if len(load.Entities) != 0 && len(load.Entities) != load.RowCount {
		return nil, fmt.Errorf("archway: bulk load entities length %d does not match row_count %d", len(load.Entities), load.RowCount)
	}

	dst, err := w.graph.FindOrCreate(load.Components)
	if err != nil {
		return nil, err
	}

	handles := make([]Handle, load.RowCount)
	rows := make([]int, load.RowCount)
	isNewRow := make([]bool, load.RowCount)
	var freshIdx []int

	for i := 0; i < load.RowCount; i++ {
		var h Handle
		if len(load.Entities) != 0 {
			h = load.Entities[i]
			w.handles.Advance(h)
		} else {
			h, err = w.handles.Allocate()
			if err != nil {
				return nil, err
			}
		}
		handles[i] = h

		rec := w.directory.Get(h)
		switch {
		case rec != nil && !rec.Empty() && rec.Table == dst:
			rows[i] = rec.RowIndex()
		case rec != nil && !rec.Empty() && rec.Table != dst:
			var extra []Handle
			for _, id := range rec.Table.typ {
				if !dst.typ.Contains(id) {
					extra = append(extra, id)
				}
			}
			if _, err := w.commit(h, load.Components, extra); err != nil {
				return nil, err
			}
			rec = w.directory.Get(h)
			rows[i] = rec.RowIndex()
		default:
			isNewRow[i] = true
			freshIdx = append(freshIdx, i)
		}
	}

	if len(freshIdx) > 0 {
		entries, err := w.growMainTable(dst.table, len(freshIdx))
		if err != nil {
			return nil, err
		}
		for k, idx := range freshIdx {
			entry := entries[k]
			row := entry.Index()
			h := handles[idx]
			*w.handleAcc.Get(row, dst.table) = h
			rec, _ := w.directory.GetOrCreate(h)
			rec.Table = dst
			rec.entry = entry
			*w.recordAcc.Get(row, dst.table) = rec
			rows[idx] = row
		}
	}

	allFreshContiguous := len(freshIdx) == load.RowCount && isContiguousRun(rows)
	for _, col := range load.Columns {
		values := reflect.ValueOf(col.Values)
		if values.Kind() != reflect.Slice {
			return nil, InvalidArgumentError{Detail: fmt.Sprintf("bulk column for component %d is not a slice", uint64(col.Component))}
		}
		if values.Len() != load.RowCount {
			return nil, fmt.Errorf("archway: bulk column for component %d has %d values, want %d", uint64(col.Component), values.Len(), load.RowCount)
		}
		if allFreshContiguous {
			if err := copyBulkColumn(dst.table, rows[0], col); err != nil {
				return nil, err
			}
			continue
		}
		for i := 0; i < load.RowCount; i++ {
			if !setBulkCell(dst.table, rows[i], values, i) {
				return nil, TypeMismatchError{Name: fmt.Sprintf("component %d", uint64(col.Component)), Expected: "matching table column", Got: values.Type().Elem()}
			}
		}
	}

	for i := 0; i < load.RowCount; i++ {
		if isNewRow[i] {
			w.fireNewEntity(dst, handles[i], Type(load.Components).LowIDs())
		}
	}
	return handles, nil
}

// isContiguousRun reports whether rows is exactly [rows[0], rows[0]+1,
// rows[0]+2, ...], the shape table.NewEntries hands back for a single
// batch call, which is what makes the single-reflect.Copy fast path in
// SetWData valid.
func isContiguousRun(rows []int) bool {
	for i := 1; i < len(rows); i++ {
		if rows[i] != rows[0]+i {
			return false
		}
	}
	return true
}

// setBulkCell writes values.Index(valueIndex) into dst's matching
// column at row, for the non-contiguous (mixed insert/update) path.
func setBulkCell(dst table.Table, row int, values reflect.Value, valueIndex int) bool {
	for _, rv := range dst.Rows() {
		dstCol := reflect.Value(rv)
		if dstCol.Type().Elem() != values.Type().Elem() {
			continue
		}
		dstCol.Index(row).Set(values.Index(valueIndex))
		return true
	}
	return false
}

// copyBulkColumn bulk-copies col.Values into dst's matching column
// starting at firstRow, using reflect.Copy so the whole batch moves in
// one call instead of element-by-element assignment.
func copyBulkColumn(dst table.Table, firstRow int, col BulkColumn) error {
	values := reflect.ValueOf(col.Values)
	if values.Kind() != reflect.Slice {
		return InvalidArgumentError{Detail: fmt.Sprintf("bulk column for component %d is not a slice", uint64(col.Component))}
	}
	for _, rv := range dst.Rows() {
		dstCol := reflect.Value(rv)
		if dstCol.Type().Elem() != values.Type().Elem() {
			continue
		}
		reflect.Copy(dstCol.Slice(firstRow, firstRow+values.Len()), values)
		return nil
	}
	return TypeMismatchError{Name: fmt.Sprintf("component %d", uint64(col.Component)), Expected: "matching table column", Got: values.Type().Elem()}
}
