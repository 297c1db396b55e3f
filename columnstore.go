package archway

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// cellFor returns a pointer (boxed as any) to row's cell for goType in
// tbl, or nil if tbl carries no such column. This is the untyped
// primitive the engine treats cells as bytes x size through; generic
// callers use AccessibleComponent[T] instead. It matches a value's
// reflect.Type against table.Table.Rows() to find the right column.
func cellFor(tbl table.Table, goType reflect.Type, row int) any {
	if goType == nil {
		return nil
	}
	for _, rv := range tbl.Rows() {
		if rv.Type().Elem() == goType {
			return reflect.Value(rv).Index(row).Addr().Interface()
		}
	}
	return nil
}

// growMainTable calls tbl.NewEntries(n) and raises the world's
// should-resolve flag: appending rows to a main-stage table can reallocate
// every one of its column backing arrays, which would strand any cached
// reference cell (matcher.go's reference.cell) in the old array. Every
// main-stage row-creation call site goes through this instead of calling
// table.Table.NewEntries directly.
func (w *World) growMainTable(tbl table.Table, n int) ([]table.Entry, error) {
	entries, err := tbl.NewEntries(n)
	if err != nil {
		return nil, err
	}
	w.shouldResolve = true
	return entries, nil
}

// transferToMainTable calls src.TransferEntries(dst, row) and raises the
// world's should-resolve flag for the same reason as growMainTable: the
// destination table's columns can reallocate to make room for the
// transferred row.
func (w *World) transferToMainTable(src, dst table.Table, row int) error {
	if err := src.TransferEntries(dst, row); err != nil {
		return err
	}
	w.shouldResolve = true
	return nil
}

func copyCell(dst, src any) {
	reflect.ValueOf(dst).Elem().Set(reflect.ValueOf(src).Elem())
}

// moveCells copies, for each component common to both types, one cell
// from src to dst. Components present on only one side are skipped.
func moveCells(w *World, srcTable, dstTable *tableNode, srcRow, dstRow int) {
	for _, id := range dstTable.typ {
		if !srcTable.typ.Contains(id) {
			continue
		}
		info, ok := w.components.byID(id)
		if !ok {
			continue // relation pseudo-id, no data column
		}
		srcCell := cellFor(srcTable.table, info.goType, srcRow)
		dstCell := cellFor(dstTable.table, info.goType, dstRow)
		if srcCell == nil || dstCell == nil {
			continue
		}
		copyCell(dstCell, srcCell)
	}
}

// swapRows swaps the content of every column (reserved + data) between
// r1 and r2 within the same table; moveBackAndSwap below is built on
// it. table.Table.Rows() hands back the live reflect.Value backing each
// column.
func swapRows(tbl table.Table, r1, r2 int) {
	if r1 == r2 {
		return
	}
	for _, rv := range tbl.Rows() {
		col := reflect.Value(rv)
		a := col.Index(r1)
		b := col.Index(r2)
		tmp := reflect.New(col.Type().Elem()).Elem()
		tmp.Set(a)
		a.Set(b)
		b.Set(tmp)
	}
}

// moveBackAndSwap rotates `count` rows starting at `row` one position to
// the left and places the row that was at `row` at `row+count-1`, one
// adjacent swap per step. SetWData does not call it.
func moveBackAndSwap(tbl table.Table, row, count int) {
	for i := 0; i+1 < count; i++ {
		swapRows(tbl, row+i, row+i+1)
	}
}
