package archway

import (
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

type archetypeID uint32

// Archetype is the read-only public view of a table (C4): its identity
// and its column storage. Query nodes evaluate against it.
type Archetype interface {
	ID() uint32
	Type() Type
	Table() table.Table
}

// tableNode is a table (C4): it owns one column store, its sorted
// component-id type, its outgoing add/remove edges, and the query-match
// bookkeeping. Low-id edges use a dense slice (one entry per id below
// MaxComponents); high ids — including flag-bearing relation ids — use a
// map, since they don't fit a fixed-width index.
type tableNode struct {
	id    archetypeID
	typ   Type
	lowMask mask.Mask

	table table.Table

	addLow     []*tableNode
	addHigh    map[Handle]*tableNode
	removeLow  []*tableNode
	removeHigh map[Handle]*tableNode

	matchedQueries []*queryImpl

	hasBase    bool
	baseHandles []Handle
	hasParent  bool
	parentHandles []Handle
	isPrefab   bool
	isDisabled bool
}

func (n *tableNode) ID() uint32    { return uint32(n.id) }
func (n *tableNode) Type() Type    { return n.typ }
func (n *tableNode) Table() table.Table { return n.table }

// lowEdge/highEdge give uniform add[c]/remove[c] lookups regardless of
// which backing storage a given id lands in.
func (n *tableNode) lowEdgeAdd(id Handle) *tableNode {
	i := int(id.Target())
	if i < 0 || i >= len(n.addLow) {
		return nil
	}
	return n.addLow[i]
}

func (n *tableNode) setLowEdgeAdd(id Handle, dst *tableNode) {
	i := int(id.Target())
	for i >= len(n.addLow) {
		n.addLow = append(n.addLow, nil)
	}
	n.addLow[i] = dst
}

func (n *tableNode) lowEdgeRemove(id Handle) *tableNode {
	i := int(id.Target())
	if i < 0 || i >= len(n.removeLow) {
		return nil
	}
	return n.removeLow[i]
}

func (n *tableNode) setLowEdgeRemove(id Handle, dst *tableNode) {
	i := int(id.Target())
	for i >= len(n.removeLow) {
		n.removeLow = append(n.removeLow, nil)
	}
	n.removeLow[i] = dst
}

func isLowID(id Handle) bool {
	return id.Flag() == 0 && id.Target() < MaxComponents
}

func (n *tableNode) edgeAdd(id Handle) *tableNode {
	if isLowID(id) {
		return n.lowEdgeAdd(id)
	}
	if n.addHigh == nil {
		return nil
	}
	return n.addHigh[id]
}

func (n *tableNode) setEdgeAdd(id Handle, dst *tableNode) {
	if isLowID(id) {
		n.setLowEdgeAdd(id, dst)
		return
	}
	if n.addHigh == nil {
		n.addHigh = make(map[Handle]*tableNode)
	}
	n.addHigh[id] = dst
}

func (n *tableNode) edgeRemove(id Handle) *tableNode {
	if isLowID(id) {
		return n.lowEdgeRemove(id)
	}
	if n.removeHigh == nil {
		return nil
	}
	return n.removeHigh[id]
}

func (n *tableNode) setEdgeRemove(id Handle, dst *tableNode) {
	if isLowID(id) {
		n.setLowEdgeRemove(id, dst)
		return
	}
	if n.removeHigh == nil {
		n.removeHigh = make(map[Handle]*tableNode)
	}
	n.removeHigh[id] = dst
}

// unmatchQuery removes q from n's matched-queries bookkeeping, the
// inverse of query.go's tryBind registration.
func (n *tableNode) unmatchQuery(q *queryImpl) {
	for i, mq := range n.matchedQueries {
		if mq == q {
			n.matchedQueries = append(n.matchedQueries[:i], n.matchedQueries[i+1:]...)
			return
		}
	}
}

// deriveFlags recomputes hasBase/hasParent/isPrefab from typ, run once
// when the table is created.
func (n *tableNode) deriveFlags(disabledTag, prefabTag Handle) {
	n.baseHandles = n.baseHandles[:0]
	n.parentHandles = n.parentHandles[:0]
	for _, id := range n.typ {
		switch {
		case id.IsInstanceOf():
			n.baseHandles = append(n.baseHandles, id.Target())
		case id.IsChildOf():
			n.parentHandles = append(n.parentHandles, id.Target())
		case id == prefabTag:
			n.isPrefab = true
		case id == disabledTag:
			n.isDisabled = true
		}
	}
	n.hasBase = len(n.baseHandles) > 0
	n.hasParent = len(n.parentHandles) > 0
}

// buildElementTypes lists the reserved Handle/*Record columns plus one
// column per data-bearing id in typ, in the order newTableNode and a
// stage's shadow table both build their column store from. The two
// reserved columns let the column store answer "who is at this row" and
// "what main-stage record does this row belong to" in O(1).
func buildElementTypes(w *World, typ Type) []table.ElementType {
	elementTypes := []table.ElementType{w.handleElemType, w.recordElemType}
	for _, cid := range typ {
		if info, ok := w.components.byID(cid); ok {
			elementTypes = append(elementTypes, info.elementType)
		}
	}
	return elementTypes
}

func newTableNode(w *World, id archetypeID, typ Type) (*tableNode, error) {
	tbl, err := table.NewTableBuilder().
		WithSchema(w.schema).
		WithEntryIndex(w.entryIndex).
		WithElementTypes(buildElementTypes(w, typ)...).
		WithEvents(w.cfg.TableEvents).
		Build()
	if err != nil {
		return nil, err
	}
	n := &tableNode{id: id, typ: typ, table: tbl}
	for _, lid := range typ.LowIDs() {
		n.lowMask.Mark(uint32(lid.Target()))
	}
	// For every component id c already in typ, add[c] == n: adding an
	// already-owned component is a self-loop, established here as a real
	// graph edge rather than only emulated by traverse's Contains guard.
	for _, id := range typ {
		n.setEdgeAdd(id, n)
	}
	n.deriveFlags(w.disabledTag, w.prefabTag)
	return n, nil
}
