package archway

import (
	"fmt"
	"strings"
)

// SourceKind is the source a signature column reads from.
type SourceKind int

const (
	SourceSelf SourceKind = iota
	SourceOwned
	SourceShared
	SourceContainer
	SourceSystem
	SourceEntity
	SourceEmpty
	SourceCascade
)

func (k SourceKind) String() string {
	switch k {
	case SourceSelf:
		return "SELF"
	case SourceOwned:
		return "OWNED"
	case SourceShared:
		return "SHARED"
	case SourceContainer:
		return "CONTAINER"
	case SourceSystem:
		return "SYSTEM"
	case SourceEntity:
		return "ENTITY"
	case SourceEmpty:
		return "EMPTY"
	case SourceCascade:
		return "CASCADE"
	}
	return "?"
}

// Operator is a signature column's match requirement.
type Operator int

const (
	OpAnd Operator = iota
	OpOr
	OpNot
	OpOptional
)

// Column is one position in a Signature: a source kind, an operator, and
// the payload of one or more component ids. OR columns carry more than
// one id in Ids, unioned; every other operator carries exactly one.
type Column struct {
	Kind   SourceKind
	Op     Operator
	Ids    []Handle
	Entity Handle // fixed foreign entity, only meaningful when Kind == SourceEntity
}

// Signature is the ordered column list a query matches tables against.
type Signature struct {
	Columns []Column
}

// NewSignature builds a signature from already-constructed columns, the
// idiomatic-Go alternative to parsing the text grammar.
func NewSignature(columns ...Column) Signature {
	return Signature{Columns: append([]Column(nil), columns...)}
}

// Self/Owned/Shared/Container/System/Empty/Cascade build single-id AND
// columns of the matching source kind. FromEntity builds a fixed-foreign-
// entity column. Not and Optional turn a built column into NOT or
// OPTIONAL; Or builds an OR column from several ids of one kind.
func Self(id Handle) Column      { return Column{Kind: SourceSelf, Op: OpAnd, Ids: []Handle{id}} }
func Owned(id Handle) Column     { return Column{Kind: SourceOwned, Op: OpAnd, Ids: []Handle{id}} }
func Shared(id Handle) Column    { return Column{Kind: SourceShared, Op: OpAnd, Ids: []Handle{id}} }
func Container(id Handle) Column { return Column{Kind: SourceContainer, Op: OpAnd, Ids: []Handle{id}} }
func System(id Handle) Column    { return Column{Kind: SourceSystem, Op: OpAnd, Ids: []Handle{id}} }
func Empty(id Handle) Column     { return Column{Kind: SourceEmpty, Op: OpAnd, Ids: []Handle{id}} }
func Cascade(id Handle) Column   { return Column{Kind: SourceCascade, Op: OpAnd, Ids: []Handle{id}} }

func FromEntity(e Handle, id Handle) Column {
	return Column{Kind: SourceEntity, Op: OpAnd, Entity: e, Ids: []Handle{id}}
}

// Not turns c into a NOT column (T must not contain the component, for
// its source kind).
func Not(c Column) Column {
	c.Op = OpNot
	return c
}

// Optional turns c into an OPTIONAL column: it always matches, and its
// data may be absent (column index 0).
func Optional(c Column) Column {
	c.Op = OpOptional
	return c
}

// Or builds one OR column from same-kind single-id columns: at least one
// variant must match according to its source kind.
func Or(cols ...Column) Column {
	if len(cols) == 0 {
		panic("archway: Or requires at least one column")
	}
	out := Column{Kind: cols[0].Kind, Op: OpOr}
	for _, c := range cols {
		if c.Kind != out.Kind {
			panic("archway: Or requires columns of the same source kind")
		}
		out.Ids = append(out.Ids, c.Ids...)
	}
	return out
}

// ParseSignature parses the text grammar:
//
//	column := [kind "."] ["!" | "?"] name ("|" name)*
//
// kind ∈ {SELF, OWNED, SHARED, CONTAINER, SYSTEM, CASCADE, entity-name},
// "!" = NOT, "?" = OPTIONAL, "|" = OR within one column, and the
// top-level "," separator is AND. NOT combined with OR is rejected as an
// ambiguous grammar. lookup resolves a bare name to a handle — it is
// usually the world's component-name registry, but ParseSignature itself
// knows nothing about a *World.
func ParseSignature(text string, lookup func(name string) (Handle, bool)) (Signature, error) {
	var sig Signature
	for _, raw := range strings.Split(text, ",") {
		part := strings.TrimSpace(raw)
		if part == "" {
			continue
		}
		col, err := parseColumn(part, lookup)
		if err != nil {
			return Signature{}, err
		}
		sig.Columns = append(sig.Columns, col)
	}
	return sig, nil
}

func parseColumn(part string, lookup func(string) (Handle, bool)) (Column, error) {
	kind := SourceSelf
	var fixedEntity Handle
	hasFixedEntity := false

	if dot := strings.Index(part, "."); dot >= 0 {
		kindText := strings.ToUpper(strings.TrimSpace(part[:dot]))
		rest := part[dot+1:]
		switch kindText {
		case "SELF":
			kind = SourceSelf
		case "OWNED":
			kind = SourceOwned
		case "SHARED":
			kind = SourceShared
		case "CONTAINER":
			kind = SourceContainer
		case "SYSTEM":
			kind = SourceSystem
		case "CASCADE":
			kind = SourceCascade
		default:
			target, ok := lookup(part[:dot])
			if !ok {
				return Column{}, fmt.Errorf("archway: unknown signature entity name %q", part[:dot])
			}
			kind = SourceEntity
			fixedEntity = target
			hasFixedEntity = true
		}
		part = rest
	}

	op := OpAnd
	switch {
	case strings.HasPrefix(part, "!"):
		op = OpNot
		part = part[1:]
	case strings.HasPrefix(part, "?"):
		op = OpOptional
		part = part[1:]
	}

	names := strings.Split(part, "|")
	if len(names) > 1 && op == OpNot {
		return Column{}, fmt.Errorf("archway: signature column %q combines NOT with OR, which is ambiguous", part)
	}
	ids := make([]Handle, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return Column{}, fmt.Errorf("archway: empty component name in signature column %q", part)
		}
		id, ok := lookup(n)
		if !ok {
			return Column{}, fmt.Errorf("archway: unknown signature component name %q", n)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return Column{}, fmt.Errorf("archway: empty signature column")
	}
	col := Column{Kind: kind, Op: op, Ids: ids}
	if hasFixedEntity {
		col.Kind = SourceEntity
		col.Entity = fixedEntity
	} else if len(ids) > 1 {
		col.Op = OpOr
	}
	return col, nil
}
