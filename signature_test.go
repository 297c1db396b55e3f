package archway

import "testing"

func TestNewSignatureColumnOrder(t *testing.T) {
	a := Handle(1)
	b := Handle(2)
	sig := NewSignature(Self(a), Owned(b))
	if len(sig.Columns) != 2 {
		t.Fatalf("len(Columns) = %d, want 2", len(sig.Columns))
	}
	if sig.Columns[0].Kind != SourceSelf || sig.Columns[1].Kind != SourceOwned {
		t.Errorf("columns out of order or wrong kind: %+v", sig.Columns)
	}
}

func TestNotAndOptionalFlipOperator(t *testing.T) {
	id := Handle(3)
	col := Self(id)
	if col.Op != OpAnd {
		t.Fatalf("Self() default op = %v, want OpAnd", col.Op)
	}
	notCol := Not(col)
	if notCol.Op != OpNot || notCol.Kind != SourceSelf || len(notCol.Ids) != 1 || notCol.Ids[0] != id {
		t.Errorf("Not(Self(id)) = %+v, unexpected", notCol)
	}
	optCol := Optional(col)
	if optCol.Op != OpOptional {
		t.Errorf("Optional(Self(id)).Op = %v, want OpOptional", optCol.Op)
	}
	// Not must not mutate the original column's operator.
	if col.Op != OpAnd {
		t.Error("Not() mutated its argument's Op in place")
	}
}

func TestOrUnionsIdsOfSameKind(t *testing.T) {
	a, b, c := Handle(1), Handle(2), Handle(3)
	or := Or(Owned(a), Owned(b), Owned(c))
	if or.Kind != SourceOwned || or.Op != OpOr {
		t.Fatalf("Or(...) = %+v, want Kind=Owned Op=Or", or)
	}
	if len(or.Ids) != 3 || or.Ids[0] != a || or.Ids[1] != b || or.Ids[2] != c {
		t.Errorf("Or(...).Ids = %v, want [%d %d %d]", or.Ids, a, b, c)
	}
}

func TestOrPanicsOnMixedKinds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic mixing source kinds in Or")
		}
	}()
	Or(Self(1), Owned(2))
}

func TestOrPanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic calling Or with no columns")
		}
	}()
	Or()
}

func TestFromEntityColumn(t *testing.T) {
	e := Handle(10)
	id := Handle(20)
	col := FromEntity(e, id)
	if col.Kind != SourceEntity || col.Entity != e || len(col.Ids) != 1 || col.Ids[0] != id {
		t.Errorf("FromEntity(e, id) = %+v, unexpected", col)
	}
}

func lookupTable(names map[string]Handle) func(string) (Handle, bool) {
	return func(n string) (Handle, bool) {
		h, ok := names[n]
		return h, ok
	}
}

func TestParseSignatureBasic(t *testing.T) {
	names := map[string]Handle{"pos": 1, "vel": 2, "health": 3}
	lookup := lookupTable(names)

	sig, err := ParseSignature("pos, !vel, ?health", lookup)
	if err != nil {
		t.Fatal(err)
	}
	if len(sig.Columns) != 3 {
		t.Fatalf("len(Columns) = %d, want 3", len(sig.Columns))
	}
	if sig.Columns[0].Op != OpAnd || sig.Columns[0].Ids[0] != 1 {
		t.Errorf("column 0 = %+v, want AND(pos)", sig.Columns[0])
	}
	if sig.Columns[1].Op != OpNot || sig.Columns[1].Ids[0] != 2 {
		t.Errorf("column 1 = %+v, want NOT(vel)", sig.Columns[1])
	}
	if sig.Columns[2].Op != OpOptional || sig.Columns[2].Ids[0] != 3 {
		t.Errorf("column 2 = %+v, want OPTIONAL(health)", sig.Columns[2])
	}
}

func TestParseSignatureKindPrefix(t *testing.T) {
	names := map[string]Handle{"pos": 1}
	lookup := lookupTable(names)

	sig, err := ParseSignature("OWNED.pos", lookup)
	if err != nil {
		t.Fatal(err)
	}
	if len(sig.Columns) != 1 || sig.Columns[0].Kind != SourceOwned || sig.Columns[0].Ids[0] != 1 {
		t.Errorf("ParseSignature(OWNED.pos) = %+v, want Kind=Owned Ids=[1]", sig.Columns)
	}
}

func TestParseSignatureOrWithinColumn(t *testing.T) {
	names := map[string]Handle{"pos": 1, "vel": 2}
	lookup := lookupTable(names)

	sig, err := ParseSignature("pos|vel", lookup)
	if err != nil {
		t.Fatal(err)
	}
	col := sig.Columns[0]
	if col.Op != OpOr || len(col.Ids) != 2 || col.Ids[0] != 1 || col.Ids[1] != 2 {
		t.Errorf("ParseSignature(pos|vel) = %+v, want OR([1 2])", col)
	}
}

func TestParseSignatureFixedEntity(t *testing.T) {
	target := Handle(42)
	names := map[string]Handle{"pos": 1, "player": target}
	lookup := lookupTable(names)

	sig, err := ParseSignature("player.pos", lookup)
	if err != nil {
		t.Fatal(err)
	}
	col := sig.Columns[0]
	if col.Kind != SourceEntity || col.Entity != target || col.Ids[0] != 1 {
		t.Errorf("ParseSignature(player.pos) = %+v, want Entity=%d Ids=[1]", col, target)
	}
}

func TestParseSignatureNotOrIsAmbiguous(t *testing.T) {
	names := map[string]Handle{"pos": 1, "vel": 2}
	lookup := lookupTable(names)

	if _, err := ParseSignature("!pos|vel", lookup); err == nil {
		t.Error("expected error combining NOT with OR")
	}
}

func TestParseSignatureUnknownNameErrors(t *testing.T) {
	lookup := lookupTable(map[string]Handle{})
	if _, err := ParseSignature("missing", lookup); err == nil {
		t.Error("expected error for unknown component name")
	}
}

func TestParseSignatureEmptyPartsSkipped(t *testing.T) {
	names := map[string]Handle{"pos": 1}
	lookup := lookupTable(names)
	sig, err := ParseSignature("pos, , ", lookup)
	if err != nil {
		t.Fatal(err)
	}
	if len(sig.Columns) != 1 {
		t.Errorf("len(Columns) = %d, want 1 (blank parts skipped)", len(sig.Columns))
	}
}
