package archway

import "testing"

type texprPos struct{ X, Y float64 }
type texprVel struct{ X, Y float64 }

func TestTypeToExprAndBackRoundTrip(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	pos := NewComponent[texprPos](w)
	vel := NewComponent[texprVel](w)

	typ := NewType(pos.ID, vel.ID)
	expr, err := TypeToExpr(typ, w.Names())
	if err != nil {
		t.Fatal(err)
	}

	back, err := TypeFromExpr(expr, w.Names())
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(typ) {
		t.Errorf("round trip mismatch: %v -> %q -> %v", typ, expr, back)
	}
}

func TestTypeToExprRelationIds(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	target := Handle(123)
	typ := NewType(InstanceOf(target))
	expr, err := TypeToExpr(typ, w.Names())
	if err != nil {
		t.Fatal(err)
	}
	if expr != "INSTANCEOF|123" {
		t.Errorf("TypeToExpr(INSTANCEOF|123) = %q, want \"INSTANCEOF|123\"", expr)
	}

	back, err := TypeFromExpr(expr, w.Names())
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(typ) {
		t.Errorf("round trip mismatch for relation id: %v -> %q -> %v", typ, expr, back)
	}
}

func TestTypeToExprUnregisteredIDErrors(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	typ := NewType(Handle(9999))
	if _, err := TypeToExpr(typ, w.Names()); err == nil {
		t.Error("expected error rendering an unregistered component id")
	}
}

func TestTypeFromExprUnknownNameErrors(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := TypeFromExpr("nonexistent", w.Names()); err == nil {
		t.Error("expected error parsing an unknown component name")
	}
}

func TestTypeFromExprEmptyIsNil(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	typ, err := TypeFromExpr("  ", w.Names())
	if err != nil {
		t.Fatal(err)
	}
	if len(typ) != 0 {
		t.Errorf("TypeFromExpr(blank) = %v, want empty", typ)
	}
}

func TestTypeFromExprBadRelationErrors(t *testing.T) {
	w, err := NewWorld(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := TypeFromExpr("BOGUS|1", w.Names()); err == nil {
		t.Error("expected error for unknown relation keyword")
	}
}
