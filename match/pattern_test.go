package match

import (
	"errors"
	"reflect"
	"testing"
)

func TestDuplicateBindingInTuple(t *testing.T) {
	_, err := NewTuplePat(Bind("n"), Bind("n"))
	var dup *DuplicateBinding
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateBinding, got %v", err)
	}
	if dup.Name != "n" {
		t.Fatalf("wrong name %q", dup.Name)
	}
}

func TestDuplicateBindingNested(t *testing.T) {
	inner := Must(NewVariantPat("AnI32", Bind("n")))
	_, err := NewRecordPat(false, FP("x", Bind("n")), FP("y", inner))
	var dup *DuplicateBinding
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateBinding, got %v", err)
	}

	// Deeper: a tuple inside a variant inside a tuple.
	deep := Must(NewVariantPat("Pair", Must(NewTuplePat(Bind("a"), Bind("b")))))
	if _, err = NewTuplePat(deep, Bind("b")); !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateBinding, got %v", err)
	}
}

func TestDuplicateRecordField(t *testing.T) {
	_, err := NewRecordPat(true, FP("x", Wild()), FP("x", Wild()))
	var dup *DuplicateField
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateField, got %v", err)
	}

	if _, err = NewRecord(F("x", Int(1)), F("x", Int(2))); !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateField for a Record value, got %v", err)
	}
}

func TestBadPatterns(t *testing.T) {
	var bad *BadPattern
	if _, err := NewVariantPat("", nil); !errors.As(err, &bad) {
		t.Fatalf("empty tag: %v", err)
	}
	if _, err := NewTuplePat(Bind("")); !errors.As(err, &bad) {
		t.Fatalf("empty binding name: %v", err)
	}
	if _, err := NewArm(Bind(""), nil, ""); !errors.As(err, &bad) {
		t.Fatalf("empty binding name in arm: %v", err)
	}
	if _, err := NewArm(nil, nil, ""); !errors.As(err, &bad) {
		t.Fatalf("nil pattern in arm: %v", err)
	}
	if _, err := NewTuplePat(Wild(), nil); !errors.As(err, &bad) {
		t.Fatalf("nil element: %v", err)
	}
}

func TestArityMismatchIsNotAConstructionError(t *testing.T) {
	p, err := NewTuplePat(Wild(), Wild(), Wild())
	if err != nil {
		t.Fatal(err)
	}
	if _, matched := Match(p, MustTuple(Int(1))); matched {
		t.Fatal("shouldn't have matched")
	}
}

func TestBindsOrder(t *testing.T) {
	p := Must(NewTuplePat(
		Bind("c"),
		Must(NewRecordPat(true, FP("x", Bind("a")), FP("y", Wild()))),
		Must(NewVariantPat("V", Bind("b")))))
	if got, want := p.Binds(), []string{"c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got, want := SortedBinds(p), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPatternStrings(t *testing.T) {
	p := Must(NewRecordPat(true,
		FP("x", Bind("n")),
		FP("y", Must(NewVariantPat("AnI32", Lit(Int(0)))))))
	if got, want := p.String(), `{x: n, y: AnI32(0), ..}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	v := MustRecord(F("x", Int(15)), F("y", MustVariant("Pair", MustTuple(Str("a"), Float(0.5)))))
	if got, want := v.String(), `{x: 15, y: Pair("a", 0.5)}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRecordEqualityIgnoresOrder(t *testing.T) {
	a := MustRecord(F("x", Int(1)), F("y", Unit("Nothing")))
	b := MustRecord(F("y", Unit("Nothing")), F("x", Int(1)))
	if !Equal(a, b) {
		t.Fatal("records should be equal")
	}
	if Equal(a, MustRecord(F("x", Int(1)))) {
		t.Fatal("records with different field sets should differ")
	}
}

func TestNilLiterals(t *testing.T) {
	var bad *BadPattern
	if _, err := NewArm(Lit(nil), nil, "x"); !errors.As(err, &bad) {
		t.Fatalf("nil literal: %v", err)
	}
	if err := Check(Lit(&Leaf{})); !errors.As(err, &bad) {
		t.Fatalf("empty literal: %v", err)
	}
	if _, err := NewTuplePat(Wild(), Lit(nil)); !errors.As(err, &bad) {
		t.Fatalf("nil literal element: %v", err)
	}
	if _, err := NewVariantPat("A", (*TuplePat)(nil)); !errors.As(err, &bad) {
		t.Fatalf("nil payload pattern: %v", err)
	}
	if _, err := NewRecordPat(false, FP("x", (*Binding)(nil))); !errors.As(err, &bad) {
		t.Fatalf("nil field pattern: %v", err)
	}
}

func TestNilValues(t *testing.T) {
	var bad *BadValue
	if _, err := NewVariant("A", (*Leaf)(nil)); !errors.As(err, &bad) {
		t.Fatalf("nil payload: %v", err)
	}
	if _, err := NewVariant("A", (*Record)(nil)); !errors.As(err, &bad) {
		t.Fatalf("nil record payload: %v", err)
	}
	if _, err := NewTuple(Int(1), (*Variant)(nil)); !errors.As(err, &bad) {
		t.Fatalf("nil element: %v", err)
	}
	if _, err := NewRecord(F("x", &Leaf{})); !errors.As(err, &bad) {
		t.Fatalf("empty leaf field: %v", err)
	}
	if _, err := NewLeaf((*Leaf)(nil)); !errors.As(err, &bad) {
		t.Fatalf("nil leaf: %v", err)
	}

	// A Unit still has no payload.
	if _, has := Unit("A").Payload(); has {
		t.Fatal("unit has a payload")
	}
}
