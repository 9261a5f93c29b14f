package types

import "testing"

func TestJoinSameType(t *testing.T) {
	if got := Join(Int, Int); got.String() != "Int" {
		t.Errorf("Int ⊔ Int = %s, want Int", got)
	}
}

func TestJoinUnknown(t *testing.T) {
	if got := Join(Int, Unknown); got.String() != "Int" {
		t.Errorf("Int ⊔ Unknown = %s, want Int", got)
	}
	if got := Join(Unknown, Str); got.String() != "Str" {
		t.Errorf("Unknown ⊔ Str = %s, want Str", got)
	}
}

func TestJoinNumericWidening(t *testing.T) {
	tests := []struct {
		name string
		a, b *TypeTerm
		want string
	}{
		{"bool_int", Bool, Int, "Int"},
		{"int_float", Int, Float, "Float"},
		{"bool_float", Bool, Float, "Float"},
		{"int_bool_reversed", Int, Bool, "Int"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Join(tt.a, tt.b); got.String() != tt.want {
				t.Errorf("%s ⊔ %s = %s, want %s", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestJoinContainersElementWise(t *testing.T) {
	a := List(Int)
	b := List(Float)
	got := Join(a, b)
	if got.String() != "List[Float]" {
		t.Errorf("List[Int] ⊔ List[Float] = %s, want List[Float]", got)
	}
}

func TestJoinFallsBackToUnion(t *testing.T) {
	got := Join(Str, Int)
	if got.Kind != KindUnion {
		t.Fatalf("Str ⊔ Int = %s, want a Union", got)
	}
	if len(got.Elems) != 2 {
		t.Errorf("expected 2 union members, got %d", len(got.Elems))
	}
}

func TestJoinFlattensNestedUnion(t *testing.T) {
	u := NewUnion(Int, Str)
	got := Join(u, Bool)
	// Bool has no rule-4 element-wise match against a Union, so rule 5 applies:
	// flatten u's members alongside Bool rather than nesting a Union in a Union.
	if got.Kind != KindUnion || len(got.Elems) != 3 {
		t.Errorf("expected flattened 3-member union, got %s", got)
	}
}

func TestIsAmbiguousAtBoundary(t *testing.T) {
	if IsAmbiguousAtBoundary(Int) {
		t.Error("Int should not be ambiguous")
	}
	if !IsAmbiguousAtBoundary(NewUnion(Int, Str)) {
		t.Error("Union[Int, Str] should be ambiguous at a boundary")
	}
}

func TestJoinConfidenceNumericCoercionDiscount(t *testing.T) {
	a := Annotated(Int)
	b := Annotated(Float)
	conf := JoinConfidence(a, b)
	if conf != 0.9 {
		t.Errorf("expected 0.9 after one numeric coercion, got %v", conf)
	}
}

func TestJoinConfidenceMinimumPropagates(t *testing.T) {
	a := Inferred{Term: Int, Confidence: 0.7, Origin: OriginUsageConstraint}
	b := Inferred{Term: Int, Confidence: 1.0, Origin: OriginAnnotated}
	if got := JoinConfidence(a, b); got != 0.7 {
		t.Errorf("expected min confidence 0.7, got %v", got)
	}
}
