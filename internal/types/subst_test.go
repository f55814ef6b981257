package types

import "testing"

func TestApplyEmptyIsIdentity(t *testing.T) {
	cases := []Type{
		Primitive{Name: "Int"},
		Var{ID: "t1"},
		Generic{Name: "List", Args: []Type{Var{ID: "t1"}}},
		Function{Params: []Type{Var{ID: "t1"}}, Ret: Primitive{Name: "Boolean"}},
		NewNullable(Var{ID: "t1"}),
	}
	for _, tt := range cases {
		got := Empty().Apply(tt)
		if !StructuralEquals(got, tt) {
			t.Errorf("Empty().Apply(%s) = %s, want %s", tt, got, tt)
		}
	}
}

func TestComposeMatchesSequentialApply(t *testing.T) {
	a := Subst{"t2": Primitive{Name: "Double"}}
	b := Subst{"t1": Var{ID: "t2"}}
	composed := Compose(a, b)

	input := Generic{Name: "List", Args: []Type{Var{ID: "t1"}}}
	viaCompose := composed.Apply(input)
	viaSequential := a.Apply(b.Apply(input))

	if !StructuralEquals(viaCompose, viaSequential) {
		t.Errorf("Compose(a,b).Apply(t) = %s, want %s (= a.Apply(b.Apply(t)))", viaCompose, viaSequential)
	}
	want := Generic{Name: "List", Args: []Type{Primitive{Name: "Double"}}}
	if !StructuralEquals(viaCompose, want) {
		t.Errorf("Compose(a,b).Apply(t) = %s, want %s", viaCompose, want)
	}
}

func TestSingletonElidesIdentityBinding(t *testing.T) {
	s := Singleton("t1", Var{ID: "t1"})
	if len(s) != 0 {
		t.Errorf("Singleton(t1, Var{t1}) = %v, want empty (identity binding)", s)
	}
}

func TestApplySchemeSkipsQuantifiedVars(t *testing.T) {
	sc := Scheme{Quantified: map[string]bool{"t1": true}, Body: Function{Params: []Type{Var{ID: "t1"}}, Ret: Var{ID: "t2"}}}
	s := Subst{"t1": Primitive{Name: "String"}, "t2": Primitive{Name: "Int"}}
	got := s.ApplyScheme(sc)

	fn, ok := got.Body.(Function)
	if !ok {
		t.Fatalf("got.Body is %T, want Function", got.Body)
	}
	if !StructuralEquals(fn.Params[0], Var{ID: "t1"}) {
		t.Errorf("quantified var t1 was substituted: got %s", fn.Params[0])
	}
	if !StructuralEquals(fn.Ret, Primitive{Name: "Int"}) {
		t.Errorf("free var t2 was not substituted: got %s", fn.Ret)
	}
}

func TestApplyFixedPointThroughChain(t *testing.T) {
	s := Subst{"t1": Var{ID: "t2"}, "t2": Var{ID: "t3"}, "t3": Primitive{Name: "Long"}}
	got := s.Apply(Var{ID: "t1"})
	if !StructuralEquals(got, Primitive{Name: "Long"}) {
		t.Errorf("Apply chain t1->t2->t3->Long = %s, want Long", got)
	}
}

// A variable occurring in several sibling positions must be substituted at
// every occurrence, not just the first one visited.
func TestApplySubstitutesRepeatedOccurrences(t *testing.T) {
	s := Subst{"a": Primitive{Name: "Int"}}
	input := Function{Params: []Type{Var{ID: "a"}}, Ret: Var{ID: "a"}}
	got := s.Apply(input)
	want := Function{Params: []Type{Primitive{Name: "Int"}}, Ret: Primitive{Name: "Int"}}
	if !StructuralEquals(got, want) {
		t.Errorf("Apply((a)->a) = %s, want %s", got, want)
	}

	chained := Subst{"a": Var{ID: "b"}, "b": Primitive{Name: "String"}}
	tuple := Tuple{Elems: []Type{Var{ID: "a"}, Var{ID: "a"}, Var{ID: "b"}}}
	gotTuple := chained.Apply(tuple)
	wantTuple := Tuple{Elems: []Type{Primitive{Name: "String"}, Primitive{Name: "String"}, Primitive{Name: "String"}}}
	if !StructuralEquals(gotTuple, wantTuple) {
		t.Errorf("Apply((a, a, b)) = %s, want %s", gotTuple, wantTuple)
	}
}

func TestInstantiateSubstitutesEveryQuantifiedOccurrence(t *testing.T) {
	sc := Scheme{
		Quantified: map[string]bool{"a": true},
		Body:       Function{Params: []Type{Var{ID: "a"}}, Ret: Var{ID: "a"}},
	}
	got, subst := Instantiate(sc)
	if len(subst) != 1 {
		t.Fatalf("expected one fresh binding, got %v", subst)
	}
	fn, ok := got.(Function)
	if !ok {
		t.Fatalf("expected a Function, got %s", got)
	}
	if !StructuralEquals(fn.Params[0], fn.Ret) {
		t.Errorf("both occurrences of the quantified variable must map to the same fresh variable, got %s", got)
	}
	if name, _ := AsVariable(fn.Ret); name == "a" {
		t.Errorf("the quantified name must not leak into the instantiated body, got %s", got)
	}
}
