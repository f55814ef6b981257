package unify

import (
	"testing"

	"github.com/funvibe/typecore/internal/types"
)

func TestUnifyReflexive(t *testing.T) {
	i := types.Primitive{Name: "Int"}
	s, err := Unify(i, i)
	if err != nil {
		t.Fatalf("Unify(Int,Int) failed: %v", err)
	}
	if len(s) != 0 {
		t.Errorf("reflexive unification should produce the empty substitution, got %v", s)
	}
}

func TestUnifyBindsVariable(t *testing.T) {
	v := types.Var{ID: "t1"}
	target := types.Primitive{Name: "Int"}
	s, err := Unify(v, target)
	if err != nil {
		t.Fatalf("Unify(Var,Int) failed: %v", err)
	}
	got := s.Apply(v)
	if !types.StructuralEquals(got, target) {
		t.Errorf("expected t1 bound to Int, got %s", got)
	}
}

// S6: unify(Var("T1"), Function([Var("T1")], Int)) -> InfiniteType.
func TestUnifyOccursCheckRejectsInfiniteType(t *testing.T) {
	v := types.Var{ID: "T1"}
	fn := types.Function{Params: []types.Type{v}, Ret: types.Primitive{Name: "Int"}}
	_, err := Unify(v, fn)
	if err == nil {
		t.Fatal("expected an occurs-check failure, got nil error")
	}
	uerr, ok := err.(*Error)
	if !ok || uerr.Code != InfiniteType {
		t.Errorf("expected InfiniteType, got %v", err)
	}
}

func TestUnifyPrimitiveMismatch(t *testing.T) {
	_, err := Unify(types.Primitive{Name: "Int"}, types.Primitive{Name: "String"})
	if err == nil {
		t.Fatal("expected Int and String to fail unification")
	}
	if uerr, ok := err.(*Error); !ok || uerr.Code != TypeMismatch {
		t.Errorf("expected TypeMismatch, got %v", err)
	}
}

func TestUnifyFunctionArityMismatch(t *testing.T) {
	a := types.Function{Params: []types.Type{types.Primitive{Name: "Int"}}, Ret: types.Primitive{Name: "Int"}}
	b := types.Function{Params: []types.Type{}, Ret: types.Primitive{Name: "Int"}}
	_, err := Unify(a, b)
	if err == nil {
		t.Fatal("expected arity mismatch error")
	}
	if uerr, ok := err.(*Error); !ok || uerr.Code != ArityMismatch {
		t.Errorf("expected ArityMismatch, got %v", err)
	}
}

func TestUnifyFunctionComponentwise(t *testing.T) {
	v1, v2 := types.Var{ID: "t1"}, types.Var{ID: "t2"}
	a := types.Function{Params: []types.Type{v1}, Ret: v2}
	b := types.Function{Params: []types.Type{types.Primitive{Name: "Int"}}, Ret: types.Primitive{Name: "Boolean"}}
	s, err := Unify(a, b)
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	if !types.StructuralEquals(s.Apply(v1), types.Primitive{Name: "Int"}) {
		t.Errorf("expected t1 = Int, got %s", s.Apply(v1))
	}
	if !types.StructuralEquals(s.Apply(v2), types.Primitive{Name: "Boolean"}) {
		t.Errorf("expected t2 = Boolean, got %s", s.Apply(v2))
	}
}

func TestUnifyTupleArityMismatch(t *testing.T) {
	a := types.Tuple{Elems: []types.Type{types.Primitive{Name: "Int"}}}
	b := types.Tuple{Elems: []types.Type{types.Primitive{Name: "Int"}, types.Primitive{Name: "String"}}}
	_, err := Unify(a, b)
	if err == nil {
		t.Fatal("expected tuple arity mismatch")
	}
}

func TestUnifyGenericRequiresMatchingNameAndArity(t *testing.T) {
	a := types.Generic{Name: "List", Args: []types.Type{types.Primitive{Name: "Int"}}}
	b := types.Generic{Name: "Set", Args: []types.Type{types.Primitive{Name: "Int"}}}
	if _, err := Unify(a, b); err == nil {
		t.Error("List<Int> and Set<Int> should not unify: different names")
	}
}

func TestUnifyUnionComponentwise(t *testing.T) {
	v := types.Var{ID: "t1"}
	a := types.Union{Name: "Option", Args: []types.Type{v}}
	b := types.Union{Name: "Option", Args: []types.Type{types.Primitive{Name: "Int"}}}
	s, err := Unify(a, b)
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	if !types.StructuralEquals(s.Apply(v), types.Primitive{Name: "Int"}) {
		t.Errorf("expected t1 = Int, got %s", s.Apply(v))
	}
}

func TestUnifyNullableUnifiesBases(t *testing.T) {
	v := types.Var{ID: "t1"}
	a := types.NewNullable(v)
	b := types.NewNullable(types.Primitive{Name: "String"})
	s, err := Unify(a, b)
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	if !types.StructuralEquals(s.Apply(v), types.Primitive{Name: "String"}) {
		t.Errorf("expected t1 = String, got %s", s.Apply(v))
	}
}

// Invariant 3: if unify(a,b) = sigma, then apply(sigma,a) = apply(sigma,b).
func TestUnifySolutionMakesBothSidesEqual(t *testing.T) {
	v1, v2 := types.Var{ID: "t1"}, types.Var{ID: "t2"}
	a := types.Tuple{Elems: []types.Type{v1, types.Primitive{Name: "Int"}}}
	b := types.Tuple{Elems: []types.Type{types.Primitive{Name: "String"}, v2}}
	s, err := Unify(a, b)
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	if !types.StructuralEquals(s.Apply(a), s.Apply(b)) {
		t.Errorf("apply(sigma,a)=%s != apply(sigma,b)=%s", s.Apply(a), s.Apply(b))
	}
}

func TestBindSelfIsIdentity(t *testing.T) {
	v := types.Var{ID: "t1"}
	s, err := Unify(v, v)
	if err != nil {
		t.Fatalf("unifying a variable with itself should succeed, got %v", err)
	}
	if len(s) != 0 {
		t.Errorf("binding a variable to itself should be the identity substitution, got %v", s)
	}
}

func TestLegacyNamedVariableShapeUnifiesLikeVar(t *testing.T) {
	// Named{"T"} is treated as an inference variable by convention (a
	// single uppercase letter), per the spec's explicit backward
	// compatibility clause.
	named := types.Named{Name: "T"}
	target := types.Primitive{Name: "Int"}
	s, err := Unify(named, target)
	if err != nil {
		t.Fatalf("Unify(Named{T}, Int) failed: %v", err)
	}
	if !types.StructuralEquals(s.Apply(named), target) {
		t.Errorf("expected T bound to Int, got %s", s.Apply(named))
	}
}
