package collect

import (
	"testing"

	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/diagnostic"
	"github.com/funvibe/typecore/internal/scope"
	"github.com/funvibe/typecore/internal/types"
	"github.com/funvibe/typecore/internal/unify"
)

func solve(t *testing.T, inferred types.Type, cs unify.ConstraintSet) types.Type {
	t.Helper()
	sigma, err := unify.Solve(cs.Dedup())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	return sigma.Apply(inferred)
}

// S1: typeCheck(IntLiteral(42), empty) -> Primitive("Int").
func TestCollectIntLiteral(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	inferred, cs := c.Collect(ast.IntLit{Value: 42}, scope.NewRoot())
	got := solve(t, inferred, cs)
	if !types.StructuralEquals(got, types.Primitive{Name: "Int"}) {
		t.Errorf("expected Int, got %s", got)
	}
}

// S2: typeCheck(Binary(+, IntLiteral(1), FloatLiteral(2.0)), empty) -> Double.
func TestCollectBinaryPromotion(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.Binary{Op: "+", Left: ast.IntLit{Value: 1}, Right: ast.FloatLit{Value: 2.0}}
	inferred, cs := c.Collect(expr, scope.NewRoot())
	got := solve(t, inferred, cs)
	if !types.StructuralEquals(got, types.Primitive{Name: "Double"}) {
		t.Errorf("expected Double, got %s", got)
	}
	if r.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", r.Diagnostics())
	}
}

// S3: If(true, 1, 2) -> Int.
func TestCollectIfBranchUnification(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.If{
		Cond: ast.BoolLit{Value: true},
		Then: ast.IntLit{Value: 1},
		Else: ast.IntLit{Value: 2},
	}
	inferred, cs := c.Collect(expr, scope.NewRoot())
	got := solve(t, inferred, cs)
	if !types.StructuralEquals(got, types.Primitive{Name: "Int"}) {
		t.Errorf("expected Int, got %s", got)
	}
}

// S3 negative: If(true, 1, "x") -> TypeMismatch.
func TestCollectIfBranchMismatchFails(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.If{
		Cond: ast.BoolLit{Value: true},
		Then: ast.IntLit{Value: 1},
		Else: ast.StringLit{Value: "x"},
	}
	inferred, cs := c.Collect(expr, scope.NewRoot())
	_, err := unify.Solve(cs.Dedup())
	if err == nil {
		t.Fatalf("expected branch mismatch to fail solving, inferred=%s", inferred)
	}
}

func TestCollectIfWithoutElseYieldsUnit(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.If{Cond: ast.BoolLit{Value: true}, Then: ast.IntLit{Value: 1}}
	inferred, cs := c.Collect(expr, scope.NewRoot())
	got := solve(t, inferred, cs)
	if !types.StructuralEquals(got, types.Primitive{Name: "Unit"}) {
		t.Errorf("expected Unit for a missing-else if, got %s", got)
	}
}

// S4: Given Option<T> = Some(T) | None, Constructor("Some",[1]) -> Option<Int>.
func TestCollectConstructorCallInfersGenericUnion(t *testing.T) {
	optionDef := scope.UnionDef{
		TypeParams: []string{"T"},
		Variants: []scope.VariantDef{
			{Name: "Some", Fields: []types.Type{types.Named{Name: "T"}}},
			{Name: "None"},
		},
	}
	ctx := scope.NewRoot().WithTypeDefinition("Option", optionDef)

	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.ConstructorCall{Name: "Some", Args: []ast.Expression{ast.IntLit{Value: 1}}}
	inferred, cs := c.Collect(expr, ctx)
	got := solve(t, inferred, cs)

	u, ok := got.(types.Union)
	if !ok || u.Name != "Option" {
		t.Fatalf("expected Union(Option,...), got %s", got)
	}
	if len(u.Args) != 1 || !types.StructuralEquals(u.Args[0], types.Primitive{Name: "Int"}) {
		t.Errorf("expected Option<Int>, got %s", got)
	}
}

func TestCollectConstructorArityMismatchReported(t *testing.T) {
	optionDef := scope.UnionDef{
		TypeParams: []string{"T"},
		Variants: []scope.VariantDef{
			{Name: "Some", Fields: []types.Type{types.Named{Name: "T"}}},
		},
	}
	ctx := scope.NewRoot().WithTypeDefinition("Option", optionDef)
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.ConstructorCall{Name: "Some", Args: []ast.Expression{ast.IntLit{Value: 1}, ast.IntLit{Value: 2}}}
	c.Collect(expr, ctx)
	if !r.HasErrors() {
		t.Fatal("expected an arity mismatch diagnostic")
	}
}

func TestCollectEmptyListDefaultsToUnit(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	inferred, cs := c.Collect(ast.ListLit{}, scope.NewRoot())
	got := solve(t, inferred, cs)
	want := types.Generic{Name: "List", Args: []types.Type{types.Primitive{Name: "Unit"}}}
	if !types.StructuralEquals(got, want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestCollectNonEmptyListUnifiesElements(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.ListLit{Elems: []ast.Expression{ast.IntLit{Value: 1}, ast.IntLit{Value: 2}, ast.IntLit{Value: 3}}}
	inferred, cs := c.Collect(expr, scope.NewRoot())
	got := solve(t, inferred, cs)
	want := types.Generic{Name: "List", Args: []types.Type{types.Primitive{Name: "Int"}}}
	if !types.StructuralEquals(got, want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestCollectListElementMismatchFails(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.ListLit{Elems: []ast.Expression{ast.IntLit{Value: 1}, ast.StringLit{Value: "x"}}}
	_, cs := c.Collect(expr, scope.NewRoot())
	if _, err := unify.Solve(cs.Dedup()); err == nil {
		t.Fatal("expected mixed-type list literal to fail unification")
	}
}

func TestCollectLambdaSynthesizesFunctionType(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.Lambda{Params: []string{"x"}, Body: ast.Binary{Op: "+", Left: ast.Identifier{Name: "x"}, Right: ast.IntLit{Value: 1}}}
	inferred, cs := c.Collect(expr, scope.NewRoot())
	got := solve(t, inferred, cs)
	fn, ok := got.(types.Function)
	if !ok {
		t.Fatalf("expected a Function type, got %s", got)
	}
	if len(fn.Params) != 1 {
		t.Fatalf("expected 1 param, got %d", len(fn.Params))
	}
	if !types.StructuralEquals(fn.Params[0], types.Primitive{Name: "Int"}) {
		t.Errorf("expected param : Int, got %s", fn.Params[0])
	}
	if !types.StructuralEquals(fn.Ret, types.Primitive{Name: "Int"}) {
		t.Errorf("expected return : Int, got %s", fn.Ret)
	}
}

func TestCollectCallArityMismatchReported(t *testing.T) {
	ctx := scope.NewRoot().WithVariable("f", types.Function{
		Params: []types.Type{types.Primitive{Name: "Int"}},
		Ret:    types.Primitive{Name: "Boolean"},
	})
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.Call{Callee: ast.Identifier{Name: "f"}, Args: []ast.Expression{}}
	c.Collect(expr, ctx)
	if !r.HasErrors() {
		t.Fatal("expected an arity mismatch diagnostic")
	}
	found := false
	for _, d := range r.Diagnostics() {
		if d.Kind == diagnostic.ArityMismatch {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ArityMismatch, got %v", r.Diagnostics())
	}
}

func TestCollectIdentifierInstantiatesPolymorphicScheme(t *testing.T) {
	scheme := types.Scheme{
		Quantified: map[string]bool{"a": true},
		Body:       types.Function{Params: []types.Type{types.Var{ID: "a"}}, Ret: types.Var{ID: "a"}},
	}
	ctx := scope.NewRoot().WithVariableScheme("identity", scheme)
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.Call{Callee: ast.Identifier{Name: "identity"}, Args: []ast.Expression{ast.IntLit{Value: 7}}}
	inferred, cs := c.Collect(expr, ctx)
	got := solve(t, inferred, cs)
	if !types.StructuralEquals(got, types.Primitive{Name: "Int"}) {
		t.Errorf("expected identity(7) : Int, got %s", got)
	}
}

func TestCollectPolymorphicSchemeUsesStayIndependent(t *testing.T) {
	scheme := types.Scheme{
		Quantified: map[string]bool{"a": true},
		Body:       types.Function{Params: []types.Type{types.Var{ID: "a"}}, Ret: types.Var{ID: "a"}},
	}
	ctx := scope.NewRoot().WithVariableScheme("identity", scheme)
	r := diagnostic.NewReporter()
	c := New(r)

	// identity applied at Int and at String in the same unit: each use must
	// get its own instantiation rather than sharing one through the
	// scheme's quantified name.
	expr := ast.TupleLit{Elems: []ast.Expression{
		ast.Call{Callee: ast.Identifier{Name: "identity"}, Args: []ast.Expression{ast.IntLit{Value: 7}}},
		ast.Call{Callee: ast.Identifier{Name: "identity"}, Args: []ast.Expression{ast.StringLit{Value: "s"}}},
	}}
	inferred, cs := c.Collect(expr, ctx)
	got := solve(t, inferred, cs)
	want := types.Tuple{Elems: []types.Type{types.Primitive{Name: "Int"}, types.Primitive{Name: "String"}}}
	if !types.StructuralEquals(got, want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestCollectUnresolvedIdentifierReportsError(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	c.Collect(ast.Identifier{Name: "nope"}, scope.NewRoot())
	if !r.HasErrors() {
		t.Fatal("expected an UnresolvedSymbol diagnostic")
	}
}

// For's resolved result type is the iterable's element type (DESIGN.md).
func TestCollectForYieldsElementType(t *testing.T) {
	ctx := scope.NewRoot().WithVariable("xs", types.Generic{Name: "List", Args: []types.Type{types.Primitive{Name: "String"}}})
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.For{Var: "x", Iterable: ast.Identifier{Name: "xs"}, Body: ast.Identifier{Name: "x"}}
	inferred, cs := c.Collect(expr, ctx)
	got := solve(t, inferred, cs)
	if !types.StructuralEquals(got, types.Primitive{Name: "String"}) {
		t.Errorf("expected For's result to be the element type String, got %s", got)
	}
}

func TestCollectWhileYieldsUnit(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.While{Cond: ast.BoolLit{Value: true}, Body: ast.IntLit{Value: 1}}
	inferred, cs := c.Collect(expr, scope.NewRoot())
	got := solve(t, inferred, cs)
	if !types.StructuralEquals(got, types.Primitive{Name: "Unit"}) {
		t.Errorf("expected Unit, got %s", got)
	}
}

func TestCollectBlockYieldsLastExpressionType(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.Block{Stmts: []ast.Statement{
		ast.ConstDecl{Name: "x", Value: ast.IntLit{Value: 5}},
		ast.ExprStmt{Expr: ast.Identifier{Name: "x"}},
	}}
	inferred, cs := c.Collect(expr, scope.NewRoot())
	got := solve(t, inferred, cs)
	if !types.StructuralEquals(got, types.Primitive{Name: "Int"}) {
		t.Errorf("expected Int, got %s", got)
	}
}

// A binding whose value's constraints pin a variable must not generalize
// over it: f fixed to (Int)->Int by its body rejects a String argument.
func TestCollectConstDeclDoesNotGeneralizeConstrainedVars(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.Block{Stmts: []ast.Statement{
		ast.ConstDecl{Name: "f", Value: ast.Lambda{
			Params: []string{"x"},
			Body:   ast.Binary{Op: "+", Left: ast.Identifier{Name: "x"}, Right: ast.IntLit{Value: 1}},
		}},
		ast.ExprStmt{Expr: ast.Call{Callee: ast.Identifier{Name: "f"}, Args: []ast.Expression{ast.StringLit{Value: "s"}}}},
	}}
	_, cs := c.Collect(expr, scope.NewRoot())
	if _, err := unify.Solve(cs.Dedup()); err == nil {
		t.Fatal("expected f(\"s\") to fail: f's parameter is pinned to Int by its body")
	}
}

// An unconstrained binding still generalizes: id used at Int and String in
// the same block.
func TestCollectConstDeclGeneralizesUnconstrainedLambda(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.Block{Stmts: []ast.Statement{
		ast.ConstDecl{Name: "id", Value: ast.Lambda{Params: []string{"x"}, Body: ast.Identifier{Name: "x"}}},
		ast.ExprStmt{Expr: ast.TupleLit{Elems: []ast.Expression{
			ast.Call{Callee: ast.Identifier{Name: "id"}, Args: []ast.Expression{ast.IntLit{Value: 1}}},
			ast.Call{Callee: ast.Identifier{Name: "id"}, Args: []ast.Expression{ast.StringLit{Value: "s"}}},
		}}},
	}}
	inferred, cs := c.Collect(expr, scope.NewRoot())
	got := solve(t, inferred, cs)
	want := types.Tuple{Elems: []types.Type{types.Primitive{Name: "Int"}, types.Primitive{Name: "String"}}}
	if !types.StructuralEquals(got, want) {
		t.Errorf("expected %s, got %s", want, got)
	}
	if r.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", r.Diagnostics())
	}
}

func TestCollectBlockEmptyYieldsUnit(t *testing.T) {
	r := diagnostic.NewReporter()
	c := New(r)
	inferred, cs := c.Collect(ast.Block{}, scope.NewRoot())
	got := solve(t, inferred, cs)
	if !types.StructuralEquals(got, types.Primitive{Name: "Unit"}) {
		t.Errorf("expected Unit for an empty block, got %s", got)
	}
}

// S5 through the collector: Option<Int> scrutinee, Some(x) -> x+1, None -> 0.
func TestCollectMatchExhaustiveOptionIsInt(t *testing.T) {
	optionDef := scope.UnionDef{
		TypeParams: []string{"T"},
		Variants: []scope.VariantDef{
			{Name: "Some", Fields: []types.Type{types.Named{Name: "T"}}},
			{Name: "None"},
		},
	}
	ctx := scope.NewRoot().WithTypeDefinition("Option", optionDef)
	ctx = ctx.WithVariable("opt", types.Union{Name: "Option", Args: []types.Type{types.Primitive{Name: "Int"}}})

	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.Match{
		Scrutinee: ast.Identifier{Name: "opt"},
		Cases: []ast.MatchCase{
			{
				Pattern: ast.ConstructorPattern{Name: "Some", Args: []ast.Pattern{ast.IdentifierPattern{Name: "x"}}},
				Body:    ast.Binary{Op: "+", Left: ast.Identifier{Name: "x"}, Right: ast.IntLit{Value: 1}},
			},
			{
				Pattern: ast.IdentifierPattern{Name: "None"},
				Body:    ast.IntLit{Value: 0},
			},
		},
	}
	inferred, cs := c.Collect(expr, ctx)
	got := solve(t, inferred, cs)
	if !types.StructuralEquals(got, types.Primitive{Name: "Int"}) {
		t.Errorf("expected Int, got %s", got)
	}
	if r.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", r.Diagnostics())
	}
}

func TestCollectMatchNonExhaustiveReportsError(t *testing.T) {
	optionDef := scope.UnionDef{
		TypeParams: []string{"T"},
		Variants: []scope.VariantDef{
			{Name: "Some", Fields: []types.Type{types.Named{Name: "T"}}},
			{Name: "None"},
		},
	}
	ctx := scope.NewRoot().WithTypeDefinition("Option", optionDef)
	ctx = ctx.WithVariable("opt", types.Union{Name: "Option", Args: []types.Type{types.Primitive{Name: "Int"}}})

	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.Match{
		Scrutinee: ast.Identifier{Name: "opt"},
		Cases: []ast.MatchCase{
			{
				Pattern: ast.ConstructorPattern{Name: "Some", Args: []ast.Pattern{ast.IdentifierPattern{Name: "x"}}},
				Body:    ast.Identifier{Name: "x"},
			},
		},
	}
	c.Collect(expr, ctx)
	found := false
	for _, d := range r.Diagnostics() {
		if d.Kind == diagnostic.NonExhaustiveMatch {
			found = true
		}
	}
	if !found {
		t.Errorf("expected NonExhaustiveMatch, got %v", r.Diagnostics())
	}
}

func TestCollectMatchGuardMustCheckBoolean(t *testing.T) {
	ctx := scope.NewRoot().WithVariable("n", types.Primitive{Name: "Int"})
	r := diagnostic.NewReporter()
	c := New(r)
	expr := ast.Match{
		Scrutinee: ast.Identifier{Name: "n"},
		Cases: []ast.MatchCase{
			{
				Pattern: ast.IdentifierPattern{Name: "x"},
				Guard:   ast.Binary{Op: ">", Left: ast.Identifier{Name: "x"}, Right: ast.IntLit{Value: 0}},
				Body:    ast.BoolLit{Value: true},
			},
		},
	}
	_, cs := c.Collect(expr, ctx)
	if _, err := unify.Solve(cs.Dedup()); err != nil {
		t.Errorf("a well-typed Boolean guard should solve cleanly, got %v", err)
	}
}

func TestBuildTypeResolvesPrimitivesAndGenerics(t *testing.T) {
	got := BuildType(ast.NamedTypeExpr{Name: "Int"}, scope.NewRoot())
	if !types.StructuralEquals(got, types.Primitive{Name: "Int"}) {
		t.Errorf("expected Int, got %s", got)
	}
	nullable := BuildType(ast.NullableTypeExpr{Base: ast.NamedTypeExpr{Name: "String"}}, scope.NewRoot())
	want := types.NewNullable(types.Primitive{Name: "String"})
	if !types.StructuralEquals(nullable, want) {
		t.Errorf("expected %s, got %s", want, nullable)
	}
}
