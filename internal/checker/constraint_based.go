package checker

import (
	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/collect"
	"github.com/funvibe/typecore/internal/diagnostic"
	"github.com/funvibe/typecore/internal/scope"
	"github.com/funvibe/typecore/internal/types"
	"github.com/funvibe/typecore/internal/unify"
)

// ConstraintBased collects the full constraint set for an expression, then
// solves it in one pass and applies the resulting substitution — the
// collect -> solve -> apply -> verify strategy described in section 4.I.
type ConstraintBased struct{}

var _ Checker = ConstraintBased{}

func (ConstraintBased) Check(expr ast.Expression, tc *scope.TypeContext) (*TypedExpression, error) {
	ctx := scope.FromTypeContext(tc)
	reporter := diagnostic.NewReporter()
	collector := collect.New(reporter)

	inferred, cs := collector.Collect(expr, ctx)

	sigma, derr := unify.Solve(cs.Dedup())
	if derr != nil {
		reporter.Add(translateUnify(derr, expr.GetPos()))
	}
	if reporter.HasErrors() {
		return nil, reporter.AsError()
	}
	return &TypedExpression{Expr: expr, Type: sigma.Apply(inferred), UnitID: newUnitID()}, nil
}

func (ConstraintBased) CheckWithExpected(expr ast.Expression, expected types.Type, tc *scope.TypeContext) (*TypedExpression, error) {
	ctx := scope.FromTypeContext(tc)
	reporter := diagnostic.NewReporter()
	collector := collect.New(reporter)

	inferred, cs := collector.CollectChecking(expr, expected, ctx)

	sigma, derr := unify.Solve(cs.Dedup())
	if derr != nil {
		reporter.Add(translateUnify(derr, expr.GetPos()))
		return nil, reporter.AsError()
	}
	if reporter.HasErrors() {
		return nil, reporter.AsError()
	}

	actual := sigma.Apply(inferred)
	wantType := sigma.Apply(expected)
	if !types.StructuralEquals(actual, wantType) && !types.IsSubtype(actual, wantType) {
		return nil, diagnostic.New(diagnostic.TypeMismatch, expr.GetPos(),
			"expected "+wantType.String()+", got "+actual.String())
	}
	return &TypedExpression{Expr: expr, Type: actual, UnitID: newUnitID()}, nil
}
