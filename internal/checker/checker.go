// Package checker implements the driver/strategy layer (spec section 4.I):
// two implementations sharing one capability interface, coordinating
// collect -> solve -> apply -> verify and translating failures into the
// tagged Diagnostic taxonomy (section 7).
package checker

import (
	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/diagnostic"
	"github.com/funvibe/typecore/internal/idgen"
	"github.com/funvibe/typecore/internal/scope"
	"github.com/funvibe/typecore/internal/token"
	"github.com/funvibe/typecore/internal/types"
	"github.com/funvibe/typecore/internal/unify"
)

// TypedExpression is the successful result of checking one expression: its
// original AST node, the type it resolved to, and an opaque
// correlation id (section 4.M) attached purely as metadata.
type TypedExpression struct {
	Expr   ast.Expression
	Type   types.Type
	UnitID string
}

// Checker is the one capability interface both strategies implement,
// matching section 9's explicit call for a single shared interface rather
// than divergent ad hoc entry points:
//
//	{check, checkWithExpected}
type Checker interface {
	Check(expr ast.Expression, tc *scope.TypeContext) (*TypedExpression, error)
	CheckWithExpected(expr ast.Expression, expected types.Type, tc *scope.TypeContext) (*TypedExpression, error)
}

// translateUnify maps a unify.Error onto the caller-facing Diagnostic
// taxonomy. The unifier's own error codes (TypeMismatch, InfiniteType,
// ArityMismatch, ConstraintSolvingFailed — spec section 4.E) are a
// narrower, internal vocabulary than section 7's Kind enum, which has no
// dedicated InfiniteType or ConstraintSolvingFailed entry; both fold into
// TypeMismatch here, the closest published kind.
// unify.Error carries only the mismatched types, not a source position, so
// the caller supplies loc from the expression that triggered the solve.
func translateUnify(err error, loc token.Position) *diagnostic.Diagnostic {
	uerr, ok := err.(*unify.Error)
	if !ok {
		return diagnostic.New(diagnostic.InvalidOperation, loc, err.Error())
	}
	switch uerr.Code {
	case unify.ArityMismatch:
		return diagnostic.New(diagnostic.ArityMismatch, loc, uerr.Error())
	default: // TypeMismatch, InfiniteType, ConstraintSolvingFailed
		return diagnostic.New(diagnostic.TypeMismatch, loc, uerr.Error())
	}
}

func newUnitID() string { return idgen.NewUnitID() }
