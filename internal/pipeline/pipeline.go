// Package pipeline wires the checker's two strategies into the staged
// collect -> solve -> apply -> verify flow (spec section 4.I) over a whole
// compilation unit: a sequence of top-level expressions checked against one
// shared type context, with diagnostics accumulated across every stage
// rather than aborting at the first failure.
package pipeline

import (
	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/checker"
	"github.com/funvibe/typecore/internal/diagnostic"
	"github.com/funvibe/typecore/internal/scope"
)

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors to collect diagnostics from all stages
		// (e.g. a later stage still wants every earlier expression's result).
	}
	return ctx
}

// Processor is one stage of the pipeline: given the context so far, produce
// the context for the next stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext threads through every stage of one compilation unit's
// type-checking run: the expressions still to be checked, the type context
// they are checked against, and the results and diagnostics accumulated so
// far.
type PipelineContext struct {
	Exprs       []ast.Expression
	TypeContext *scope.TypeContext
	Results     []*checker.TypedExpression
	Diagnostics []*diagnostic.Diagnostic
}

// NewContext starts a fresh PipelineContext for checking exprs against tc.
func NewContext(exprs []ast.Expression, tc *scope.TypeContext) *PipelineContext {
	return &PipelineContext{Exprs: exprs, TypeContext: tc}
}

// CheckStage type-checks every expression in ctx.Exprs against
// ctx.TypeContext using one strategy, continuing past per-expression
// failures so a single bad expression does not hide diagnostics for its
// siblings — the accumulate-and-continue policy spec section 7 describes
// for the reporter also applies at the level of a whole compilation unit.
type CheckStage struct {
	Strategy checker.Checker
}

func (s CheckStage) Process(ctx *PipelineContext) *PipelineContext {
	for _, expr := range ctx.Exprs {
		res, err := s.Strategy.Check(expr, ctx.TypeContext)
		if err != nil {
			if d, ok := err.(*diagnostic.Diagnostic); ok {
				ctx.Diagnostics = append(ctx.Diagnostics, d)
			}
			continue
		}
		ctx.Results = append(ctx.Results, res)
	}
	return ctx
}
