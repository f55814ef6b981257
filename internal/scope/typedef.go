// Package scope implements the two lexical-scope representations the
// checker needs: a persistent, parent-linked InferenceContext used by the
// constraint-based strategy, and an imperative, mutable ScopeManager used
// by the algorithmic strategy. Both are adapted from the teacher's
// internal/analyzer/inference.go (the InferenceContext struct shape) and
// its scope-save/restore discipline observed throughout
// internal/analyzer/declarations_patterns.go and inference_control.go,
// narrowed to what this checker's data model (types.Scheme, a flat union
// type-definition registry) actually needs — funxy's own InferenceContext
// additionally tracks modules, trait witnesses, and per-file state that has
// no home in this core.
package scope

import "github.com/funvibe/typecore/internal/types"

// VariantDef is one constructor of a union type: a name and its ordered,
// possibly type-parameterized field types.
type VariantDef struct {
	Name   string
	Fields []types.Type
}

func (v VariantDef) Arity() int { return len(v.Fields) }

// IsNullary reports whether this variant additionally behaves as an
// identifier-form constructor (no arguments, no parentheses needed).
func (v VariantDef) IsNullary() bool { return len(v.Fields) == 0 }

// UnionDef is a tagged-union type definition: an ordered list of type
// parameter names and an ordered list of variants.
type UnionDef struct {
	TypeParams []string
	Variants   []VariantDef
}

// VariantNames returns the full set of variant names declared by this
// union. The exhaustiveness check walks Variants directly and does not
// call it.
func (u UnionDef) VariantNames() map[string]bool {
	out := map[string]bool{}
	for _, v := range u.Variants {
		out[v.Name] = true
	}
	return out
}

// Find returns the variant with the given name, if any.
func (u UnionDef) Find(name string) (VariantDef, bool) {
	for _, v := range u.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return VariantDef{}, false
}

// FindVariantOwner searches a type-definition registry for the union that
// declares a variant with the given name, returning the owning union's
// name, its definition, and the variant itself.
func FindVariantOwner(defs map[string]UnionDef, variantName string) (unionName string, def UnionDef, variant VariantDef, ok bool) {
	for uname, udef := range defs {
		if v, found := udef.Find(variantName); found {
			return uname, udef, v, true
		}
	}
	return "", UnionDef{}, VariantDef{}, false
}

// TypeDefLookup is satisfied by both InferenceContext and ScopeManager.
// Logic that only needs to resolve a union type definition by name — type
// annotation resolution, the pattern checker's nullary-variant and
// exhaustiveness checks — is written once against this interface and
// serves both the constraint-based and algorithmic drivers, rather than
// being duplicated per strategy (spec section 9's anti-divergence note).
type TypeDefLookup interface {
	LookupTypeDefinition(name string) (UnionDef, bool)
}

// FunctionSig is a declared function's signature, kept separate from
// ordinary variable schemes. Neither the collector nor the algorithmic
// checker reads these signatures: identifiers and calls resolve only
// through variable schemes.
type FunctionSig struct {
	Params []types.Type
	Ret    types.Type
}
