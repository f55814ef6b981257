package types

import (
	"strings"
	"sync"
)

// StructuralEquals is the single source of truth for type equality across
// every component in this module (unifier, pattern checker, collector,
// both checking strategies). No component may re-implement equality
// locally — the spec flags exactly that kind of divergence as a defect to
// avoid (see section 9, "dual strategies must share structuralEquals").
//
// Source locations are never part of a type term in this model, so
// equality here is purely structural already; the explicit function still
// exists (rather than relying on Go's == on interface values) because
// slice-bearing variants (Generic, Tuple, Function, Union) are not
// comparable with ==.
func StructuralEquals(a, b Type) bool {
	key := memoKey(a, b)
	if v, found := memo.Load(key); found {
		return v.(bool)
	}
	result := structuralEqualsUncached(a, b)
	memo.Store(key, result)
	return result
}

// memo caches StructuralEquals results keyed by the canonical renderings of
// both sides. It is process-wide and safe for concurrent use: sync.Map
// gives lock-free insertion with last-writer-wins semantics, and every
// value stored is a pure function of its key, so a redundant recomputation
// from a racing writer is harmless. This mirrors the spec's requirement
// that the intern cache and the structuralEquals memo table tolerate
// concurrent access in a multi-threaded host.
var memo sync.Map

// memoKey renders both terms with a per-variant tag at every nesting level.
// The display String() form is ambiguous for keying purposes — a Generic
// and a Union with the same name and args print identically, at the top
// level or anywhere inside a larger term — and keying on it would let a
// verdict cached for one variant answer for the other.
func memoKey(a, b Type) string {
	var sb strings.Builder
	writeMemoKey(&sb, a)
	sb.WriteByte(0)
	writeMemoKey(&sb, b)
	return sb.String()
}

func writeMemoKey(sb *strings.Builder, t Type) {
	switch v := t.(type) {
	case Primitive:
		sb.WriteString("p ")
		sb.WriteString(v.Name)
	case Named:
		sb.WriteString("n ")
		sb.WriteString(v.Name)
	case Var:
		sb.WriteString("v ")
		sb.WriteString(v.ID)
	case Generic:
		sb.WriteString("g ")
		sb.WriteString(v.Name)
		writeMemoKeyList(sb, v.Args)
	case Union:
		sb.WriteString("u ")
		sb.WriteString(v.Name)
		writeMemoKeyList(sb, v.Args)
	case Tuple:
		sb.WriteString("t")
		writeMemoKeyList(sb, v.Elems)
	case Function:
		sb.WriteString("f")
		writeMemoKeyList(sb, v.Params)
		sb.WriteString("->")
		writeMemoKey(sb, v.Ret)
	case Nullable:
		sb.WriteString("?")
		writeMemoKey(sb, v.Base)
	}
}

func writeMemoKeyList(sb *strings.Builder, ts []Type) {
	sb.WriteByte('[')
	for i, t := range ts {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeMemoKey(sb, t)
	}
	sb.WriteByte(']')
}

func structuralEqualsUncached(a, b Type) bool {
	switch av := a.(type) {
	case Primitive:
		bv, ok := b.(Primitive)
		return ok && av.Name == bv.Name
	case Named:
		bv, ok := b.(Named)
		return ok && av.Name == bv.Name
	case Var:
		bv, ok := b.(Var)
		return ok && av.ID == bv.ID
	case Generic:
		bv, ok := b.(Generic)
		return ok && av.Name == bv.Name && equalSlices(av.Args, bv.Args)
	case Tuple:
		bv, ok := b.(Tuple)
		return ok && equalSlices(av.Elems, bv.Elems)
	case Function:
		bv, ok := b.(Function)
		return ok && equalSlices(av.Params, bv.Params) && StructuralEquals(av.Ret, bv.Ret)
	case Nullable:
		bv, ok := b.(Nullable)
		return ok && StructuralEquals(av.Base, bv.Base)
	case Union:
		bv, ok := b.(Union)
		return ok && av.Name == bv.Name && equalSlices(av.Args, bv.Args)
	default:
		return false
	}
}

func equalSlices(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !StructuralEquals(a[i], b[i]) {
			return false
		}
	}
	return true
}

// wider returns the name of the numerically wider of two primitive names
// on the Int<Long<Float<Double chain. ok is false if either name is not
// numeric.
func wider(a, b string) (string, bool) {
	ra, oka := NumericRank(a)
	rb, okb := NumericRank(b)
	if !oka || !okb {
		return "", false
	}
	if ra >= rb {
		return a, true
	}
	return b, true
}

// Wider is the public, commutative-and-idempotent-on-the-chain helper
// described by the spec's invariant 6.
func Wider(a, b string) (string, bool) { return wider(a, b) }

// IsSubtype implements the minimal subtype relation: reflexivity, numeric
// widening, function contravariant parameters / covariant return,
// invariant generics, and the two nullable rules T <: T? and T? <: U => T
// <: U.
func IsSubtype(sub, sup Type) bool {
	if StructuralEquals(sub, sup) {
		return true
	}
	if subP, ok := sub.(Primitive); ok {
		if supP, ok := sup.(Primitive); ok {
			subR, subNumeric := NumericRank(subP.Name)
			supR, supNumeric := NumericRank(supP.Name)
			if subNumeric && supNumeric {
				return subR <= supR
			}
		}
	}
	if subN, ok := sub.(Nullable); ok {
		if supN, ok := sup.(Nullable); ok {
			return IsSubtype(subN.Base, supN.Base)
		}
		// T? <: U  iff  T <: U, per the spec's explicit nullable rule.
		return IsSubtype(subN.Base, sup)
	}
	if supN, ok := sup.(Nullable); ok {
		// T <: T?
		return IsSubtype(sub, supN.Base)
	}
	if subF, ok := sub.(Function); ok {
		if supF, ok := sup.(Function); ok {
			if len(subF.Params) != len(supF.Params) {
				return false
			}
			for i := range subF.Params {
				// Contravariant: supertype's param must be a subtype of
				// the subtype's param.
				if !IsSubtype(supF.Params[i], subF.Params[i]) {
					return false
				}
			}
			return IsSubtype(subF.Ret, supF.Ret)
		}
	}
	if subG, ok := sub.(Generic); ok {
		if supG, ok := sup.(Generic); ok {
			if subG.Name != supG.Name || len(subG.Args) != len(supG.Args) {
				return false
			}
			for i := range subG.Args {
				// Generics are invariant: exact structural equality per
				// argument, not subtype-compatible.
				if !StructuralEquals(subG.Args[i], supG.Args[i]) {
					return false
				}
			}
			return true
		}
	}
	return false
}

// AreCompatible permits Generic(name,args) and Union(name,args) of matching
// arity to be treated as convertible, with Named components treated as
// type variables (i.e. compatible with anything) for the purpose of this
// relaxed comparison. This is strictly looser than StructuralEquals; nothing
// in this module calls it, and the unifier does not use it.
func AreCompatible(a, b Type) bool {
	name, args, ok := genericOrUnionShape(a)
	if !ok {
		return StructuralEquals(a, b)
	}
	bname, bargs, ok := genericOrUnionShape(b)
	if !ok || name != bname || len(args) != len(bargs) {
		return false
	}
	for i := range args {
		if _, isNamed := args[i].(Named); isNamed {
			continue
		}
		if _, isNamed := bargs[i].(Named); isNamed {
			continue
		}
		if !StructuralEquals(args[i], bargs[i]) {
			return false
		}
	}
	return true
}

func genericOrUnionShape(t Type) (name string, args []Type, ok bool) {
	switch v := t.(type) {
	case Generic:
		return v.Name, v.Args, true
	case Union:
		return v.Name, v.Args, true
	default:
		return "", nil, false
	}
}

// ValidationError describes why Validate rejected a type term.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate recursively checks that t is well-formed: primitive names are
// drawn from the closed built-in set, composite types are recursively
// valid, and a Generic("Result", [T, E]) has an E that is Throwable or a
// nominal name ending in Exception/Error.
func Validate(t Type) error {
	switch v := t.(type) {
	case Primitive:
		if !BuiltinPrimitives[v.Name] {
			return &ValidationError{Message: "unknown primitive type: " + v.Name}
		}
	case Named, Var:
		// always valid; identity/variable reference
	case Generic:
		for _, a := range v.Args {
			if err := Validate(a); err != nil {
				return err
			}
		}
		if v.Name == "Result" && len(v.Args) == 2 {
			if err := validateResultError(v.Args[1]); err != nil {
				return err
			}
		}
	case Tuple:
		for _, e := range v.Elems {
			if err := Validate(e); err != nil {
				return err
			}
		}
	case Function:
		for _, p := range v.Params {
			if err := Validate(p); err != nil {
				return err
			}
		}
		if err := Validate(v.Ret); err != nil {
			return err
		}
	case Nullable:
		return Validate(v.Base)
	case Union:
		for _, a := range v.Args {
			if err := Validate(a); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateResultError(e Type) error {
	switch v := e.(type) {
	case Primitive:
		if v.Name == "Throwable" {
			return nil
		}
	case Named:
		if endsWithAny(v.Name, "Exception", "Error") {
			return nil
		}
	case Var:
		return nil
	}
	return &ValidationError{Message: "Result error type must be Throwable or end in Exception/Error, got " + e.String()}
}

func endsWithAny(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if len(s) >= len(suf) && s[len(s)-len(suf):] == suf {
			return true
		}
	}
	return false
}
