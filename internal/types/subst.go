package types

// Subst is a finite map from inference-variable names to type terms.
// Identity entries (v -> Var{v} or v -> Named{v}) are never stored: Bind
// (see the unify package) and Compose both elide them at the point of
// construction, per the spec's substitution contract.
type Subst map[string]Type

// Empty is the identity substitution.
func Empty() Subst { return Subst{} }

// Singleton builds a one-entry substitution, eliding it entirely if it
// would be an identity mapping.
func Singleton(name string, t Type) Subst {
	if isIdentityBinding(name, t) {
		return Subst{}
	}
	return Subst{name: t}
}

func isIdentityBinding(name string, t Type) bool {
	other, ok := AsVariable(t)
	return ok && other == name
}

// Apply replaces every free occurrence of a substituted variable in t with
// its bound term, recursing to a fixed point. The occurs-check discipline
// enforced at Bind time guarantees the domain is acyclic, but Apply still
// guards against runaway recursion defensively with a visited set, mirroring
// the teacher's ApplyWithCycleCheck.
func (s Subst) Apply(t Type) Type {
	return applyWithVisited(s, t, map[string]bool{})
}

func applyWithVisited(s Subst, t Type, visited map[string]bool) Type {
	if len(s) == 0 {
		return t
	}
	if name, ok := AsVariable(t); ok {
		bound, present := s[name]
		if !present {
			return t
		}
		if visited[name] {
			// Would only happen if Bind's occurs-check was bypassed; fail
			// safe by stopping the substitution here rather than looping.
			return t
		}
		// Mark only for the duration of this expansion: visited guards the
		// chain currently being followed, not the whole traversal, so a
		// variable occurring again in a sibling position is still
		// substituted.
		visited[name] = true
		out := applyWithVisited(s, bound, visited)
		delete(visited, name)
		return out
	}
	switch v := t.(type) {
	case Generic:
		return Generic{Name: v.Name, Args: applyAll(s, v.Args, visited)}
	case Tuple:
		return Tuple{Elems: applyAll(s, v.Elems, visited)}
	case Function:
		return Function{
			Params: applyAll(s, v.Params, visited),
			Ret:    applyWithVisited(s, v.Ret, visited),
		}
	case Nullable:
		return NewNullable(applyWithVisited(s, v.Base, visited))
	case Union:
		return Union{Name: v.Name, Args: applyAll(s, v.Args, visited)}
	default:
		return t
	}
}

func applyAll(s Subst, ts []Type, visited map[string]bool) []Type {
	if ts == nil {
		return nil
	}
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = applyWithVisited(s, t, visited)
	}
	return out
}

// ApplyScheme applies s to a scheme's body, skipping the scheme's own
// quantified variables (they are bound by the scheme, not free in the
// enclosing substitution's domain).
func (s Subst) ApplyScheme(sc Scheme) Scheme {
	if len(sc.Quantified) == 0 {
		return Scheme{Quantified: sc.Quantified, Body: s.Apply(sc.Body)}
	}
	restricted := s.filterOutNames(sc.Quantified)
	return Scheme{Quantified: sc.Quantified, Body: restricted.Apply(sc.Body)}
}

func (s Subst) filterOutNames(names map[string]bool) Subst {
	out := Subst{}
	for k, v := range s {
		if !names[k] {
			out[k] = v
		}
	}
	return out
}

// Compose returns a substitution equivalent to applying b then a:
// Compose(a, b).Apply(t) == a.Apply(b.Apply(t)).
func Compose(a, b Subst) Subst {
	out := Subst{}
	for v, t := range b {
		mapped := a.Apply(t)
		if isIdentityBinding(v, mapped) {
			continue
		}
		out[v] = mapped
	}
	for v, t := range a {
		if _, inB := b[v]; inB {
			continue
		}
		if isIdentityBinding(v, t) {
			continue
		}
		out[v] = t
	}
	return out
}

// Filter returns the subset of s whose keys satisfy pred.
func (s Subst) Filter(pred func(name string) bool) Subst {
	out := Subst{}
	for k, v := range s {
		if pred(k) {
			out[k] = v
		}
	}
	return out
}
