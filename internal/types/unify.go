package types

// Join computes a ⊔ b, the join-semilattice operation Stage B uses to merge
// types flowing into a program point from multiple predecessors. It never
// returns an error: a join with no more specific rule widens to Union, and
// the caller decides whether a surviving Union at a function boundary is an
// error (AmbiguousInference).
func Join(a, b *TypeTerm) *TypeTerm {
	// Rule 1: T ⊔ T = T.
	if a.Equals(b) {
		return a
	}
	// Rule 2: T ⊔ Unknown = T (and symmetrically).
	if a.Kind == KindUnknown {
		return b
	}
	if b.Kind == KindUnknown {
		return a
	}
	// Rule 3: numeric widening.
	if a.IsNumeric() && b.IsNumeric() {
		return joinNumeric(a, b)
	}
	// Rule 4: element-wise container joins, same arity only.
	if a.Kind == b.Kind {
		switch a.Kind {
		case KindList:
			return List(Join(a.Elems[0], b.Elems[0]))
		case KindSet:
			return Set(Join(a.Elems[0], b.Elems[0]))
		case KindDict:
			return Dict(Join(a.Elems[0], b.Elems[0]), Join(a.Elems[1], b.Elems[1]))
		case KindTuple:
			if len(a.Elems) == len(b.Elems) {
				elems := make([]*TypeTerm, len(a.Elems))
				for i := range a.Elems {
					elems[i] = Join(a.Elems[i], b.Elems[i])
				}
				return Tuple(elems...)
			}
		}
	}
	// Rule 5: otherwise Union, flattening either side that is already one.
	return NewUnion(a, b)
}

// joinNumeric implements Bool ⊔ Int = Int; Int ⊔ Float = Float;
// Bool ⊔ Float = Float.
func joinNumeric(a, b *TypeTerm) *TypeTerm {
	rank := func(t *TypeTerm) int {
		switch t.Kind {
		case KindBool:
			return 0
		case KindInt:
			return 1
		case KindFloat:
			return 2
		}
		return -1
	}
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

// JoinConfidence combines the confidences of two terms contributing to a
// join: the minimum over the chain, further discounted by 0.9 per numeric
// coercion (a join that actually widens the numeric kind, not a same-kind
// join).
func JoinConfidence(a, b Inferred) float64 {
	conf := a.Confidence
	if b.Confidence < conf {
		conf = b.Confidence
	}
	if a.Term.IsNumeric() && b.Term.IsNumeric() && !a.Term.Equals(b.Term) {
		conf *= 0.9
	}
	return conf
}

// IsAmbiguousAtBoundary reports whether t, appearing as a function parameter
// or return type after Stage B completes, constitutes an AmbiguousInference
// error. Internal Unions inside a function body (comprehension
// intermediates) are not checked by this function; only boundary positions
// are.
func IsAmbiguousAtBoundary(t *TypeTerm) bool {
	return t.Kind == KindUnion
}
