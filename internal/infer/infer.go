// Package infer implements the two-stage type inference engine: Stage A
// collects declaration-driven signatures from annotations, Stage B runs a
// flow-sensitive worklist dataflow pass over each function body, refining
// every local to a concrete TypeTerm via the join-semilattice unification
// rules in internal/types.
package infer

import (
	"fmt"

	"github.com/sunholo/mgenc/internal/ast"
	"github.com/sunholo/mgenc/internal/errors"
	"github.com/sunholo/mgenc/internal/types"
)

// returnKey is the sentinel environment key recording the join of every
// reachable Return node's value type.
const returnKey = "__return__"

// Env maps local/parameter names (plus returnKey) to their current Inferred
// term during Stage B's dataflow pass.
type Env map[string]types.Inferred

// Clone returns a shallow copy, used when forking environments across
// branches that must be joined back together at a merge point.
func (e Env) Clone() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Join merges two environments produced by divergent branches: every
// variable present in either side is joined; a variable missing from one
// side is treated as Unknown there (conditionally defined locals widen to
// whatever the other branch saw).
func Join(a, b Env) Env {
	out := make(Env, len(a)+len(b))
	seen := map[string]bool{}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			bv = types.Inferred{Term: types.Unknown, Confidence: 1.0, Origin: types.OriginUsageConstraint}
		}
		out[k] = Inferred(types.Join(av.Term, bv.Term), types.JoinConfidence(av, bv))
		seen[k] = true
	}
	for k, bv := range b {
		if seen[k] {
			continue
		}
		out[k] = bv
	}
	return out
}

// Inferred builds an Inferred term with the usage-constraint origin, the
// default provenance for anything Stage B derives rather than Stage A reads
// off an annotation.
func Inferred(t *types.TypeTerm, confidence float64) types.Inferred {
	return types.Inferred{Term: t, Confidence: confidence, Origin: types.OriginUsageConstraint}
}

// Result is the inference output for one function.
type Result struct {
	Signature *types.FunctionSignature
	Locals    Env // every local's final Inferred term, keyed by name
}

// Engine runs Stage A then Stage B over a parsed module's functions.
type Engine struct {
	errs []*errors.Report
}

// New creates an inference Engine.
func New() *Engine { return &Engine{} }

// Errors returns every structured diagnostic raised while inferring.
func (e *Engine) Errors() []*errors.Report { return e.errs }

func (e *Engine) report(code, phase, msg string, pos ast.Pos) {
	e.errs = append(e.errs, &errors.Report{
		Schema:  "mgenc.error/v1",
		Code:    code,
		Phase:   phase,
		Message: msg,
		Span:    &ast.Span{Start: pos, End: pos},
	})
}

// InferFunction runs Stage A (signature collection from annotations) then
// Stage B (flow-sensitive dataflow) over f, returning the refined signature
// and final local environment.
func (e *Engine) InferFunction(f *ast.FuncDef) *Result {
	sig := e.stageA(f)
	env := e.seedEnv(f, sig)
	env = e.stageB(f.Body, env)

	ret, ok := env[returnKey]
	if !ok {
		ret = types.Annotated(types.None)
		ret.Origin = types.OriginReturnJoined
	}
	if sig.Return.Origin != types.OriginAnnotated {
		sig.Return = ret
	}
	for i, p := range f.Params {
		if sig.Params[i].Origin == types.OriginAnnotated {
			continue
		}
		if learned, ok := env[p.Name]; ok {
			sig.Params[i] = learned
		}
		if p.Name == "self" {
			continue
		}
		if sig.Params[i].Term.Kind == types.KindUnknown {
			e.report(errors.ANN001, "infer", fmt.Sprintf("function %q parameter %q has no annotation and its type could not be recovered from usage", f.Name, p.Name), p.Pos)
		}
	}
	if types.IsAmbiguousAtBoundary(sig.Return.Term) {
		e.report(errors.AMB001, "infer", fmt.Sprintf("function %q has an ambiguous return type %s at its boundary", f.Name, sig.Return.Term), f.Pos)
	}
	for i, p := range sig.Params {
		if types.IsAmbiguousAtBoundary(p.Term) {
			e.report(errors.AMB001, "infer", fmt.Sprintf("function %q parameter %d has an ambiguous type %s at its boundary", f.Name, i, p.Term), f.Pos)
		}
	}

	delete(env, returnKey)
	return &Result{Signature: sig, Locals: env}
}

// stageA builds the confidence-1.0 signature from surface annotations.
// Unannotated parameters ("self", or any parameter whose type Stage B can
// recover from usage) start at Unknown and are refined by Stage B.
func (e *Engine) stageA(f *ast.FuncDef) *types.FunctionSignature {
	sig := &types.FunctionSignature{Name: f.Name}
	for _, param := range f.Params {
		if param.Annotation == nil {
			sig.Params = append(sig.Params, types.Inferred{Term: types.Unknown, Confidence: 0.0, Origin: types.OriginUsageConstraint})
			continue
		}
		t, err := typeExprToTerm(param.Annotation)
		if err != nil {
			e.report(errors.SYN007, "infer", err.Error(), param.Pos)
			t = types.Unknown
		}
		sig.Params = append(sig.Params, types.Annotated(t))
	}
	if f.ReturnType != nil {
		t, err := typeExprToTerm(f.ReturnType)
		if err != nil {
			e.report(errors.SYN007, "infer", err.Error(), f.Pos)
			t = types.Unknown
		}
		sig.Return = types.Annotated(t)
	} else {
		sig.Return = types.Inferred{Term: types.Unknown, Confidence: 0.0, Origin: types.OriginUsageConstraint}
	}
	return sig
}

// seedEnv initializes Stage B's starting environment from the Stage A
// signature.
func (e *Engine) seedEnv(f *ast.FuncDef, sig *types.FunctionSignature) Env {
	env := Env{}
	for i, param := range f.Params {
		env[param.Name] = sig.Params[i]
	}
	return env
}

// typeExprToTerm converts a surface TypeExpr annotation into a TypeTerm.
func typeExprToTerm(te ast.TypeExpr) (*types.TypeTerm, error) {
	nt, ok := te.(*ast.NamedTypeExpr)
	if !ok {
		return nil, fmt.Errorf("unsupported type annotation shape %T", te)
	}
	switch nt.Name {
	case "int":
		return types.Int, nil
	case "float":
		return types.Float, nil
	case "bool":
		return types.Bool, nil
	case "str":
		return types.Str, nil
	case "None":
		return types.None, nil
	case "list":
		if len(nt.Args) != 1 {
			return nil, fmt.Errorf("list[T] requires exactly one type argument")
		}
		elem, err := typeExprToTerm(nt.Args[0])
		if err != nil {
			return nil, err
		}
		return types.List(elem), nil
	case "set":
		if len(nt.Args) != 1 {
			return nil, fmt.Errorf("set[T] requires exactly one type argument")
		}
		elem, err := typeExprToTerm(nt.Args[0])
		if err != nil {
			return nil, err
		}
		return types.Set(elem), nil
	case "dict":
		if len(nt.Args) != 2 {
			return nil, fmt.Errorf("dict[K, V] requires exactly two type arguments")
		}
		key, err := typeExprToTerm(nt.Args[0])
		if err != nil {
			return nil, err
		}
		val, err := typeExprToTerm(nt.Args[1])
		if err != nil {
			return nil, err
		}
		return types.Dict(key, val), nil
	case "tuple":
		elems := make([]*types.TypeTerm, len(nt.Args))
		for i, a := range nt.Args {
			t, err := typeExprToTerm(a)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return types.Tuple(elems...), nil
	default:
		return nil, fmt.Errorf("unknown type name %q", nt.Name)
	}
}
