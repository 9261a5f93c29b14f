package infer

import (
	"github.com/sunholo/mgenc/internal/ast"
	"github.com/sunholo/mgenc/internal/types"
)

// maxLoopFixpointIterations bounds the worklist pass over a loop body: two
// passes are enough to detect "the loop body doesn't change its own
// variables' types" for the structured subset this engine accepts, since a
// third pass over an already-stable environment is a no-op join.
const maxLoopFixpointIterations = 2

// stageB runs the flow-sensitive dataflow pass over a statement list,
// threading env through assignments and joining it back together at
// branches, and returns the environment reachable after the last statement.
// Returns are recorded by joining into env[returnKey] as they're reached;
// the caller is responsible for reading that key back out.
func (e *Engine) stageB(stmts []ast.Stmt, env Env) Env {
	for _, stmt := range stmts {
		env = e.stageBStmt(stmt, env)
	}
	return env
}

func (e *Engine) stageBStmt(stmt ast.Stmt, env Env) Env {
	switch s := stmt.(type) {
	case *ast.Assign:
		t, conf := e.exprType(s.Value, env)
		if name, ok := s.Target.(*ast.Identifier); ok {
			env = env.Clone()
			env[name.Name] = Inferred(t, conf)
		}
		return env

	case *ast.AugAssign:
		id, ok := s.Target.(*ast.Identifier)
		if !ok {
			return env
		}
		cur, known := env[id.Name]
		if !known {
			cur = types.Inferred{Term: types.Unknown, Confidence: 1.0}
		}
		rhsT, rhsConf := e.exprType(s.Value, env)
		joined := types.Join(cur.Term, rhsT)
		env = env.Clone()
		env[id.Name] = Inferred(joined, minConf(cur.Confidence, rhsConf))
		return env

	case *ast.Return:
		var t *types.TypeTerm
		conf := 1.0
		if s.Value != nil {
			t, conf = e.exprType(s.Value, env)
		} else {
			t = types.None
		}
		env = env.Clone()
		if prev, ok := env[returnKey]; ok {
			t = types.Join(prev.Term, t)
			conf = minConf(prev.Confidence, conf)
		}
		env[returnKey] = types.Inferred{Term: t, Confidence: conf, Origin: types.OriginReturnJoined}
		return env

	case *ast.If:
		_, _ = e.exprType(s.Cond, env) // constraint propagation: evaluated for the usage constraints it records in env
		thenEnv := e.stageB(s.Then, env.Clone())
		elseEnv := env.Clone()
		if s.Else != nil {
			elseEnv = e.stageB(s.Else, elseEnv)
		}
		return Join(thenEnv, elseEnv)

	case *ast.While:
		body := env.Clone()
		for i := 0; i < maxLoopFixpointIterations; i++ {
			body = Join(env, e.stageB(s.Body, body))
		}
		return body

	case *ast.For:
		loopEnv := env.Clone()
		loopEnv[s.Var] = Inferred(e.forVarType(s, env), 0.9)
		for i := 0; i < maxLoopFixpointIterations; i++ {
			loopEnv = Join(env, e.stageB(s.Body, loopEnv))
			loopEnv[s.Var] = Inferred(e.forVarType(s, env), 0.9)
		}
		return loopEnv

	case *ast.ExprStmt:
		e.exprType(s.X, env)
		return env

	case *ast.Pass:
		return env

	default:
		return env
	}
}

func minConf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// forVarType decides the loop variable's element type: range(...) always
// binds Int; otherwise it's the iterable's element type if known.
func (e *Engine) forVarType(s *ast.For, env Env) *types.TypeTerm {
	if s.RangeArgs != nil {
		return types.Int
	}
	iterT, _ := e.exprType(s.Iter, env)
	return elementType(iterT)
}

func elementType(t *types.TypeTerm) *types.TypeTerm {
	switch t.Kind {
	case types.KindList, types.KindSet:
		return t.Elems[0]
	case types.KindDict:
		return t.Elems[0]
	default:
		return types.Unknown
	}
}

// exprType evaluates the TypeTerm and confidence of an arbitrary expression
// under env. It writes to env only to record a usage constraint: an
// identifier operand of a binary operation whose type is Unknown is bound to
// the other operand's known type at confidence 0.9. It is the shared evaluator used by
// assignment, return, condition and comprehension handling.
func (e *Engine) exprType(expr ast.Expr, env Env) (*types.TypeTerm, float64) {
	switch x := expr.(type) {
	case *ast.Literal:
		switch x.Kind {
		case ast.IntLit:
			return types.Int, 1.0
		case ast.FloatLit:
			return types.Float, 1.0
		case ast.BoolLit:
			return types.Bool, 1.0
		case ast.StringLit:
			return types.Str, 1.0
		default:
			return types.None, 1.0
		}

	case *ast.Identifier:
		if v, ok := env[x.Name]; ok {
			return v.Term, v.Confidence
		}
		return types.Unknown, 1.0

	case *ast.BinaryOp:
		lt, lc := e.exprType(x.Left, env)
		rt, rc := e.exprType(x.Right, env)
		if id, ok := x.Left.(*ast.Identifier); ok && lt.Kind == types.KindUnknown && rt.Kind != types.KindUnknown {
			env[id.Name] = Inferred(rt, 0.9)
			lt, lc = rt, 0.9
		}
		if id, ok := x.Right.(*ast.Identifier); ok && rt.Kind == types.KindUnknown && lt.Kind != types.KindUnknown {
			env[id.Name] = Inferred(lt, 0.9)
			rt, rc = lt, 0.9
		}
		return types.Join(lt, rt), minConf(lc, rc)

	case *ast.UnaryOp:
		t, c := e.exprType(x.Operand, env)
		if x.Op == "not" {
			return types.Bool, c
		}
		return t, c

	case *ast.Compare:
		conf := 1.0
		for _, operand := range x.Operands {
			_, c := e.exprType(operand, env)
			conf = minConf(conf, c)
		}
		return types.Bool, conf

	case *ast.Call:
		if id, ok := x.Func.(*ast.Identifier); ok {
			switch id.Name {
			case "len":
				return types.Int, 1.0
			case "range":
				return types.List(types.Int), 1.0
			}
		}
		return types.Unknown, 0.5

	case *ast.ContainerLit:
		return e.containerLitType(x, env)

	case *ast.Comprehension:
		return e.comprehensionType(x, env)

	case *ast.Index:
		vt, vc := e.exprType(x.Value, env)
		return elementType(vt), vc

	case *ast.SliceIndex:
		vt, vc := e.exprType(x.Value, env)
		return vt, vc

	case *ast.Attr:
		return types.Unknown, 0.5

	default:
		return types.Unknown, 0.5
	}
}

func (e *Engine) containerLitType(x *ast.ContainerLit, env Env) (*types.TypeTerm, float64) {
	if x.Kind == ast.DictContainer {
		if len(x.Elements) == 0 {
			return types.Dict(types.Unknown, types.Unknown), 1.0
		}
		kt, kc := e.exprType(x.Keys[0], env)
		vt, vc := e.exprType(x.Elements[0], env)
		for i := 1; i < len(x.Elements); i++ {
			nkt, nkc := e.exprType(x.Keys[i], env)
			nvt, nvc := e.exprType(x.Elements[i], env)
			kt, kc = types.Join(kt, nkt), minConf(kc, nkc)
			vt, vc = types.Join(vt, nvt), minConf(vc, nvc)
		}
		return types.Dict(kt, vt), minConf(kc, vc)
	}

	if x.Kind == ast.TupleContainer {
		elems := make([]*types.TypeTerm, len(x.Elements))
		conf := 1.0
		for i, el := range x.Elements {
			t, c := e.exprType(el, env)
			elems[i] = t
			conf = minConf(conf, c)
		}
		return types.Tuple(elems...), conf
	}

	if len(x.Elements) == 0 {
		if x.Kind == ast.SetContainer {
			return types.Set(types.Unknown), 1.0
		}
		return types.List(types.Unknown), 1.0
	}
	elemT, conf := e.exprType(x.Elements[0], env)
	for i := 1; i < len(x.Elements); i++ {
		t, c := e.exprType(x.Elements[i], env)
		elemT, conf = types.Join(elemT, t), minConf(conf, c)
	}
	if x.Kind == ast.SetContainer {
		return types.Set(elemT), conf
	}
	return types.List(elemT), conf
}

func (e *Engine) comprehensionType(x *ast.Comprehension, env Env) (*types.TypeTerm, float64) {
	scoped := env.Clone()
	conf := 1.0
	for _, gen := range x.Generators {
		iterT, iterC := e.exprType(gen.Iter, scoped)
		scoped[gen.Var] = Inferred(elementType(iterT), 0.9)
		conf = minConf(conf, iterC)
	}
	for _, cond := range x.Conds {
		_, c := e.exprType(cond, scoped)
		conf = minConf(conf, c)
	}
	if x.Kind == ast.DictContainer {
		kt, kc := e.exprType(x.Key, scoped)
		vt, vc := e.exprType(x.Elem, scoped)
		return types.Dict(kt, vt), minConf(conf, minConf(kc, vc))
	}
	elemT, elemC := e.exprType(x.Elem, scoped)
	conf = minConf(conf, elemC)
	if x.Kind == ast.SetContainer {
		return types.Set(elemT), conf
	}
	return types.List(elemT), conf
}
