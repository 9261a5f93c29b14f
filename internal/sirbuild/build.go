// Package sirbuild lowers a typed AST (as refined by internal/infer) into
// the Static Intermediate Representation defined in internal/sir. Every
// expression and identifier is replaced with a typed SIR node; no Unknown
// TypeTerm survives past this pass for values inference actually tracks.
package sirbuild

import (
	"fmt"

	"github.com/sunholo/mgenc/internal/ast"
	"github.com/sunholo/mgenc/internal/errors"
	"github.com/sunholo/mgenc/internal/infer"
	"github.com/sunholo/mgenc/internal/sir"
	"github.com/sunholo/mgenc/internal/types"
)

// FuncKey is the lookup key a caller assembling the per-function inference
// results map should use: the bare name for a top-level function, or
// "Class.method" for a method, so sirbuild can find the right Result for
// each FuncDef it lowers.
func FuncKey(className, funcName string) string {
	if className == "" {
		return funcName
	}
	return className + "." + funcName
}

// Builder lowers one AST module at a time, accumulating any HeterogeneousContainer
// diagnostics raised while deciding concrete container element types.
type Builder struct {
	errs    []*errors.Report
	nextID  uint64
	classes map[string]*ast.ClassDef
}

// New creates a Builder.
func New() *Builder { return &Builder{classes: map[string]*ast.ClassDef{}} }

// Errors returns every structured diagnostic raised while building.
func (b *Builder) Errors() []*errors.Report { return b.errs }

func (b *Builder) report(code, msg string, pos ast.Pos) {
	b.errs = append(b.errs, &errors.Report{
		Schema:  "mgenc.error/v1",
		Code:    code,
		Phase:   "sirbuild",
		Message: msg,
		Span:    &ast.Span{Start: pos, End: pos},
	})
}

func (b *Builder) id() uint64 {
	b.nextID++
	return b.nextID
}

// buildCtx threads the decided local-variable environment and the enclosing
// class (when lowering a method body) through statement/expression building.
type buildCtx struct {
	locals infer.Env
	class  *ast.ClassDef
}

// BuildModule lowers every function and class in mod. results supplies the
// per-function inference outcome, keyed by FuncKey.
func (b *Builder) BuildModule(mod *ast.Module, results map[string]*infer.Result) *sir.Module {
	for _, c := range mod.Classes {
		b.classes[c.Name] = c
	}

	out := &sir.Module{Name: mod.Path}
	for _, f := range mod.Funcs {
		res := results[FuncKey("", f.Name)]
		if res == nil {
			continue
		}
		out.Funcs = append(out.Funcs, b.buildFunction(f, res, nil))
	}
	for _, c := range mod.Classes {
		out.Classes = append(out.Classes, b.buildClass(c, results))
	}
	return out
}

func (b *Builder) buildClass(c *ast.ClassDef, results map[string]*infer.Result) *sir.ClassDef {
	record := sir.ClassRecord{Name: c.Name, Base: c.Base}

	for _, m := range c.Methods {
		if m.Name != "__init__" {
			continue
		}
		res := results[FuncKey(c.Name, m.Name)]
		if res == nil {
			continue
		}
		for i, p := range m.Params {
			if p.Annotation == nil {
				continue // self
			}
			record.CtorParams = append(record.CtorParams, sir.Param{Name: p.Name, Type: res.Signature.Params[i].Term})
		}
		record.Fields = b.collectFields(m.Body, res.Locals)
	}

	out := &sir.ClassDef{Base: sir.NewBase(b.id(), c.Pos), Record: record}
	for _, m := range c.Methods {
		res := results[FuncKey(c.Name, m.Name)]
		if res == nil {
			continue
		}
		out.Methods = append(out.Methods, b.buildFunction(m, res, c))
	}
	return out
}

// collectFields finds every "self.field = value" assignment in a
// constructor body and records the field with the type the assigned
// expression decides, in first-seen order.
func (b *Builder) collectFields(body []ast.Stmt, locals infer.Env) []sir.Param {
	var fields []sir.Param
	seen := map[string]bool{}
	var walk func(stmts []ast.Stmt)
	walk = func(stmts []ast.Stmt) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *ast.Assign:
				if attr, ok := s.Target.(*ast.Attr); ok {
					if recv, ok := attr.Value.(*ast.Identifier); ok && recv.Name == "self" && !seen[attr.Name] {
						t, _ := b.exprType(s.Value, locals)
						fields = append(fields, sir.Param{Name: attr.Name, Type: t})
						seen[attr.Name] = true
					}
				}
			case *ast.If:
				walk(s.Then)
				walk(s.Else)
			case *ast.While:
				walk(s.Body)
			case *ast.For:
				walk(s.Body)
			}
		}
	}
	walk(body)
	return fields
}

func (b *Builder) buildFunction(f *ast.FuncDef, res *infer.Result, class *ast.ClassDef) *sir.FunctionDef {
	var params []sir.Param
	for i, p := range f.Params {
		if p.Annotation == nil && p.Name == "self" {
			continue
		}
		params = append(params, sir.Param{Name: p.Name, Type: res.Signature.Params[i].Term})
	}
	ctx := buildCtx{locals: res.Locals, class: class}
	return &sir.FunctionDef{
		Base:     sir.NewBase(b.id(), f.Pos),
		Name:     f.Name,
		Params:   params,
		Return:   res.Signature.Return.Term,
		Body:     b.buildBlock(f.Body, ctx),
		IsMethod: f.IsMethod,
		Receiver: f.Receiver,
	}
}

func (b *Builder) buildBlock(stmts []ast.Stmt, ctx buildCtx) []sir.Stmt {
	out := make([]sir.Stmt, 0, len(stmts))
	for _, s := range stmts {
		if built := b.buildStmt(s, ctx); built != nil {
			out = append(out, built)
		}
	}
	return out
}

func (b *Builder) buildStmt(stmt ast.Stmt, ctx buildCtx) sir.Stmt {
	base := func(pos ast.Pos) sir.Base { return sir.NewBase(b.id(), pos) }

	switch s := stmt.(type) {
	case *ast.Assign:
		return &sir.Assign{
			StmtBase: sir.StmtBase{Base: base(s.Pos)},
			Target:   b.buildExpr(s.Target, ctx),
			Value:    b.buildExpr(s.Value, ctx),
		}

	case *ast.AugAssign:
		read := b.buildExpr(s.Target, ctx)
		rhs := b.buildExpr(s.Value, ctx)
		combined := &sir.BinOp{
			ExprBase: sir.ExprBase{Base: base(s.Pos), Type: types.Join(read.TypeOf(), rhs.TypeOf())},
			Op:       s.Op,
			Left:     read,
			Right:    rhs,
		}
		return &sir.Assign{
			StmtBase: sir.StmtBase{Base: base(s.Pos)},
			Target:   b.buildExpr(s.Target, ctx),
			Value:    combined,
		}

	case *ast.Return:
		var v sir.Expr
		if s.Value != nil {
			v = b.buildExpr(s.Value, ctx)
		}
		return &sir.Return{StmtBase: sir.StmtBase{Base: base(s.Pos)}, Value: v}

	case *ast.If:
		return &sir.If{
			StmtBase: sir.StmtBase{Base: base(s.Pos)},
			Cond:     b.buildExpr(s.Cond, ctx),
			Then:     b.buildBlock(s.Then, ctx),
			Else:     b.buildBlock(s.Else, ctx),
		}

	case *ast.While:
		return &sir.While{
			StmtBase: sir.StmtBase{Base: base(s.Pos)},
			Cond:     b.buildExpr(s.Cond, ctx),
			Body:     b.buildBlock(s.Body, ctx),
		}

	case *ast.For:
		varType, _ := b.forVarType(s, ctx)
		var rangeArgs []sir.Expr
		var iter sir.Expr
		if s.RangeArgs != nil {
			for _, a := range s.RangeArgs {
				rangeArgs = append(rangeArgs, b.buildExpr(a, ctx))
			}
		} else {
			iter = b.buildExpr(s.Iter, ctx)
		}
		return &sir.For{
			StmtBase:  sir.StmtBase{Base: base(s.Pos)},
			Var:       s.Var,
			VarType:   varType,
			RangeArgs: rangeArgs,
			Iter:      iter,
			Body:      b.buildBlock(s.Body, ctx),
		}

	case *ast.ExprStmt:
		return &sir.ExprStmt{StmtBase: sir.StmtBase{Base: base(s.Pos)}, X: b.buildExpr(s.X, ctx)}

	case *ast.Pass:
		return nil

	default:
		b.report(errors.UNS001, fmt.Sprintf("statement type %T is outside the supported subset", stmt), stmt.Position())
		return nil
	}
}

func (b *Builder) forVarType(s *ast.For, ctx buildCtx) (*types.TypeTerm, float64) {
	if s.RangeArgs != nil {
		return types.Int, 1.0
	}
	iterT, c := b.exprType(s.Iter, ctx.locals)
	return elementType(iterT), c
}

func elementType(t *types.TypeTerm) *types.TypeTerm {
	if t == nil {
		return types.Unknown
	}
	switch t.Kind {
	case types.KindList, types.KindSet, types.KindDict:
		return t.Elems[0]
	default:
		return types.Unknown
	}
}

// buildExpr lowers expr into a typed SIR node using ctx.locals for
// identifier types, matching the join rules internal/infer already applied.
func (b *Builder) buildExpr(expr ast.Expr, ctx buildCtx) sir.Expr {
	base := func(pos ast.Pos, t *types.TypeTerm) sir.ExprBase {
		return sir.NewExprBase(b.id(), pos, t)
	}

	switch x := expr.(type) {
	case *ast.Literal:
		t := literalType(x.Kind)
		return &sir.Const{ExprBase: base(x.Pos, t), Kind: x.Kind, Value: x.Value}

	case *ast.Identifier:
		t, _ := b.exprType(x, ctx.locals)
		return &sir.Var{ExprBase: base(x.Pos, t), Name: x.Name}

	case *ast.BinaryOp:
		left := b.buildExpr(x.Left, ctx)
		right := b.buildExpr(x.Right, ctx)
		return &sir.BinOp{ExprBase: base(x.Pos, types.Join(left.TypeOf(), right.TypeOf())), Op: x.Op, Left: left, Right: right}

	case *ast.UnaryOp:
		operand := b.buildExpr(x.Operand, ctx)
		t := operand.TypeOf()
		if x.Op == "not" {
			t = types.Bool
		}
		return &sir.UnaryOp{ExprBase: base(x.Pos, t), Op: x.Op, Operand: operand}

	case *ast.Compare:
		operands := make([]sir.Expr, len(x.Operands))
		for i, o := range x.Operands {
			operands[i] = b.buildExpr(o, ctx)
		}
		return &sir.Compare{ExprBase: base(x.Pos, types.Bool), Operands: operands, Ops: x.Ops}

	case *ast.Call:
		return b.buildCall(x, ctx)

	case *ast.Attr:
		return b.buildAttr(x, ctx)

	case *ast.Index:
		value := b.buildExpr(x.Value, ctx)
		key := b.buildExpr(x.Index, ctx)
		return &sir.Index{ExprBase: base(x.Pos, elementType(value.TypeOf())), Value: value, Key: key}

	case *ast.SliceIndex:
		value := b.buildExpr(x.Value, ctx)
		var start, stop, step sir.Expr
		if x.Low != nil {
			start = b.buildExpr(x.Low, ctx)
		}
		if x.High != nil {
			stop = b.buildExpr(x.High, ctx)
		}
		if x.Step != nil {
			step = b.buildExpr(x.Step, ctx)
		}
		return &sir.SliceIndex{ExprBase: base(x.Pos, value.TypeOf()), Value: value, Start: start, Stop: stop, Step: step}

	case *ast.ContainerLit:
		return b.buildContainerLit(x, ctx)

	case *ast.Comprehension:
		return b.buildComprehension(x, ctx)

	default:
		b.report(errors.UNS001, fmt.Sprintf("expression type %T is outside the supported subset", expr), expr.Position())
		return &sir.Const{ExprBase: base(expr.Position(), types.Unknown), Kind: ast.NoneLit, Value: nil}
	}
}

func literalType(k ast.LiteralKind) *types.TypeTerm {
	switch k {
	case ast.IntLit:
		return types.Int
	case ast.FloatLit:
		return types.Float
	case ast.BoolLit:
		return types.Bool
	case ast.StringLit:
		return types.Str
	default:
		return types.None
	}
}

func (b *Builder) buildCall(x *ast.Call, ctx buildCtx) sir.Expr {
	base := sir.NewExprBase(b.id(), x.Pos, nil)

	if attr, ok := x.Func.(*ast.Attr); ok {
		receiver := b.buildExpr(attr.Value, ctx)
		args := make([]sir.Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = b.buildExpr(a, ctx)
		}
		op := containerOp(attr.Name, receiver.TypeOf())
		retType := methodReturnType(receiver.TypeOf(), attr.Name, op, args)
		base.Type = retType
		return &sir.MethodCall{ExprBase: base, Receiver: receiver, Method: attr.Name, Args: args, Op: op}
	}

	id, ok := x.Func.(*ast.Identifier)
	if !ok {
		b.report(errors.UNS001, "indirect call expressions are outside the supported subset", x.Pos)
		base.Type = types.Unknown
		return &sir.Call{ExprBase: base, Func: "", Args: nil}
	}

	args := make([]sir.Expr, len(x.Args))
	for i, a := range x.Args {
		args[i] = b.buildExpr(a, ctx)
	}

	switch {
	case id.Name == "len":
		base.Type = types.Int
	case id.Name == "range":
		base.Type = types.List(types.Int)
	case b.classes[id.Name] != nil:
		// Constructor call: the result is an instance of a user-defined
		// class, outside TypeTerm's scalar/container domain entirely.
		base.Type = types.Unknown
	default:
		base.Type = types.Unknown
	}
	return &sir.Call{ExprBase: base, Func: id.Name, Args: args}
}

// buildAttr lowers a field read. The field's decided type was already
// recorded on the owning ClassRecord by collectFields; re-deriving it here
// would require threading that record through every call site, so reads
// carry Unknown and are refined by whatever consumes them (an assignment,
// an arithmetic operand, a comprehension source).
func (b *Builder) buildAttr(x *ast.Attr, ctx buildCtx) sir.Expr {
	base := sir.NewExprBase(b.id(), x.Pos, types.Unknown)
	value := b.buildExpr(x.Value, ctx)
	return &sir.Attr{ExprBase: base, Value: value, Name: x.Name}
}

func containerOp(method string, receiverType *types.TypeTerm) *sir.ContainerOp {
	if receiverType == nil {
		return nil
	}
	var kind sir.ContainerOpKind
	switch method {
	case "append":
		kind = sir.OpAppend
	case "get":
		kind = sir.OpGet
	default:
		return nil
	}
	if receiverType.Kind != types.KindList && receiverType.Kind != types.KindDict && receiverType.Kind != types.KindSet {
		return nil
	}
	return &sir.ContainerOp{Kind: kind, Container: receiverType.Kind, ElemTypes: receiverType.Elems}
}

func methodReturnType(receiverType *types.TypeTerm, method string, op *sir.ContainerOp, args []sir.Expr) *types.TypeTerm {
	if op == nil {
		return types.Unknown
	}
	switch op.Kind {
	case sir.OpAppend:
		return types.None
	case sir.OpGet:
		if receiverType.Kind == types.KindDict && len(receiverType.Elems) == 2 {
			return receiverType.Elems[1]
		}
		return types.Unknown
	default:
		return types.Unknown
	}
}

func (b *Builder) buildContainerLit(x *ast.ContainerLit, ctx buildCtx) sir.Expr {
	base := sir.NewExprBase(b.id(), x.Pos, nil)

	if x.Kind == ast.TupleContainer {
		elems := make([]sir.Expr, len(x.Elements))
		terms := make([]*types.TypeTerm, len(x.Elements))
		for i, el := range x.Elements {
			elems[i] = b.buildExpr(el, ctx)
			terms[i] = elems[i].TypeOf()
		}
		base.Type = types.Tuple(terms...)
		return &sir.ContainerLit{ExprBase: base, Kind: types.KindTuple, Elements: elems}
	}

	if x.Kind == ast.DictContainer {
		keys := make([]sir.Expr, len(x.Elements))
		elems := make([]sir.Expr, len(x.Elements))
		var kt, vt *types.TypeTerm
		for i := range x.Elements {
			keys[i] = b.buildExpr(x.Keys[i], ctx)
			elems[i] = b.buildExpr(x.Elements[i], ctx)
			if i == 0 {
				kt, vt = keys[i].TypeOf(), elems[i].TypeOf()
			} else {
				kt = types.Join(kt, keys[i].TypeOf())
				vt = types.Join(vt, elems[i].TypeOf())
			}
		}
		if kt == nil {
			kt, vt = types.Unknown, types.Unknown
		}
		if kt.Kind == types.KindUnion && len(kt.Elems) > 1 {
			b.report(errors.HET001, "dict literal keys do not share a joinable type", x.Pos)
		}
		if vt.Kind == types.KindUnion && len(vt.Elems) > 1 {
			b.report(errors.HET001, "dict literal values do not share a joinable type", x.Pos)
		}
		base.Type = types.Dict(kt, vt)
		return &sir.ContainerLit{ExprBase: base, Kind: types.KindDict, Elements: elems, Keys: keys}
	}

	elems := make([]sir.Expr, len(x.Elements))
	var elemT *types.TypeTerm
	for i, el := range x.Elements {
		elems[i] = b.buildExpr(el, ctx)
		if i == 0 {
			elemT = elems[i].TypeOf()
		} else {
			elemT = types.Join(elemT, elems[i].TypeOf())
		}
	}
	if elemT == nil {
		elemT = types.Unknown
	}
	if elemT.Kind == types.KindUnion && len(elemT.Elems) > 1 {
		b.report(errors.HET001, "container literal elements do not share a joinable type", x.Pos)
	}
	kind := types.KindList
	if x.Kind == ast.SetContainer {
		kind = types.KindSet
	}
	if kind == types.KindSet {
		base.Type = types.Set(elemT)
	} else {
		base.Type = types.List(elemT)
	}
	return &sir.ContainerLit{ExprBase: base, Kind: kind, Elements: elems}
}

func (b *Builder) buildComprehension(x *ast.Comprehension, ctx buildCtx) sir.Expr {
	base := sir.NewExprBase(b.id(), x.Pos, nil)

	scoped := ctx.locals.Clone()
	gens := make([]sir.CompGenerator, len(x.Generators))
	for i, g := range x.Generators {
		iter := b.buildExpr(g.Iter, buildCtx{locals: scoped, class: ctx.class})
		varType := elementType(iter.TypeOf())
		scoped[g.Var] = infer.Inferred(varType, 0.9)
		gens[i] = sir.CompGenerator{Var: g.Var, VarType: varType, Iter: iter}
	}
	scopedCtx := buildCtx{locals: scoped, class: ctx.class}

	conds := make([]sir.Expr, len(x.Conds))
	for i, c := range x.Conds {
		conds[i] = b.buildExpr(c, scopedCtx)
	}

	if x.Kind == ast.DictContainer {
		key := b.buildExpr(x.Key, scopedCtx)
		elem := b.buildExpr(x.Elem, scopedCtx)
		base.Type = types.Dict(key.TypeOf(), elem.TypeOf())
		return &sir.Comprehension{ExprBase: base, Generators: gens, Conds: conds, Key: key, Elem: elem}
	}

	elem := b.buildExpr(x.Elem, scopedCtx)
	if elem.TypeOf() != nil && elem.TypeOf().Kind == types.KindUnion && len(elem.TypeOf().Elems) > 1 {
		b.report(errors.HET002, "comprehension element type is ambiguous across generator sources", x.Pos)
	}
	if x.Kind == ast.SetContainer {
		base.Type = types.Set(elem.TypeOf())
	} else {
		base.Type = types.List(elem.TypeOf())
	}
	return &sir.Comprehension{ExprBase: base, Generators: gens, Conds: conds, Elem: elem}
}

// exprType is a read-only type evaluator used where sirbuild needs a
// TypeTerm without constructing a node (loop variable decisions, field
// collection), mirroring the join rules internal/infer's Stage B applies.
func (b *Builder) exprType(expr ast.Expr, locals infer.Env) (*types.TypeTerm, float64) {
	switch x := expr.(type) {
	case *ast.Literal:
		return literalType(x.Kind), 1.0
	case *ast.Identifier:
		if v, ok := locals[x.Name]; ok {
			return v.Term, v.Confidence
		}
		return types.Unknown, 0.5
	case *ast.BinaryOp:
		lt, lc := b.exprType(x.Left, locals)
		rt, rc := b.exprType(x.Right, locals)
		return types.Join(lt, rt), minConf(lc, rc)
	case *ast.UnaryOp:
		t, c := b.exprType(x.Operand, locals)
		if x.Op == "not" {
			return types.Bool, c
		}
		return t, c
	case *ast.Compare:
		return types.Bool, 1.0
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
	case *ast.Index:
		vt, vc := b.exprType(x.Value, locals)
		return elementType(vt), vc
	default:
		return types.Unknown, 0.5
	}
}

func minConf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
