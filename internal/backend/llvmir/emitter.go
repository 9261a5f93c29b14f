// Package llvmir implements the low-level IR lowering target: it walks SIR
// straight into typed SSA IR via tinygo.org/x/go-llvm rather than text
// templates. Locals are materialized as stack slots with explicit
// load/store, following an alloca-then-mem2reg discipline; true SSA with
// phi nodes is left to the optimizer's pass pipeline rather than hand-built
// here. Containers and classes are feature-gated off: this target's
// contract is function bodies built from scalars only.
package llvmir

import (
	"fmt"

	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/errors"
	"github.com/sunholo/mgenc/internal/naming"
	"github.com/sunholo/mgenc/internal/runtimeabi"
	"github.com/sunholo/mgenc/internal/sir"
	"github.com/sunholo/mgenc/internal/types"
	"tinygo.org/x/go-llvm"
)

func init() {
	backend.Register(target{})
}

type target struct{}

func (target) Name() string          { return "llvmir" }
func (target) FileExtension() string { return ".ll" }
func (target) SupportsFeature(name string) bool {
	switch name {
	case backend.FeatureFunctions, backend.FeatureVariables, backend.FeatureArithmetic,
		backend.FeatureControlFlow, backend.FeatureLoops:
		return true
	default:
		return false
	}
}
func (target) ContainerSemantics() backend.ContainerSemantics { return backend.ByValue }
func (target) SupportsInternalUnion() bool                   { return false }
func (target) Emitter() backend.Emitter                      { return emitter{} }
func (target) Factory() backend.Factory                      { return factory{} }
func (target) Builder() backend.Builder                      { return recipeBuilder{} }

type factory struct{}

func (factory) Containers() backend.ContainerSystem { return containerSystem{} }
func (factory) RuntimeABI() backend.RuntimeMapper   { return runtimeMapper{} }

var _ backend.Backend = target{}

type emitter struct{}

// Emit walks mod and returns its SSA IR text. Every native resource
// (context, builder, module) is released on every exit path, success or
// failure alike, mirroring the reference transform's defer chain.
func (emitter) Emit(mod *sir.Module, prefs backend.Preferences) (*backend.Artifact, []*errors.Report) {
	ctx := llvm.NewContext()
	defer ctx.Dispose()

	builder := ctx.NewBuilder()
	defer builder.Dispose()

	module := ctx.NewModule(mod.Name)
	defer module.Dispose()

	em := &emitState{builder: builder, module: module, prefs: prefs, externs: map[string]llvm.Value{}}

	if len(mod.Classes) > 0 {
		em.fail(errors.BKD001, "llvmir target has no struct/GEP realization for class definitions; classes are unsupported on this target")
	}

	funcs := map[string]llvm.Value{}
	for _, f := range mod.Funcs {
		fn, err := em.declareFunc(f)
		if err != nil {
			em.fail(errors.BKD001, err.Error())
			continue
		}
		funcs[f.Name] = fn
	}
	em.funcs = funcs

	for _, f := range mod.Funcs {
		fn, ok := funcs[f.Name]
		if !ok {
			continue
		}
		em.emitFunctionBody(fn, f)
	}

	if len(em.errs) > 0 {
		return nil, em.errs
	}
	return &backend.Artifact{Source: module.String(), Extension: ".ll"}, nil
}

type emitState struct {
	builder llvm.Builder
	module  llvm.Module
	prefs   backend.Preferences
	errs    []*errors.Report
	funcs   map[string]llvm.Value // every module-level function, declared up front for forward/recursive calls
	locals  map[string]llvm.Value // alloca pointers for the function currently being built
	curFn   llvm.Value
	externs map[string]llvm.Value // extern helpers declared on first use
}

// name applies the configured identifier convention to a source name before
// it is used as an LLVM value label. Purely cosmetic (IR values are
// referenced by SSA register, not by this string) but kept consistent with
// the naming pass every other target runs over identifiers.
func (e *emitState) name(n string) string { return naming.Apply(n, naming.Convention(e.prefs.NamingConvention)) }

func (e *emitState) fail(code, msg string) {
	e.errs = append(e.errs, &errors.Report{Schema: "mgenc.error/v1", Code: code, Phase: "backend", Message: msg})
}

func (e *emitState) declareFunc(f *sir.FunctionDef) (llvm.Value, error) {
	paramTypes := make([]llvm.Type, len(f.Params))
	for i, p := range f.Params {
		t, err := llvmType(p.Type)
		if err != nil {
			return llvm.Value{}, err
		}
		paramTypes[i] = t
	}
	retType, err := llvmType(f.Return)
	if err != nil {
		return llvm.Value{}, err
	}
	fn := llvm.AddFunction(e.module, f.Name, llvm.FunctionType(retType, paramTypes, false))
	for i, p := range f.Params {
		fn.Param(i).SetName(e.name(p.Name))
	}
	return fn, nil
}

func (e *emitState) emitFunctionBody(fn llvm.Value, f *sir.FunctionDef) {
	e.curFn = fn
	e.locals = map[string]llvm.Value{}

	entry := llvm.AddBasicBlock(fn, "entry")
	e.builder.SetInsertPointAtEnd(entry)

	for i, p := range f.Params {
		alloc := e.builder.CreateAlloca(fn.Param(i).Type(), e.name(p.Name))
		e.builder.CreateStore(fn.Param(i), alloc)
		e.locals[p.Name] = alloc
	}

	terminated := e.emitBlock(f.Body)
	if !terminated && f.Return.Kind == types.KindNone {
		e.builder.CreateRetVoid()
	}
}

// emitBlock lowers body in order, stopping at the first statement that
// terminates its basic block (a Return) since anything lowered after a
// terminator would be unreachable and rejected by the verifier.
func (e *emitState) emitBlock(body []sir.Stmt) bool {
	for _, s := range body {
		if e.emitStmt(s) {
			return true
		}
	}
	return false
}

func (e *emitState) emitStmt(s sir.Stmt) bool {
	switch n := s.(type) {
	case *sir.Assign:
		e.assign(n)
		return false
	case *sir.If:
		return e.emitIf(n)
	case *sir.While:
		e.emitWhile(n)
		return false
	case *sir.For:
		e.emitFor(n)
		return false
	case *sir.Return:
		if n.Value == nil {
			e.builder.CreateRetVoid()
			return true
		}
		v, err := e.expr(n.Value)
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			return true
		}
		e.builder.CreateRet(v)
		return true
	case *sir.ExprStmt:
		if _, err := e.expr(n.X); err != nil {
			e.fail(errors.BKD001, err.Error())
		}
		return false
	default:
		e.fail(errors.UNS001, fmt.Sprintf("llvmir target cannot lower statement %T", s))
		return false
	}
}

func (e *emitState) assign(n *sir.Assign) {
	v, err := e.expr(n.Value)
	if err != nil {
		e.fail(errors.BKD001, err.Error())
		return
	}
	switch t := n.Target.(type) {
	case *sir.Var:
		alloc, ok := e.locals[t.Name]
		if !ok {
			typ, err := llvmType(t.TypeOf())
			if err != nil {
				e.fail(errors.BKD001, err.Error())
				return
			}
			alloc = e.builder.CreateAlloca(typ, e.name(t.Name))
			e.locals[t.Name] = alloc
		}
		e.builder.CreateStore(v, alloc)
	default:
		e.fail(errors.BKD002, fmt.Sprintf("llvmir target cannot assign to %T; containers and fields are unsupported", n.Target))
	}
}

// truthy narrows a 0/1-valued i64 boolean down to the i1 llvm.Builder's
// conditional branch instructions require.
func (e *emitState) truthy(v llvm.Value) llvm.Value {
	return e.builder.CreateICmp(llvm.IntNE, v, llvm.ConstInt(llvm.Int64Type(), 0, false), "")
}

func (e *emitState) emitIf(n *sir.If) bool {
	cond, err := e.expr(n.Cond)
	if err != nil {
		e.fail(errors.BKD001, err.Error())
		return false
	}
	condVal := e.truthy(cond)

	thn := llvm.AddBasicBlock(e.curFn, "")
	if len(n.Else) == 0 {
		conv := llvm.AddBasicBlock(e.curFn, "")
		e.builder.CreateCondBr(condVal, thn, conv)

		e.builder.SetInsertPointAtEnd(thn)
		if !e.emitBlock(n.Then) {
			e.builder.CreateBr(conv)
		}

		e.builder.SetInsertPointAtEnd(conv)
		return false
	}

	els := llvm.AddBasicBlock(e.curFn, "")
	e.builder.CreateCondBr(condVal, thn, els)

	e.builder.SetInsertPointAtEnd(thn)
	thenTerm := e.emitBlock(n.Then)

	var conv llvm.BasicBlock
	haveConv := false
	if !thenTerm {
		conv = llvm.AddBasicBlock(e.curFn, "")
		haveConv = true
		e.builder.CreateBr(conv)
	}

	e.builder.SetInsertPointAtEnd(els)
	elseTerm := e.emitBlock(n.Else)
	if !elseTerm {
		if !haveConv {
			conv = llvm.AddBasicBlock(e.curFn, "")
			haveConv = true
		}
		e.builder.CreateBr(conv)
	}

	if !haveConv {
		return true
	}
	e.builder.SetInsertPointAtEnd(conv)
	return false
}

func (e *emitState) emitWhile(n *sir.While) {
	head := llvm.AddBasicBlock(e.curFn, "")
	body := llvm.AddBasicBlock(e.curFn, "")
	conv := llvm.AddBasicBlock(e.curFn, "")

	e.builder.CreateBr(head)
	e.builder.SetInsertPointAtEnd(head)
	cond, err := e.expr(n.Cond)
	if err != nil {
		e.fail(errors.BKD001, err.Error())
		return
	}
	e.builder.CreateCondBr(e.truthy(cond), body, conv)

	e.builder.SetInsertPointAtEnd(body)
	if !e.emitBlock(n.Body) {
		e.builder.CreateBr(head)
	}

	e.builder.SetInsertPointAtEnd(conv)
}

// emitFor lowers a range-driven loop into the same head/body/converge shape
// as emitWhile, with an explicit counter stack slot. Iterable for-loops
// require a container to walk, which this target has no realization for.
func (e *emitState) emitFor(n *sir.For) {
	if n.Iter != nil {
		e.fail(errors.BKD002, "llvmir target cannot iterate a container; containers are feature-gated")
		return
	}

	i64 := llvm.Int64Type()
	switch len(n.RangeArgs) {
	case 1:
		stopVal, err := e.expr(n.RangeArgs[0])
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			return
		}
		e.runCountedLoop(n, llvm.ConstInt(i64, 0, true), stopVal, llvm.ConstInt(i64, 1, true))
	case 2, 3:
		startVal, err := e.expr(n.RangeArgs[0])
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			return
		}
		stopVal, err := e.expr(n.RangeArgs[1])
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			return
		}
		step := llvm.ConstInt(i64, 1, true)
		if len(n.RangeArgs) == 3 {
			step, err = e.expr(n.RangeArgs[2])
			if err != nil {
				e.fail(errors.BKD001, err.Error())
				return
			}
		}
		e.runCountedLoop(n, startVal, stopVal, step)
	default:
		e.fail(errors.UNS001, "llvmir target: for loop has no range arguments")
	}
}

func (e *emitState) runCountedLoop(n *sir.For, startVal, stopVal, stepVal llvm.Value) {
	alloc := e.builder.CreateAlloca(llvm.Int64Type(), n.Var)
	e.builder.CreateStore(startVal, alloc)
	e.locals[n.Var] = alloc

	head := llvm.AddBasicBlock(e.curFn, "")
	body := llvm.AddBasicBlock(e.curFn, "")
	conv := llvm.AddBasicBlock(e.curFn, "")

	e.builder.CreateBr(head)
	e.builder.SetInsertPointAtEnd(head)
	cur := e.builder.CreateLoad(alloc, "")
	cmp := e.builder.CreateICmp(llvm.IntSLT, cur, stopVal, "")
	e.builder.CreateCondBr(cmp, body, conv)

	e.builder.SetInsertPointAtEnd(body)
	if !e.emitBlock(n.Body) {
		cur = e.builder.CreateLoad(alloc, "")
		next := e.builder.CreateAdd(cur, stepVal, "")
		e.builder.CreateStore(next, alloc)
		e.builder.CreateBr(head)
	}

	e.builder.SetInsertPointAtEnd(conv)
}

func (e *emitState) expr(x sir.Expr) (llvm.Value, error) {
	switch n := x.(type) {
	case *sir.Const:
		return e.constValue(n)
	case *sir.Var:
		alloc, ok := e.locals[n.Name]
		if !ok {
			return llvm.Value{}, fmt.Errorf("llvmir target: undeclared variable %q", n.Name)
		}
		return e.builder.CreateLoad(alloc, ""), nil
	case *sir.BinOp:
		return e.binOp(n)
	case *sir.UnaryOp:
		return e.unaryOp(n)
	case *sir.Compare:
		return e.compare(n)
	case *sir.Call:
		return e.call(n)
	default:
		return llvm.Value{}, fmt.Errorf("llvmir target cannot lower expression %T; containers and classes are feature-gated", x)
	}
}

func (e *emitState) constValue(c *sir.Const) (llvm.Value, error) {
	switch v := c.Value.(type) {
	case int64:
		return llvm.ConstInt(llvm.Int64Type(), uint64(v), true), nil
	case float64:
		return llvm.ConstFloat(llvm.DoubleType(), v), nil
	case bool:
		if v {
			return llvm.ConstInt(llvm.Int64Type(), 1, false), nil
		}
		return llvm.ConstInt(llvm.Int64Type(), 0, false), nil
	case string:
		return e.builder.CreateGlobalStringPtr(v, "L_STR"), nil
	case nil:
		return llvm.ConstInt(llvm.Int64Type(), 0, false), nil
	default:
		return llvm.Value{}, fmt.Errorf("llvmir target cannot lower constant of type %T", v)
	}
}

func (e *emitState) binOp(n *sir.BinOp) (llvm.Value, error) {
	left, err := e.expr(n.Left)
	if err != nil {
		return llvm.Value{}, err
	}
	right, err := e.expr(n.Right)
	if err != nil {
		return llvm.Value{}, err
	}
	float := isFloatType(n.TypeOf())
	switch n.Op {
	case "+":
		if float {
			return e.builder.CreateFAdd(left, right, ""), nil
		}
		return e.builder.CreateAdd(left, right, ""), nil
	case "-":
		if float {
			return e.builder.CreateFSub(left, right, ""), nil
		}
		return e.builder.CreateSub(left, right, ""), nil
	case "*":
		if float {
			return e.builder.CreateFMul(left, right, ""), nil
		}
		return e.builder.CreateMul(left, right, ""), nil
	case "/":
		if float {
			return e.builder.CreateFDiv(left, right, ""), nil
		}
		return e.builder.CreateSDiv(left, right, ""), nil
	case "//":
		if float {
			return e.builder.CreateFDiv(left, right, ""), nil
		}
		return e.floorDiv(left, right), nil
	case "%":
		if float {
			return e.builder.CreateFRem(left, right, ""), nil
		}
		return e.floorMod(left, right), nil
	case "**":
		return e.pow(left, right, float)
	case "and":
		return e.builder.CreateAnd(left, right, ""), nil
	case "or":
		return e.builder.CreateOr(left, right, ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("llvmir target has no opcode for operator %q", n.Op)
	}
}

// floorDiv implements spec §4.7's floor-toward-negative-infinity integer
// division: LLVM's sdiv truncates toward zero, so a correction is applied
// whenever the remainder is non-zero and the operands' signs disagree.
func (e *emitState) floorDiv(a, b llvm.Value) llvm.Value {
	i64 := llvm.Int64Type()
	zero := llvm.ConstInt(i64, 0, true)
	q := e.builder.CreateSDiv(a, b, "")
	r := e.builder.CreateSRem(a, b, "")
	rNonZero := e.builder.CreateICmp(llvm.IntNE, r, zero, "")
	aNeg := e.builder.CreateICmp(llvm.IntSLT, a, zero, "")
	bNeg := e.builder.CreateICmp(llvm.IntSLT, b, zero, "")
	signsDiffer := e.builder.CreateXor(aNeg, bNeg, "")
	needsFix := e.builder.CreateAnd(rNonZero, signsDiffer, "")
	qMinusOne := e.builder.CreateSub(q, llvm.ConstInt(i64, 1, true), "")
	return e.builder.CreateSelect(needsFix, qMinusOne, q, "")
}

// floorMod matches floorDiv's rounding so that a == floorDiv(a,b)*b + floorMod(a,b).
func (e *emitState) floorMod(a, b llvm.Value) llvm.Value {
	zero := llvm.ConstInt(llvm.Int64Type(), 0, true)
	r := e.builder.CreateSRem(a, b, "")
	rNonZero := e.builder.CreateICmp(llvm.IntNE, r, zero, "")
	aNeg := e.builder.CreateICmp(llvm.IntSLT, a, zero, "")
	bNeg := e.builder.CreateICmp(llvm.IntSLT, b, zero, "")
	signsDiffer := e.builder.CreateXor(aNeg, bNeg, "")
	needsFix := e.builder.CreateAnd(rNonZero, signsDiffer, "")
	rPlusB := e.builder.CreateAdd(r, b, "")
	return e.builder.CreateSelect(needsFix, rPlusB, r, "")
}

// pow routes through the runtime's repeated-squaring helper for integers
// (spec §4.7: "power is lowered to a repeated-squaring helper or the
// target IR's intrinsic") and the llvm.pow intrinsic for floats.
func (e *emitState) pow(base, exp llvm.Value, float bool) (llvm.Value, error) {
	if float {
		fn := e.declareExtern("llvm.pow.f64", llvm.FunctionType(llvm.DoubleType(), []llvm.Type{llvm.DoubleType(), llvm.DoubleType()}, false))
		return e.builder.CreateCall(fn, []llvm.Value{base, exp}, ""), nil
	}
	fn := e.declareExtern("mgenc_rt_ipow", llvm.FunctionType(llvm.Int64Type(), []llvm.Type{llvm.Int64Type(), llvm.Int64Type()}, false))
	return e.builder.CreateCall(fn, []llvm.Value{base, exp}, ""), nil
}

func (e *emitState) unaryOp(n *sir.UnaryOp) (llvm.Value, error) {
	v, err := e.expr(n.Operand)
	if err != nil {
		return llvm.Value{}, err
	}
	float := isFloatType(n.TypeOf())
	switch n.Op {
	case "-":
		if float {
			return e.builder.CreateFSub(llvm.ConstFloat(llvm.DoubleType(), 0), v, ""), nil
		}
		return e.builder.CreateSub(llvm.ConstInt(llvm.Int64Type(), 0, true), v, ""), nil
	case "not":
		notTruthy := e.builder.CreateICmp(llvm.IntEQ, v, llvm.ConstInt(llvm.Int64Type(), 0, false), "")
		return e.builder.CreateZExt(notTruthy, llvm.Int64Type(), ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("llvmir target has no opcode for unary operator %q", n.Op)
	}
}

// compare lowers a chained comparison to a conjunction of pairwise icmp/
// fcmp instructions, each widened back to the 0/1 i64 boolean
// representation before being AND-ed together.
func (e *emitState) compare(n *sir.Compare) (llvm.Value, error) {
	var acc llvm.Value
	for i, op := range n.Ops {
		left, err := e.expr(n.Operands[i])
		if err != nil {
			return llvm.Value{}, err
		}
		right, err := e.expr(n.Operands[i+1])
		if err != nil {
			return llvm.Value{}, err
		}
		float := isFloatType(n.Operands[i].TypeOf())
		var bit llvm.Value
		if float {
			bit = e.builder.CreateFCmp(floatPredicate(op), left, right, "")
		} else {
			bit = e.builder.CreateICmp(intPredicate(op), left, right, "")
		}
		widened := e.builder.CreateZExt(bit, llvm.Int64Type(), "")
		if i == 0 {
			acc = widened
			continue
		}
		acc = e.builder.CreateAnd(acc, widened, "")
	}
	return acc, nil
}

func intPredicate(op string) llvm.IntPredicate {
	switch op {
	case "==":
		return llvm.IntEQ
	case "!=":
		return llvm.IntNE
	case "<":
		return llvm.IntSLT
	case ">":
		return llvm.IntSGT
	case "<=":
		return llvm.IntSLE
	case ">=":
		return llvm.IntSGE
	default:
		return llvm.IntEQ
	}
}

func floatPredicate(op string) llvm.FloatPredicate {
	switch op {
	case "==":
		return llvm.FloatOEQ
	case "!=":
		return llvm.FloatONE
	case "<":
		return llvm.FloatOLT
	case ">":
		return llvm.FloatOGT
	case "<=":
		return llvm.FloatOLE
	case ">=":
		return llvm.FloatOGE
	default:
		return llvm.FloatOEQ
	}
}

// declareExtern returns the module's declaration for name, adding it the
// first time it is referenced, matching the reference transform's
// declare-printf-on-first-use pattern.
func (e *emitState) declareExtern(name string, ftyp llvm.Type) llvm.Value {
	if fn, ok := e.externs[name]; ok {
		return fn
	}
	fn := llvm.AddFunction(e.module, name, ftyp)
	e.externs[name] = fn
	return fn
}

func (e *emitState) call(n *sir.Call) (llvm.Value, error) {
	args := make([]llvm.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := e.expr(a)
		if err != nil {
			return llvm.Value{}, err
		}
		args[i] = v
	}

	if len(n.Args) > 0 {
		argFloat := isFloatType(n.Args[0].TypeOf())
		if opName, ok := runtimeabi.ResolveBuiltin(n.Func, argFloat); ok {
			if m, found := table.Lookup(opName); found {
				return e.applyOp(opName, m, args, n.Args[0].TypeOf())
			}
			return llvm.Value{}, fmt.Errorf("llvmir target has no realization for %s; containers are feature-gated", opName)
		}
	}

	fn, ok := e.funcs[n.Func]
	if !ok {
		return llvm.Value{}, fmt.Errorf("llvmir target: call to undeclared function %q", n.Func)
	}
	return e.builder.CreateCall(fn, args, ""), nil
}

// applyOp realizes one op.* builtin against already-evaluated operands:
// inlined entries are built directly with llvm.Builder instructions,
// helper entries call an extern function declared on first use.
func (e *emitState) applyOp(name runtimeabi.Name, m runtimeabi.Mapping, args []llvm.Value, argType *types.TypeTerm) (llvm.Value, error) {
	i64 := llvm.Int64Type()
	if m.Inlined {
		switch m.Template {
		case "abs_int":
			zero := llvm.ConstInt(i64, 0, true)
			isNeg := e.builder.CreateICmp(llvm.IntSLT, args[0], zero, "")
			neg := e.builder.CreateSub(zero, args[0], "")
			return e.builder.CreateSelect(isNeg, neg, args[0], ""), nil
		case "bool_of":
			nz := e.builder.CreateICmp(llvm.IntNE, args[0], llvm.ConstInt(i64, 0, false), "")
			return e.builder.CreateZExt(nz, i64, ""), nil
		case "int_of_float":
			return e.builder.CreateFPToSI(args[0], i64, ""), nil
		case "float_of_int":
			return e.builder.CreateSIToFP(args[0], llvm.DoubleType(), ""), nil
		case "min_int":
			lt := e.builder.CreateICmp(llvm.IntSLT, args[0], args[1], "")
			return e.builder.CreateSelect(lt, args[0], args[1], ""), nil
		case "max_int":
			gt := e.builder.CreateICmp(llvm.IntSGT, args[0], args[1], "")
			return e.builder.CreateSelect(gt, args[0], args[1], ""), nil
		case "min_float":
			lt := e.builder.CreateFCmp(llvm.FloatOLT, args[0], args[1], "")
			return e.builder.CreateSelect(lt, args[0], args[1], ""), nil
		case "max_float":
			gt := e.builder.CreateFCmp(llvm.FloatOGT, args[0], args[1], "")
			return e.builder.CreateSelect(gt, args[0], args[1], ""), nil
		default:
			return llvm.Value{}, fmt.Errorf("llvmir target has no inlined realization tagged %q", m.Template)
		}
	}

	switch name {
	case runtimeabi.OpAbsFloat:
		fn := e.declareExtern(m.Helper, llvm.FunctionType(llvm.DoubleType(), []llvm.Type{llvm.DoubleType()}, false))
		return e.builder.CreateCall(fn, args, ""), nil
	case runtimeabi.OpPrintValue:
		return e.emitPrint(args[0], argType), nil
	case runtimeabi.OpStrOf:
		argT, err := llvmType(argType)
		if err != nil {
			return llvm.Value{}, err
		}
		strT := llvm.PointerType(llvm.Int8Type(), 0)
		fn := e.declareExtern(m.Helper+suffixFor(argType), llvm.FunctionType(strT, []llvm.Type{argT}, false))
		return e.builder.CreateCall(fn, args, ""), nil
	case runtimeabi.OpStrUpper, runtimeabi.OpStrLower, runtimeabi.OpStrStrip, runtimeabi.OpStrReplace:
		strT := llvm.PointerType(llvm.Int8Type(), 0)
		argTypes := make([]llvm.Type, len(args))
		for i := range args {
			argTypes[i] = strT
		}
		fn := e.declareExtern(m.Helper, llvm.FunctionType(strT, argTypes, false))
		return e.builder.CreateCall(fn, args, ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("llvmir target has no realization for %s", name)
	}
}

// emitPrint routes print_value through the helper variant matching the
// argument's decided type, since LLVM has no single polymorphic call site
// the way a dynamically-typed runtime would.
func (e *emitState) emitPrint(v llvm.Value, argType *types.TypeTerm) llvm.Value {
	var argT llvm.Type
	switch argType.Kind {
	case types.KindFloat:
		argT = llvm.DoubleType()
	case types.KindStr:
		argT = llvm.PointerType(llvm.Int8Type(), 0)
	default:
		argT = llvm.Int64Type()
	}
	fn := e.declareExtern("mgenc_rt_print_value"+suffixFor(argType), llvm.FunctionType(llvm.VoidType(), []llvm.Type{argT}, false))
	return e.builder.CreateCall(fn, []llvm.Value{v}, "")
}

func suffixFor(t *types.TypeTerm) string {
	switch t.Kind {
	case types.KindFloat:
		return "_float"
	case types.KindStr:
		return "_str"
	case types.KindBool:
		return "_bool"
	default:
		return "_int"
	}
}
