// Package c implements the systems, manual-memory lowering target.
// Containers are realized through a small runtime helper header
// (mgenc_rt.h, assumed present on the include path) rather than native C
// syntax; everything else is emitted as direct C text.
package c

import (
	"fmt"
	"strings"

	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/errors"
	"github.com/sunholo/mgenc/internal/naming"
	"github.com/sunholo/mgenc/internal/runtimeabi"
	"github.com/sunholo/mgenc/internal/sir"
	"github.com/sunholo/mgenc/internal/types"
)

func init() {
	backend.Register(target{})
}

type target struct{}

func (target) Name() string          { return "c" }
func (target) FileExtension() string { return ".c" }
func (target) SupportsFeature(name string) bool {
	switch name {
	case backend.FeatureFunctions, backend.FeatureVariables, backend.FeatureArithmetic,
		backend.FeatureControlFlow, backend.FeatureLoops, backend.FeatureClasses, backend.FeatureContainers:
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

func (emitter) Emit(mod *sir.Module, prefs backend.Preferences) (*backend.Artifact, []*errors.Report) {
	em := &emitState{prefs: prefs}
	em.emitModule(mod)
	if len(em.errs) > 0 {
		return nil, em.errs
	}
	return &backend.Artifact{Source: em.out.String(), Extension: ".c"}, nil
}

type emitState struct {
	out      strings.Builder
	prefs    backend.Preferences
	errs     []*errors.Report
	indent   int
	declared map[string]bool // locals already declared in the current function
}

func (e *emitState) fail(code, msg string) {
	e.errs = append(e.errs, &errors.Report{Schema: "mgenc.error/v1", Code: code, Phase: "backend", Message: msg})
}

func (e *emitState) name(n string) string { return naming.Apply(n, naming.Convention(e.prefs.NamingConvention)) }

func (e *emitState) line(format string, args ...interface{}) {
	e.out.WriteString(strings.Repeat("    ", e.indent))
	fmt.Fprintf(&e.out, format, args...)
	e.out.WriteByte('\n')
}

func (e *emitState) emitModule(mod *sir.Module) {
	e.out.WriteString("#include <stdint.h>\n#include <stdbool.h>\n#include <stdio.h>\n#include <string.h>\n#include <math.h>\n#include \"mgenc_rt.h\"\n\n")
	for _, c := range mod.Classes {
		e.emitStruct(c)
	}
	for _, f := range mod.Funcs {
		e.emitFunction(f)
	}
	for _, c := range mod.Classes {
		for _, m := range c.Methods {
			e.emitMethod(c, m)
		}
	}
}

func (e *emitState) emitStruct(c *sir.ClassDef) {
	e.line("typedef struct %s {", c.Record.Name)
	e.indent++
	for _, f := range c.Record.Fields {
		spelling, err := typeSpelling(f.Type)
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			continue
		}
		e.line("%s %s;", spelling, e.name(f.Name))
	}
	e.indent--
	e.line("} %s;", c.Record.Name)
	e.out.WriteByte('\n')
}

func (e *emitState) signature(name string, params []sir.Param, ret *types.TypeTerm, receiver string) string {
	parts := make([]string, 0, len(params)+1)
	if receiver != "" {
		parts = append(parts, fmt.Sprintf("%s* %s", receiver, e.name("self")))
	}
	for _, p := range params {
		spelling, err := typeSpelling(p.Type)
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			spelling = "void*"
		}
		parts = append(parts, fmt.Sprintf("%s %s", spelling, e.name(p.Name)))
	}
	retSpelling, err := typeSpelling(ret)
	if err != nil {
		e.fail(errors.BKD001, err.Error())
		retSpelling = "void"
	}
	return fmt.Sprintf("%s %s(%s)", retSpelling, name, strings.Join(parts, ", "))
}

func (e *emitState) emitFunction(f *sir.FunctionDef) {
	e.declared = map[string]bool{}
	for _, p := range f.Params {
		e.declared[p.Name] = true
	}
	e.line("%s {", e.signature(f.Name, f.Params, f.Return, ""))
	e.indent++
	e.emitBlock(f.Body)
	e.indent--
	e.line("}")
	e.out.WriteByte('\n')
}

func (e *emitState) emitMethod(c *sir.ClassDef, m *sir.FunctionDef) {
	e.declared = map[string]bool{}
	for _, p := range m.Params {
		e.declared[p.Name] = true
	}
	name := fmt.Sprintf("%s_%s", c.Record.Name, m.Name)
	e.line("%s {", e.signature(name, m.Params, m.Return, c.Record.Name))
	e.indent++
	e.emitBlock(m.Body)
	e.indent--
	e.line("}")
	e.out.WriteByte('\n')
}

func (e *emitState) emitBlock(body []sir.Stmt) {
	for _, s := range body {
		e.emitStmt(s)
	}
}

func (e *emitState) emitStmt(s sir.Stmt) {
	switch n := s.(type) {
	case *sir.Assign:
		if idx, ok := n.Target.(*sir.Index); ok {
			if _, nested := idx.Value.(*sir.Index); nested {
				e.fail(errors.BKD001, "c target holds containers by value; assignment through a nested index is unsupported")
				return
			}
			op := &sir.ContainerOp{Kind: sir.OpSet, Container: idx.Value.TypeOf().Kind}
			built, err := containerSystem{}.Build(op, []string{e.expr(idx.Value), e.expr(idx.Key), e.expr(n.Value)})
			if err != nil {
				e.fail(errors.BKD001, err.Error())
			}
			e.line("%s;", built)
			return
		}
		target, decl := e.assignTarget(n.Target)
		value := e.expr(n.Value)
		if decl != "" {
			e.line("%s %s = %s;", decl, target, value)
		} else {
			e.line("%s = %s;", target, value)
		}
	case *sir.If:
		e.line("if (%s) {", e.expr(n.Cond))
		e.indent++
		e.emitBlock(n.Then)
		e.indent--
		if len(n.Else) > 0 {
			e.line("} else {")
			e.indent++
			e.emitBlock(n.Else)
			e.indent--
		}
		e.line("}")
	case *sir.While:
		e.line("while (%s) {", e.expr(n.Cond))
		e.indent++
		e.emitBlock(n.Body)
		e.indent--
		e.line("}")
	case *sir.For:
		e.emitFor(n)
	case *sir.Return:
		if n.Value == nil {
			e.line("return;")
		} else {
			e.line("return %s;", e.expr(n.Value))
		}
	case *sir.ExprStmt:
		e.line("%s;", e.expr(n.X))
	default:
		e.fail(errors.UNS001, fmt.Sprintf("c target cannot lower statement %T", s))
	}
}

// assignTarget returns the C lvalue text for n.Target, plus a declaration
// prefix ("int64_t") the very first time a plain local is bound (spec's
// source subset has no explicit `let`; the c target declares on first
// write, matching §4.1's implicit-local-declaration semantics).
func (e *emitState) assignTarget(target sir.Expr) (string, string) {
	switch t := target.(type) {
	case *sir.Var:
		if e.declared[t.Name] {
			return e.name(t.Name), ""
		}
		e.declared[t.Name] = true
		spelling, err := typeSpelling(t.TypeOf())
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			spelling = "void*"
		}
		return e.name(t.Name), spelling
	case *sir.Index:
		op := &sir.ContainerOp{Kind: sir.OpSet, Container: t.Value.TypeOf().Kind}
		built, err := containerSystem{}.Build(op, []string{e.expr(t.Value), e.expr(t.Key), ""})
		if err != nil {
			e.fail(errors.BKD001, err.Error())
		}
		return built, ""
	case *sir.Attr:
		return fmt.Sprintf("%s->%s", e.expr(t.Value), e.name(t.Name)), ""
	default:
		e.fail(errors.UNS001, fmt.Sprintf("c target cannot assign to %T", target))
		return "", ""
	}
}

func (e *emitState) emitFor(n *sir.For) {
	v := e.name(n.Var)
	if n.Iter == nil {
		// Range-driven loop: RangeArgs is ([start,]stop[,step]) per parser convention.
		start, stop := "0", e.expr(n.RangeArgs[0])
		if len(n.RangeArgs) > 1 {
			start, stop = e.expr(n.RangeArgs[0]), e.expr(n.RangeArgs[1])
		}
		step := "1"
		if len(n.RangeArgs) > 2 {
			step = e.expr(n.RangeArgs[2])
		}
		e.line("for (int64_t %s = %s; %s < %s; %s += %s) {", v, start, v, stop, v, step)
		e.indent++
		e.emitBlock(n.Body)
		e.indent--
		e.line("}")
		return
	}
	iter := e.expr(n.Iter)
	idx := v + "_idx"
	e.line("for (int64_t %s = 0; %s < mgenc_len(%s); %s++) {", idx, idx, iter, idx)
	e.indent++
	spelling, err := typeSpelling(n.VarType)
	if err != nil {
		e.fail(errors.BKD001, err.Error())
		spelling = "void*"
	}
	e.line("%s %s = mgenc_get(%s, %s);", spelling, v, iter, idx)
	e.emitBlock(n.Body)
	e.indent--
	e.line("}")
}

func (e *emitState) expr(x sir.Expr) string {
	switch n := x.(type) {
	case *sir.Const:
		return constLiteral(n)
	case *sir.Var:
		return e.name(n.Name)
	case *sir.BinOp:
		return fmt.Sprintf("(%s %s %s)", e.expr(n.Left), cOperator(n.Op), e.expr(n.Right))
	case *sir.UnaryOp:
		return fmt.Sprintf("(%s%s)", cUnary(n.Op), e.expr(n.Operand))
	case *sir.Compare:
		return e.compare(n)
	case *sir.Call:
		return e.call(n)
	case *sir.MethodCall:
		return e.methodCall(n)
	case *sir.Index:
		return fmt.Sprintf("mgenc_get(%s, %s)", e.expr(n.Value), e.expr(n.Key))
	case *sir.SliceIndex:
		return fmt.Sprintf("mgenc_slice(%s, %s, %s, %s)", e.expr(n.Value), e.expr(n.Start), e.expr(n.Stop), e.expr(n.Step))
	case *sir.Attr:
		return fmt.Sprintf("%s->%s", e.expr(n.Value), e.name(n.Name))
	case *sir.ContainerLit:
		return e.containerLit(n)
	case *sir.Comprehension:
		return e.comprehension(n)
	default:
		e.fail(errors.UNS001, fmt.Sprintf("c target cannot lower expression %T", x))
		return "0"
	}
}

func (e *emitState) compare(n *sir.Compare) string {
	parts := make([]string, len(n.Ops))
	for i, op := range n.Ops {
		parts[i] = fmt.Sprintf("(%s %s %s)", e.expr(n.Operands[i]), cOperator(op), e.expr(n.Operands[i+1]))
	}
	return strings.Join(parts, " && ")
}

func (e *emitState) call(n *sir.Call) string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.expr(a)
	}
	if len(n.Args) > 0 {
		isFloat := n.Args[0].TypeOf().Kind == types.KindFloat
		if opName, ok := runtimeabi.ResolveBuiltin(n.Func, isFloat); ok {
			if m, found := table.Lookup(opName); found {
				return m.Apply(args)
			}
		}
	}
	if n.Func[0] >= 'A' && n.Func[0] <= 'Z' {
		// Capitalized callee names a class constructor; route to its _new helper.
		return fmt.Sprintf("%s_new(%s)", n.Func, strings.Join(args, ", "))
	}
	return fmt.Sprintf("%s(%s)", n.Func, strings.Join(args, ", "))
}

func (e *emitState) methodCall(n *sir.MethodCall) string {
	recv := e.expr(n.Receiver)
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.expr(a)
	}
	if n.Op != nil {
		operands := append([]string{recv}, args...)
		built, err := containerSystem{}.Build(n.Op, operands)
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			return "0"
		}
		return built
	}
	allArgs := append([]string{recv}, args...)
	return fmt.Sprintf("%s_%s(%s)", n.Receiver.TypeOf(), n.Method, strings.Join(allArgs, ", "))
}

func (e *emitState) containerLit(n *sir.ContainerLit) string {
	elems := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		elems[i] = e.expr(el)
	}
	switch n.Kind {
	case types.KindList:
		return fmt.Sprintf("mgenc_list_from(%d, %s)", len(elems), strings.Join(elems, ", "))
	case types.KindSet:
		return fmt.Sprintf("mgenc_set_from(%d, %s)", len(elems), strings.Join(elems, ", "))
	case types.KindDict:
		keys := make([]string, len(n.Keys))
		for i, k := range n.Keys {
			keys[i] = e.expr(k)
		}
		return fmt.Sprintf("mgenc_dict_from(%d, %s, %s)", len(elems), strings.Join(keys, ", "), strings.Join(elems, ", "))
	default:
		e.fail(errors.UNS001, "c target cannot lower tuple literals; tuples must be destructured before emission")
		return "0"
	}
}

// comprehension lowers to a GNU C statement-expression: allocate the result
// container, loop the generator(s), filter, append. The c target always
// uses this form; prefer_idiomatic_syntax is not consulted and no
// runtime-helper call is emitted for a comprehension.
func (e *emitState) comprehension(n *sir.Comprehension) string {
	var b strings.Builder
	fmt.Fprintf(&b, "({ mgenc_list_t* __acc = mgenc_list_new(); ")
	for _, g := range n.Generators {
		fmt.Fprintf(&b, "for (int64_t __i = 0; __i < mgenc_len(%s); __i++) { ", e.expr(g.Iter))
		spelling, err := typeSpelling(g.VarType)
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			spelling = "void*"
		}
		fmt.Fprintf(&b, "%s %s = mgenc_get(%s, __i); ", spelling, e.name(g.Var), e.expr(g.Iter))
	}
	for _, c := range n.Conds {
		fmt.Fprintf(&b, "if (!(%s)) continue; ", e.expr(c))
	}
	fmt.Fprintf(&b, "mgenc_append(__acc, %s); ", e.expr(n.Elem))
	for range n.Generators {
		b.WriteString("} ")
	}
	b.WriteString("__acc; })")
	return b.String()
}

func constLiteral(c *sir.Const) string {
	switch v := c.Value.(type) {
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return fmt.Sprintf("%q", v)
	case nil:
		return "NULL"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func cOperator(op string) string {
	switch op {
	case "//":
		return "/"
	case "and":
		return "&&"
	case "or":
		return "||"
	default:
		return op
	}
}

func cUnary(op string) string {
	if op == "not" {
		return "!"
	}
	return op
}
