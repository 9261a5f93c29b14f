// Package gotarget implements the garbage-collected service lowering
// target: containers spell to native slices/maps and locals declare with
// `:=` on first write, matching Go's own idiom.
package gotarget

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

func (target) Name() string          { return "go" }
func (target) FileExtension() string { return ".go" }
func (target) SupportsFeature(name string) bool {
	switch name {
	case backend.FeatureFunctions, backend.FeatureVariables, backend.FeatureArithmetic,
		backend.FeatureControlFlow, backend.FeatureLoops, backend.FeatureClasses, backend.FeatureContainers:
		return true
	default:
		return false
	}
}
func (target) ContainerSemantics() backend.ContainerSemantics { return backend.ByReference }
func (target) SupportsInternalUnion() bool                   { return true }
func (target) Emitter() backend.Emitter                      { return emitter{} }
func (target) Factory() backend.Factory                      { return factory{} }
func (target) Builder() backend.Builder                      { return recipeBuilder{} }

type factory struct{}

func (factory) Containers() backend.ContainerSystem { return containerSystem{} }
func (factory) RuntimeABI() backend.RuntimeMapper   { return runtimeMapper{} }

var _ backend.Backend = target{}

type emitter struct{}

func (emitter) Emit(mod *sir.Module, prefs backend.Preferences) (*backend.Artifact, []*errors.Report) {
	em := &emitState{prefs: prefs, uses: map[string]bool{}}
	em.emitModule(mod)
	if len(em.errs) > 0 {
		return nil, em.errs
	}
	var out strings.Builder
	out.WriteString("package main\n\n")
	if len(em.uses) > 0 {
		out.WriteString("import (\n")
		for _, pkg := range []string{"fmt", "math", "strings", "mgencrt"} {
			if em.uses[pkg] {
				fmt.Fprintf(&out, "\t%q\n", importPath(pkg))
			}
		}
		out.WriteString(")\n\n")
	}
	out.WriteString(em.out.String())
	return &backend.Artifact{Source: out.String(), Extension: ".go"}, nil
}

func importPath(pkg string) string {
	if pkg == "mgencrt" {
		return "mgenc_generated/mgencrt"
	}
	return pkg
}

type emitState struct {
	out      strings.Builder
	prefs    backend.Preferences
	errs     []*errors.Report
	indent   int
	declared map[string]bool
	uses     map[string]bool
}

func (e *emitState) fail(code, msg string) {
	e.errs = append(e.errs, &errors.Report{Schema: "mgenc.error/v1", Code: code, Phase: "backend", Message: msg})
}

func (e *emitState) name(n string) string { return naming.Apply(n, naming.Convention(e.prefs.NamingConvention)) }

// markUses records which import-path packages a runtime-ABI mapping's
// template or helper spelling references, so emitModule's import block
// always matches what the emitted body actually calls.
func (e *emitState) markUses(m runtimeabi.Mapping) {
	spelling := m.Template
	if !m.Inlined {
		spelling = m.Helper
	}
	for _, pkg := range []string{"fmt", "math", "strings", "mgencrt"} {
		if strings.HasPrefix(spelling, pkg+".") {
			e.uses[pkg] = true
		}
	}
}

func (e *emitState) line(format string, args ...interface{}) {
	e.out.WriteString(strings.Repeat("\t", e.indent))
	fmt.Fprintf(&e.out, format, args...)
	e.out.WriteByte('\n')
}

func (e *emitState) emitModule(mod *sir.Module) {
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
	e.line("type %s struct {", c.Record.Name)
	e.indent++
	for _, f := range c.Record.Fields {
		spelling, err := typeSpelling(f.Type)
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			continue
		}
		e.line("%s %s", exportedField(f.Name), spelling)
	}
	e.indent--
	e.line("}")
	e.out.WriteByte('\n')
}

func exportedField(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func (e *emitState) signature(name string, params []sir.Param, ret *types.TypeTerm, receiver string) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		spelling, err := typeSpelling(p.Type)
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			spelling = "interface{}"
		}
		parts = append(parts, fmt.Sprintf("%s %s", e.name(p.Name), spelling))
	}
	retSpelling, err := typeSpelling(ret)
	if err != nil {
		e.fail(errors.BKD001, err.Error())
		retSpelling = ""
	}
	recv := ""
	if receiver != "" {
		recv = fmt.Sprintf("(%s *%s) ", e.name("self"), receiver)
	}
	return fmt.Sprintf("func %s%s(%s) %s", recv, name, strings.Join(parts, ", "), retSpelling)
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
	e.line("%s {", e.signature(m.Name, m.Params, m.Return, c.Record.Name))
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
		target, op := e.assignTarget(n.Target)
		e.line("%s %s %s", target, op, e.expr(n.Value))
	case *sir.If:
		e.line("if %s {", e.expr(n.Cond))
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
		e.line("for %s {", e.expr(n.Cond))
		e.indent++
		e.emitBlock(n.Body)
		e.indent--
		e.line("}")
	case *sir.For:
		e.emitFor(n)
	case *sir.Return:
		if n.Value == nil {
			e.line("return")
		} else {
			e.line("return %s", e.expr(n.Value))
		}
	case *sir.ExprStmt:
		e.line("%s", e.expr(n.X))
	default:
		e.fail(errors.UNS001, fmt.Sprintf("go target cannot lower statement %T", s))
	}
}

func (e *emitState) assignTarget(target sir.Expr) (string, string) {
	switch t := target.(type) {
	case *sir.Var:
		if e.declared[t.Name] {
			return e.name(t.Name), "="
		}
		e.declared[t.Name] = true
		return e.name(t.Name), ":="
	case *sir.Index:
		return fmt.Sprintf("%s[%s]", e.expr(t.Value), e.expr(t.Key)), "="
	case *sir.Attr:
		return fmt.Sprintf("%s.%s", e.expr(t.Value), exportedField(t.Name)), "="
	default:
		e.fail(errors.UNS001, fmt.Sprintf("go target cannot assign to %T", target))
		return "", "="
	}
}

func (e *emitState) emitFor(n *sir.For) {
	v := e.name(n.Var)
	if n.Iter == nil {
		start, stop := "0", e.expr(n.RangeArgs[0])
		if len(n.RangeArgs) > 1 {
			start, stop = e.expr(n.RangeArgs[0]), e.expr(n.RangeArgs[1])
		}
		step := "1"
		if len(n.RangeArgs) > 2 {
			step = e.expr(n.RangeArgs[2])
		}
		e.line("for %s := %s; %s < %s; %s += %s {", v, start, v, stop, v, step)
		e.indent++
		e.emitBlock(n.Body)
		e.indent--
		e.line("}")
		return
	}
	e.line("for _, %s := range %s {", v, e.expr(n.Iter))
	e.indent++
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
		return fmt.Sprintf("(%s %s %s)", e.expr(n.Left), goOperator(n.Op), e.expr(n.Right))
	case *sir.UnaryOp:
		return fmt.Sprintf("(%s%s)", goUnary(n.Op), e.expr(n.Operand))
	case *sir.Compare:
		return e.compare(n)
	case *sir.Call:
		return e.call(n)
	case *sir.MethodCall:
		return e.methodCall(n)
	case *sir.Index:
		return fmt.Sprintf("%s[%s]", e.expr(n.Value), e.expr(n.Key))
	case *sir.SliceIndex:
		return fmt.Sprintf("%s[%s:%s]", e.expr(n.Value), e.expr(n.Start), e.expr(n.Stop))
	case *sir.Attr:
		return fmt.Sprintf("%s.%s", e.expr(n.Value), exportedField(n.Name))
	case *sir.ContainerLit:
		return e.containerLit(n)
	case *sir.Comprehension:
		return e.comprehension(n)
	default:
		e.fail(errors.UNS001, fmt.Sprintf("go target cannot lower expression %T", x))
		return "nil"
	}
}

func (e *emitState) compare(n *sir.Compare) string {
	parts := make([]string, len(n.Ops))
	for i, op := range n.Ops {
		parts[i] = fmt.Sprintf("(%s %s %s)", e.expr(n.Operands[i]), goOperator(op), e.expr(n.Operands[i+1]))
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
				e.markUses(m)
				return m.Apply(args)
			}
		}
	}
	if n.Func[0] >= 'A' && n.Func[0] <= 'Z' {
		return fmt.Sprintf("New%s(%s)", n.Func, strings.Join(args, ", "))
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
		if n.Op.Kind == sir.OpContains {
			e.uses["mgencrt"] = true
		}
		built, err := containerSystem{}.Build(n.Op, append([]string{recv}, args...))
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			return "nil"
		}
		return built
	}
	return fmt.Sprintf("%s.%s(%s)", recv, exportedField(n.Method), strings.Join(args, ", "))
}

func (e *emitState) containerLit(n *sir.ContainerLit) string {
	elems := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		elems[i] = e.expr(el)
	}
	spelling, err := typeSpelling(n.Type)
	if err != nil {
		e.fail(errors.BKD001, err.Error())
		spelling = "interface{}"
	}
	switch n.Kind {
	case types.KindList:
		return fmt.Sprintf("%s{%s}", spelling, strings.Join(elems, ", "))
	case types.KindSet:
		parts := make([]string, len(elems))
		for i, el := range elems {
			parts[i] = fmt.Sprintf("%s: {}", el)
		}
		return fmt.Sprintf("%s{%s}", spelling, strings.Join(parts, ", "))
	case types.KindDict:
		parts := make([]string, len(elems))
		for i, k := range n.Keys {
			parts[i] = fmt.Sprintf("%s: %s", e.expr(k), elems[i])
		}
		return fmt.Sprintf("%s{%s}", spelling, strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("%s{%s}", spelling, strings.Join(elems, ", "))
	}
}

// comprehension lowers to an IIFE building a slice natively (the idiomatic
// choice Go favors over a closure-typed runtime helper).
func (e *emitState) comprehension(n *sir.Comprehension) string {
	var b strings.Builder
	elemSpelling, err := typeSpelling(n.Elem.TypeOf())
	if err != nil {
		e.fail(errors.BKD001, err.Error())
		elemSpelling = "interface{}"
	}
	fmt.Fprintf(&b, "func() []%s { acc := []%s{}; ", elemSpelling, elemSpelling)
	for _, g := range n.Generators {
		fmt.Fprintf(&b, "for _, %s := range %s { ", e.name(g.Var), e.expr(g.Iter))
	}
	for _, c := range n.Conds {
		fmt.Fprintf(&b, "if !(%s) { continue }; ", e.expr(c))
	}
	fmt.Fprintf(&b, "acc = append(acc, %s); ", e.expr(n.Elem))
	for range n.Generators {
		b.WriteString("}; ")
	}
	b.WriteString("return acc }()")
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
		return "nil"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func goOperator(op string) string {
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

func goUnary(op string) string {
	if op == "not" {
		return "!"
	}
	return op
}
