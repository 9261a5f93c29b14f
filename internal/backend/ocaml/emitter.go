// Package ocaml implements the functional lowering target: a function
// body is one OCaml expression built from
// `let ... in` bindings and `;`-sequenced imperative subexpressions, locals
// the source reassigns or mutates inside a loop become `ref` cells, and
// containers lean on persistent lists plus the Mgencrt runtime module for
// sets and dicts.
package ocaml

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

func (target) Name() string          { return "ocaml" }
func (target) FileExtension() string { return ".ml" }
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
	em := &emitState{prefs: prefs}
	em.emitModule(mod)
	if len(em.errs) > 0 {
		return nil, em.errs
	}
	return &backend.Artifact{Source: em.out.String(), Extension: ".ml"}, nil
}

type emitState struct {
	out         strings.Builder
	prefs       backend.Preferences
	errs        []*errors.Report
	mutable     map[string]bool              // locals bound as `ref` cells in the current function
	mutableType map[string]*types.TypeTerm    // a mutable local's declared type, for its ref's initial value
	bound       map[string]bool               // locals whose `let`/ref prologue has already been emitted
}

func (e *emitState) fail(code, msg string) {
	e.errs = append(e.errs, &errors.Report{Schema: "mgenc.error/v1", Code: code, Phase: "backend", Message: msg})
}

func (e *emitState) name(n string) string { return naming.Apply(n, naming.Convention(e.prefs.NamingConvention)) }

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

func recordName(c *sir.ClassDef) string { return strings.ToLower(c.Record.Name) }

func (e *emitState) emitStruct(c *sir.ClassDef) {
	fmt.Fprintf(&e.out, "type %s = {\n", recordName(c))
	for _, f := range c.Record.Fields {
		spelling, err := typeSpelling(f.Type)
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			continue
		}
		fmt.Fprintf(&e.out, "  mutable %s : %s;\n", e.name(f.Name), spelling)
	}
	e.out.WriteString("}\n\n")

	ctorArgs := make([]string, 0, len(c.Record.CtorParams))
	hasArg := map[string]bool{}
	for _, p := range c.Record.CtorParams {
		ctorArgs = append(ctorArgs, e.name(p.Name))
		hasArg[p.Name] = true
	}
	fmt.Fprintf(&e.out, "let create_%s %s = {\n", recordName(c), strings.Join(ctorArgs, " "))
	for _, f := range c.Record.Fields {
		value := defaultLiteral(f.Type)
		if hasArg[f.Name] {
			value = e.name(f.Name)
		}
		fmt.Fprintf(&e.out, "  %s = %s;\n", e.name(f.Name), value)
	}
	e.out.WriteString("}\n\n")
}

func (e *emitState) signature(name string, params []sir.Param, receiver string) string {
	parts := make([]string, 0, len(params)+1)
	if receiver != "" {
		parts = append(parts, "self")
	}
	if len(params) == 0 && receiver == "" {
		parts = append(parts, "()")
	}
	for _, p := range params {
		parts = append(parts, e.name(p.Name))
	}
	return fmt.Sprintf("let %s %s =", name, strings.Join(parts, " "))
}

func (e *emitState) emitFunction(f *sir.FunctionDef) {
	e.mutable, e.mutableType = collectMutable(f.Body)
	e.bound = map[string]bool{}
	for _, p := range f.Params {
		e.bound[p.Name] = true
	}
	fmt.Fprintf(&e.out, "%s\n", e.signature(f.Name, f.Params, ""))
	e.out.WriteString(e.emitPrologue())
	e.out.WriteString(e.emitBlock(f.Body))
	e.out.WriteString("\n\n")
}

func (e *emitState) emitMethod(c *sir.ClassDef, m *sir.FunctionDef) {
	e.mutable, e.mutableType = collectMutable(m.Body)
	e.bound = map[string]bool{}
	for _, p := range m.Params {
		e.bound[p.Name] = true
	}
	name := fmt.Sprintf("%s_%s", recordName(c), e.name(m.Name))
	fmt.Fprintf(&e.out, "%s\n", e.signature(name, m.Params, "self"))
	e.out.WriteString(e.emitPrologue())
	e.out.WriteString(e.emitBlock(m.Body))
	e.out.WriteString("\n\n")
}

// emitPrologue declares a `ref` cell for every mutable local up front, since
// a name later reassigned conditionally (inside an `if`/loop branch that
// may not run) cannot wait for its first `let` to double as its binding.
func (e *emitState) emitPrologue() string {
	var b strings.Builder
	names := make([]string, 0, len(e.mutable))
	for n := range e.mutable {
		if e.bound[n] {
			continue // parameter, not a local the body declares
		}
		names = append(names, n)
	}
	sortStrings(names)
	for _, n := range names {
		init := "0"
		if t := e.mutableType[n]; t != nil {
			init = defaultLiteral(t)
		}
		fmt.Fprintf(&b, "  let %s = ref %s in\n", e.name(n), init)
		e.bound[n] = true
	}
	return b.String()
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func (e *emitState) emitBlock(body []sir.Stmt) string {
	if len(body) == 0 {
		return "  ()"
	}
	parts := make([]string, len(body))
	for i, s := range body {
		parts[i] = e.emitStmt(s, i == len(body)-1)
	}
	return strings.Join(parts, "\n")
}

func (e *emitState) emitStmt(s sir.Stmt, tail bool) string {
	switch n := s.(type) {
	case *sir.Assign:
		return e.assign(n, tail)
	case *sir.If:
		thenExpr := e.emitBlock(n.Then)
		elseExpr := "  ()"
		if len(n.Else) > 0 {
			elseExpr = e.emitBlock(n.Else)
		}
		suffix := ";"
		if tail {
			suffix = ""
		}
		return fmt.Sprintf("  (if %s then begin\n%s\n  end else begin\n%s\n  end)%s", e.expr(n.Cond), thenExpr, elseExpr, suffix)
	case *sir.While:
		body := e.emitBlock(n.Body)
		suffix := ";"
		if tail {
			suffix = ""
		}
		return fmt.Sprintf("  (while %s do\n%s\n  done)%s", e.expr(n.Cond), body, suffix)
	case *sir.For:
		return e.emitFor(n, tail)
	case *sir.Return:
		if n.Value == nil {
			return "  ()"
		}
		return "  " + e.expr(n.Value)
	case *sir.ExprStmt:
		suffix := ";"
		if tail {
			suffix = ""
		}
		return fmt.Sprintf("  %s%s", e.expr(n.X), suffix)
	default:
		e.fail(errors.UNS001, fmt.Sprintf("ocaml target cannot lower statement %T", s))
		return "  ()"
	}
}

func (e *emitState) assign(n *sir.Assign, tail bool) string {
	switch t := n.Target.(type) {
	case *sir.Var:
		value := e.expr(n.Value)
		if e.mutable[t.Name] {
			suffix := ";"
			if tail {
				suffix = ""
			}
			return fmt.Sprintf("  %s := %s%s", e.name(t.Name), value, suffix)
		}
		e.bound[t.Name] = true
		return fmt.Sprintf("  let %s = %s in", e.name(t.Name), value)
	case *sir.Index:
		op := &sir.ContainerOp{Kind: sir.OpSet, Container: t.Value.TypeOf().Kind}
		built, err := containerSystem{}.Build(op, []string{e.expr(t.Value), e.expr(t.Key), e.expr(n.Value)})
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			built = "()"
		}
		suffix := ";"
		if tail {
			suffix = ""
		}
		return fmt.Sprintf("  %s%s", built, suffix)
	case *sir.Attr:
		suffix := ";"
		if tail {
			suffix = ""
		}
		return fmt.Sprintf("  %s.%s <- %s%s", e.expr(t.Value), e.name(t.Name), e.expr(n.Value), suffix)
	default:
		e.fail(errors.UNS001, fmt.Sprintf("ocaml target cannot assign to %T", n.Target))
		return "  ()"
	}
}

func (e *emitState) emitFor(n *sir.For, tail bool) string {
	suffix := ";"
	if tail {
		suffix = ""
	}
	v := e.name(n.Var)
	if n.Iter == nil && len(n.RangeArgs) <= 2 {
		start, stop := "0", e.expr(n.RangeArgs[0])
		if len(n.RangeArgs) > 1 {
			start, stop = e.expr(n.RangeArgs[0]), e.expr(n.RangeArgs[1])
		}
		body := e.emitBlock(n.Body)
		return fmt.Sprintf("  (for %s = %s to (%s - 1) do\n%s\n  done)%s", v, start, stop, body, suffix)
	}
	if n.Iter == nil {
		// Stepped range: OCaml's native `for` has no step clause, so fall
		// back to a ref-counted while loop.
		start, stop, step := e.expr(n.RangeArgs[0]), e.expr(n.RangeArgs[1]), e.expr(n.RangeArgs[2])
		idx := v + "_i"
		body := e.emitBlock(n.Body)
		return fmt.Sprintf("  (let %s = ref %s in\n  while !%s < %s do\n  let %s = !%s in\n%s\n  %s := !%s + %s\n  done)%s",
			idx, start, idx, stop, v, idx, body, idx, idx, step, suffix)
	}
	body := e.emitBlock(n.Body)
	return fmt.Sprintf("  (List.iter (fun %s ->\n%s\n  ) %s)%s", v, body, e.expr(n.Iter), suffix)
}

func (e *emitState) expr(x sir.Expr) string {
	switch n := x.(type) {
	case *sir.Const:
		return constLiteral(n)
	case *sir.Var:
		if e.mutable[n.Name] {
			return "!" + e.name(n.Name)
		}
		return e.name(n.Name)
	case *sir.BinOp:
		return fmt.Sprintf("(%s %s %s)", e.expr(n.Left), ocamlOperator(n.Op, n.Left.TypeOf()), e.expr(n.Right))
	case *sir.UnaryOp:
		return fmt.Sprintf("(%s%s)", ocamlUnary(n.Op), e.expr(n.Operand))
	case *sir.Compare:
		return e.compare(n)
	case *sir.Call:
		return e.call(n)
	case *sir.MethodCall:
		return e.methodCall(n)
	case *sir.Index:
		op := &sir.ContainerOp{Kind: sir.OpGet, Container: n.Value.TypeOf().Kind}
		built, err := containerSystem{}.Build(op, []string{e.expr(n.Value), e.expr(n.Key)})
		if err != nil {
			e.fail(errors.BKD001, err.Error())
			return "()"
		}
		return built
	case *sir.SliceIndex:
		return fmt.Sprintf("(Mgencrt.slice %s %s %s)", e.expr(n.Value), e.expr(n.Start), e.expr(n.Stop))
	case *sir.Attr:
		return fmt.Sprintf("%s.%s", e.expr(n.Value), e.name(n.Name))
	case *sir.ContainerLit:
		return e.containerLit(n)
	case *sir.Comprehension:
		return e.comprehension(n)
	default:
		e.fail(errors.UNS001, fmt.Sprintf("ocaml target cannot lower expression %T", x))
		return "()"
	}
}

func (e *emitState) compare(n *sir.Compare) string {
	parts := make([]string, len(n.Ops))
	for i, op := range n.Ops {
		parts[i] = fmt.Sprintf("(%s %s %s)", e.expr(n.Operands[i]), ocamlOperator(op, n.Operands[i].TypeOf()), e.expr(n.Operands[i+1]))
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
		return fmt.Sprintf("(create_%s %s)", strings.ToLower(n.Func), strings.Join(args, " "))
	}
	return fmt.Sprintf("(%s %s)", n.Func, strings.Join(args, " "))
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
			return "()"
		}
		return built
	}
	allArgs := append([]string{recv}, args...)
	return fmt.Sprintf("(%s_%s %s)", strings.ToLower(n.Receiver.TypeOf().String()), e.name(n.Method), strings.Join(allArgs, " "))
}

func (e *emitState) containerLit(n *sir.ContainerLit) string {
	elems := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		elems[i] = e.expr(el)
	}
	switch n.Kind {
	case types.KindList:
		return "[" + strings.Join(elems, "; ") + "]"
	case types.KindSet:
		out := "Mgencrt.set_empty"
		for _, el := range elems {
			out = fmt.Sprintf("(Mgencrt.set_add %s %s)", out, el)
		}
		return out
	case types.KindDict:
		out := "Mgencrt.dict_empty"
		for i, k := range n.Keys {
			out = fmt.Sprintf("(Mgencrt.dict_set %s %s %s)", out, e.expr(k), elems[i])
		}
		return out
	case types.KindTuple:
		return "(" + strings.Join(elems, ", ") + ")"
	default:
		e.fail(errors.UNS001, "ocaml target cannot lower this container literal kind")
		return "()"
	}
}

// comprehension lowers to a native List.map over List.filter when
// prefer_idiomatic_syntax is set and there is exactly one generator;
// otherwise it routes through the Mgencrt.list_comprehension_with_filter
// runtime helper.
func (e *emitState) comprehension(n *sir.Comprehension) string {
	if !e.prefs.PreferIdiomaticSyntax || len(n.Generators) != 1 {
		return fmt.Sprintf("(Mgencrt.list_comprehension_with_filter %s)", e.expr(n.Generators[0].Iter))
	}
	g := n.Generators[0]
	pred := "(fun _ -> true)"
	if len(n.Conds) > 0 {
		parts := make([]string, len(n.Conds))
		for i, c := range n.Conds {
			parts[i] = e.expr(c)
		}
		pred = fmt.Sprintf("(fun %s -> %s)", e.name(g.Var), strings.Join(parts, " && "))
	}
	return fmt.Sprintf("(List.map (fun %s -> %s) (List.filter %s %s))", e.name(g.Var), e.expr(n.Elem), pred, e.expr(g.Iter))
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
		return "()"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func ocamlOperator(op string, operandType *types.TypeTerm) string {
	isFloat := operandType != nil && operandType.Kind == types.KindFloat
	switch op {
	case "//":
		return "/"
	case "and":
		return "&&"
	case "or":
		return "||"
	case "+":
		if isFloat {
			return "+."
		}
		return "+"
	case "-":
		if isFloat {
			return "-."
		}
		return "-"
	case "*":
		if isFloat {
			return "*."
		}
		return "*"
	case "/":
		if isFloat {
			return "/."
		}
		return "/"
	default:
		return op
	}
}

func ocamlUnary(op string) string {
	if op == "not" {
		return "not "
	}
	return op
}

// collectMutable finds every local a function reassigns more than once, or
// assigns at all inside a conditional/loop body, since such a local cannot
// be bound by a single `let` the way a straight-line one can. It also
// records each mutable local's type, for its ref cell's initial value.
func collectMutable(body []sir.Stmt) (map[string]bool, map[string]*types.TypeTerm) {
	mutable := map[string]bool{}
	typeOf := map[string]*types.TypeTerm{}
	counts := map[string]int{}
	var walk func(stmts []sir.Stmt, nested bool)
	walk = func(stmts []sir.Stmt, nested bool) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *sir.Assign:
				if v, ok := n.Target.(*sir.Var); ok {
					counts[v.Name]++
					typeOf[v.Name] = v.TypeOf()
					if nested || counts[v.Name] > 1 {
						mutable[v.Name] = true
					}
				}
			case *sir.If:
				walk(n.Then, true)
				walk(n.Else, true)
			case *sir.While:
				walk(n.Body, true)
			case *sir.For:
				walk(n.Body, true)
			}
		}
	}
	walk(body, false)
	return mutable, typeOf
}
