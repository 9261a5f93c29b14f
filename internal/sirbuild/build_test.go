package sirbuild

import (
	"testing"

	"github.com/sunholo/mgenc/internal/ast"
	"github.com/sunholo/mgenc/internal/infer"
	"github.com/sunholo/mgenc/internal/lexer"
	"github.com/sunholo/mgenc/internal/parser"
	"github.com/sunholo/mgenc/internal/sir"
	"github.com/sunholo/mgenc/internal/types"
)

// inferModule parses src, runs inference over every function and method, and
// returns the module alongside a results map keyed by FuncKey, matching what
// a pipeline stage ahead of sirbuild is responsible for assembling.
func inferModule(t *testing.T, src string) (*ast.Module, map[string]*infer.Result) {
	t.Helper()
	l := lexer.New(src, "test.py")
	p := parser.New(l)
	mod := p.ParseModule("test")
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}

	results := map[string]*infer.Result{}
	eng := infer.New()
	for _, f := range mod.Funcs {
		results[FuncKey("", f.Name)] = eng.InferFunction(f)
	}
	for _, c := range mod.Classes {
		for _, m := range c.Methods {
			results[FuncKey(c.Name, m.Name)] = eng.InferFunction(m)
		}
	}
	if len(eng.Errors()) > 0 {
		t.Fatalf("inference errors: %v", eng.Errors())
	}
	return mod, results
}

func TestBuildAdderLowersBinOpWithJoinedType(t *testing.T) {
	mod, results := inferModule(t, "def add(x: int, y: int) -> int:\n    return x + y\n")
	b := New()
	m := b.BuildModule(mod, results)
	if len(b.Errors()) != 0 {
		t.Fatalf("unexpected sirbuild errors: %v", b.Errors())
	}
	if len(m.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(m.Funcs))
	}
	f := m.Funcs[0]
	if f.Return.Kind != types.KindInt {
		t.Errorf("expected Int return, got %s", f.Return)
	}
	ret, ok := f.Body[0].(*sir.Return)
	if !ok {
		t.Fatalf("expected Return, got %T", f.Body[0])
	}
	bin, ok := ret.Value.(*sir.BinOp)
	if !ok {
		t.Fatalf("expected BinOp, got %T", ret.Value)
	}
	if bin.TypeOf().Kind != types.KindInt {
		t.Errorf("expected BinOp typed Int, got %s", bin.TypeOf())
	}
}

func TestBuildPreservesArityForUnannotatedParamRecoveredByUsage(t *testing.T) {
	mod, results := inferModule(t, "def add(x, y: int) -> int:\n    z = x + y\n    return z\n")
	b := New()
	m := b.BuildModule(mod, results)
	if len(b.Errors()) != 0 {
		t.Fatalf("unexpected sirbuild errors: %v", b.Errors())
	}
	f := m.Funcs[0]
	if len(f.Params) != 2 {
		t.Fatalf("expected both params lowered, got %#v", f.Params)
	}
	if f.Params[0].Name != "x" || f.Params[0].Type.Kind != types.KindInt {
		t.Errorf("expected x lowered as Int from usage, got %#v", f.Params[0])
	}
}

func TestBuildFibonacciProducesRecursiveCallNode(t *testing.T) {
	src := "def fib(n: int) -> int:\n" +
		"    if n < 2:\n" +
		"        return n\n" +
		"    return fib(n - 1) + fib(n - 2)\n"
	mod, results := inferModule(t, src)
	b := New()
	m := b.BuildModule(mod, results)
	if len(b.Errors()) != 0 {
		t.Fatalf("unexpected sirbuild errors: %v", b.Errors())
	}
	f := m.Funcs[0]
	ifStmt, ok := f.Body[0].(*sir.If)
	if !ok {
		t.Fatalf("expected If, got %T", f.Body[0])
	}
	if _, ok := ifStmt.Cond.(*sir.Compare); !ok {
		t.Fatalf("expected Compare condition, got %T", ifStmt.Cond)
	}
	tailReturn, ok := f.Body[1].(*sir.Return)
	if !ok {
		t.Fatalf("expected Return, got %T", f.Body[1])
	}
	sum, ok := tailReturn.Value.(*sir.BinOp)
	if !ok {
		t.Fatalf("expected BinOp, got %T", tailReturn.Value)
	}
	left, ok := sum.Left.(*sir.Call)
	if !ok || left.Func != "fib" {
		t.Fatalf("expected recursive Call to fib, got %#v", sum.Left)
	}
}

func TestBuildComprehensionLowersGeneratorAndFilter(t *testing.T) {
	src := "def doubled(xs: list[int]) -> list[int]:\n    return [x * 2 for x in xs if x > 5]\n"
	mod, results := inferModule(t, src)
	b := New()
	m := b.BuildModule(mod, results)
	if len(b.Errors()) != 0 {
		t.Fatalf("unexpected sirbuild errors: %v", b.Errors())
	}
	ret := m.Funcs[0].Body[0].(*sir.Return)
	comp, ok := ret.Value.(*sir.Comprehension)
	if !ok {
		t.Fatalf("expected Comprehension, got %T", ret.Value)
	}
	if len(comp.Generators) != 1 || comp.Generators[0].Var != "x" {
		t.Fatalf("unexpected generators: %#v", comp.Generators)
	}
	if comp.Generators[0].VarType.Kind != types.KindInt {
		t.Errorf("expected generator var typed Int, got %s", comp.Generators[0].VarType)
	}
	if len(comp.Conds) != 1 {
		t.Fatalf("expected 1 filter condition, got %d", len(comp.Conds))
	}
	if comp.TypeOf().Kind != types.KindList {
		t.Errorf("expected List result, got %s", comp.TypeOf())
	}
}

func TestBuildContainerLitReportsHeterogeneousElements(t *testing.T) {
	src := "def mix() -> None:\n    xs = [1, \"two\", 3]\n"
	mod, results := inferModule(t, src)
	b := New()
	b.BuildModule(mod, results)

	found := false
	for _, e := range b.Errors() {
		if e.Code == "HET001" {
			found = true
		}
	}
	if !found {
		t.Error("expected HET001 for a container literal mixing Int and Str")
	}
}

func TestBuildClassCollectsConstructorFields(t *testing.T) {
	src := "class Counter:\n" +
		"    def __init__(self, start: int):\n" +
		"        self.count = start\n" +
		"    def increment(self) -> None:\n" +
		"        self.count = self.count + 1\n"
	mod, results := inferModule(t, src)
	b := New()
	m := b.BuildModule(mod, results)
	if len(b.Errors()) != 0 {
		t.Fatalf("unexpected sirbuild errors: %v", b.Errors())
	}
	if len(m.Classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(m.Classes))
	}
	record := m.Classes[0].Record
	if len(record.Fields) != 1 || record.Fields[0].Name != "count" {
		t.Fatalf("expected a single 'count' field, got %#v", record.Fields)
	}
	if record.Fields[0].Type.Kind != types.KindInt {
		t.Errorf("expected count typed Int, got %s", record.Fields[0].Type)
	}
	if len(record.CtorParams) != 1 || record.CtorParams[0].Name != "start" {
		t.Fatalf("expected 1 ctor param 'start', got %#v", record.CtorParams)
	}
	if len(m.Classes[0].Methods) != 2 {
		t.Fatalf("expected 2 lowered methods, got %d", len(m.Classes[0].Methods))
	}
}
