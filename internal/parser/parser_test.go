package parser

import (
	"testing"

	"github.com/sunholo/mgenc/internal/ast"
	"github.com/sunholo/mgenc/internal/lexer"
)

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	l := lexer.New(src, "test.py")
	p := New(l)
	mod := p.ParseModule("test")
	for _, e := range p.Errors() {
		t.Errorf("unexpected parse error: %v", e)
	}
	return mod
}

func TestParseSimpleFunction(t *testing.T) {
	mod := parseModule(t, "def add(x: int, y: int) -> int:\n    return x + y\n")
	if len(mod.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(mod.Funcs))
	}
	f := mod.Funcs[0]
	if f.Name != "add" {
		t.Errorf("expected name add, got %s", f.Name)
	}
	if len(f.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(f.Params))
	}
	if f.ReturnType == nil || f.ReturnType.String() != "int" {
		t.Errorf("expected return type int, got %v", f.ReturnType)
	}
	if len(f.Body) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(f.Body))
	}
	ret, ok := f.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected Return statement, got %T", f.Body[0])
	}
	bin, ok := ret.Value.(*ast.BinaryOp)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected BinaryOp +, got %#v", ret.Value)
	}
}

func TestParseIfElifElse(t *testing.T) {
	src := "def classify(x: int) -> int:\n" +
		"    if x > 0:\n" +
		"        return 1\n" +
		"    elif x < 0:\n" +
		"        return -1\n" +
		"    else:\n" +
		"        return 0\n"
	mod := parseModule(t, src)
	f := mod.Funcs[0]
	ifStmt, ok := f.Body[0].(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %T", f.Body[0])
	}
	if len(ifStmt.Else) != 1 {
		t.Fatalf("expected elif chain in Else, got %d stmts", len(ifStmt.Else))
	}
	elif, ok := ifStmt.Else[0].(*ast.If)
	if !ok {
		t.Fatalf("expected nested If for elif, got %T", ifStmt.Else[0])
	}
	if len(elif.Else) != 1 {
		t.Fatalf("expected final else body, got %d stmts", len(elif.Else))
	}
}

func TestParseForRangePreservesArgs(t *testing.T) {
	src := "def count(n: int) -> int:\n" +
		"    total = 0\n" +
		"    for i in range(0, n):\n" +
		"        total += i\n" +
		"    return total\n"
	mod := parseModule(t, src)
	f := mod.Funcs[0]
	forStmt, ok := f.Body[1].(*ast.For)
	if !ok {
		t.Fatalf("expected For, got %T", f.Body[1])
	}
	if len(forStmt.RangeArgs) != 2 {
		t.Fatalf("expected 2 range args, got %d", len(forStmt.RangeArgs))
	}
	aug, ok := forStmt.Body[0].(*ast.AugAssign)
	if !ok || aug.Op != "+" {
		t.Fatalf("expected AugAssign +=, got %#v", forStmt.Body[0])
	}
}

func TestParseChainedComparison(t *testing.T) {
	mod := parseModule(t, "def inrange(x: int, y: int, z: int) -> bool:\n    return x < y < z\n")
	ret := mod.Funcs[0].Body[0].(*ast.Return)
	cmp, ok := ret.Value.(*ast.Compare)
	if !ok {
		t.Fatalf("expected Compare, got %T", ret.Value)
	}
	if len(cmp.Operands) != 3 || len(cmp.Ops) != 2 {
		t.Fatalf("expected 3 operands / 2 ops, got %d/%d", len(cmp.Operands), len(cmp.Ops))
	}
}

func TestParseListComprehension(t *testing.T) {
	mod := parseModule(t, "def doubled(xs: list[int]) -> list[int]:\n    return [x * 2 for x in xs if x > 0]\n")
	ret := mod.Funcs[0].Body[0].(*ast.Return)
	comp, ok := ret.Value.(*ast.Comprehension)
	if !ok {
		t.Fatalf("expected Comprehension, got %T", ret.Value)
	}
	if len(comp.Generators) != 1 || comp.Generators[0].Var != "x" {
		t.Fatalf("unexpected generators: %#v", comp.Generators)
	}
	if len(comp.Conds) != 1 {
		t.Fatalf("expected 1 filter condition, got %d", len(comp.Conds))
	}
}

func TestParseClassWithMethod(t *testing.T) {
	src := "class Counter:\n" +
		"    def get(self) -> int:\n" +
		"        return 0\n"
	mod := parseModule(t, src)
	if len(mod.Classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(mod.Classes))
	}
	c := mod.Classes[0]
	if len(c.Methods) != 1 || c.Methods[0].Name != "get" {
		t.Fatalf("unexpected methods: %#v", c.Methods)
	}
	if !c.Methods[0].IsMethod || c.Methods[0].Receiver != "self" {
		t.Errorf("expected method with self receiver, got %#v", c.Methods[0])
	}
}

func TestParseMissingReturnAnnotationReported(t *testing.T) {
	l := lexer.New("def f(x: int):\n    return x\n", "test.py")
	p := New(l)
	p.ParseModule("test")
	found := false
	for _, e := range p.Errors() {
		if e.Code == "ANN001" {
			found = true
		}
	}
	if !found {
		t.Error("expected ANN001 for missing return annotation")
	}
}

func TestParseUnannotatedParamDeferredToStageB(t *testing.T) {
	l := lexer.New("def f(x, y: int) -> int:\n    return y\n", "test.py")
	p := New(l)
	mod := p.ParseModule("test")
	for _, e := range p.Errors() {
		if e.Code == "ANN001" {
			t.Errorf("parser should defer unannotated non-self params to Stage B, got ANN001: %s", e.Error())
		}
	}
	if len(mod.Funcs) != 1 || len(mod.Funcs[0].Params) != 2 || mod.Funcs[0].Params[0].Annotation != nil {
		t.Fatalf("unexpected params: %#v", mod.Funcs[0].Params)
	}
}

func TestParseMultipleInheritanceRejected(t *testing.T) {
	l := lexer.New("class C(A, B):\n    pass\n", "test.py")
	p := New(l)
	p.ParseModule("test")
	found := false
	for _, e := range p.Errors() {
		if e.Code == "UNS002" {
			found = true
		}
	}
	if !found {
		t.Error("expected UNS002 for multiple inheritance")
	}
}
