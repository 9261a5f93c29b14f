package ocaml

import (
	"strings"
	"testing"

	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/infer"
	"github.com/sunholo/mgenc/internal/lexer"
	"github.com/sunholo/mgenc/internal/parser"
	"github.com/sunholo/mgenc/internal/sir"
	"github.com/sunholo/mgenc/internal/sirbuild"
)

func lowerToSIR(t *testing.T, src string) *sir.Module {
	t.Helper()
	l := lexer.New(src, "test.py")
	p := parser.New(l)
	mod := p.ParseModule("test")
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	eng := infer.New()
	results := map[string]*infer.Result{}
	for _, f := range mod.Funcs {
		results[sirbuild.FuncKey("", f.Name)] = eng.InferFunction(f)
	}
	if len(eng.Errors()) > 0 {
		t.Fatalf("inference errors: %v", eng.Errors())
	}
	b := sirbuild.New()
	sm := b.BuildModule(mod, results)
	if len(b.Errors()) > 0 {
		t.Fatalf("sirbuild errors: %v", b.Errors())
	}
	return sm
}

func TestEmitAdderProducesCurriedLet(t *testing.T) {
	sm := lowerToSIR(t, "def add(x: int, y: int) -> int:\n    return x + y\n")
	art, errs := (emitter{}).Emit(sm, backend.DefaultPreferences())
	if len(errs) != 0 {
		t.Fatalf("unexpected emit errors: %v", errs)
	}
	if !strings.Contains(art.Source, "let add x y =") {
		t.Errorf("expected curried let binding in output, got:\n%s", art.Source)
	}
	if !strings.Contains(art.Source, "(x + y)") {
		t.Errorf("expected return expression in output, got:\n%s", art.Source)
	}
}

func TestEmitMultipleStatementsChainsLetBindings(t *testing.T) {
	sm := lowerToSIR(t, "def calculate(x: int, y: int) -> int:\n    sum_val = x + y\n    product = x * y\n    return sum_val + product\n")
	art, errs := (emitter{}).Emit(sm, backend.DefaultPreferences())
	if len(errs) != 0 {
		t.Fatalf("unexpected emit errors: %v", errs)
	}
	for _, want := range []string{"let calculate x y =", "let sum_val = (x + y)", "let product = (x * y)", "(sum_val + product)"} {
		if !strings.Contains(art.Source, want) {
			t.Errorf("expected %q in output, got:\n%s", want, art.Source)
		}
	}
}

func TestEmitReassignedLocalBecomesRef(t *testing.T) {
	sm := lowerToSIR(t, "def count_up(n: int) -> int:\n    total = 0\n    i = 0\n    while i < n:\n        total = total + i\n        i = i + 1\n    return total\n")
	art, errs := (emitter{}).Emit(sm, backend.DefaultPreferences())
	if len(errs) != 0 {
		t.Fatalf("unexpected emit errors: %v", errs)
	}
	if !strings.Contains(art.Source, "ref 0") {
		t.Errorf("expected ref-cell prologue for reassigned locals, got:\n%s", art.Source)
	}
	if !strings.Contains(art.Source, ":= (!total + !i)") && !strings.Contains(art.Source, "total := (!total + !i)") {
		t.Errorf("expected total updated through its ref cell, got:\n%s", art.Source)
	}
}

func TestEmitClassProducesRecordAndConstructor(t *testing.T) {
	sm := lowerToSIR(t, "class Counter:\n    def __init__(self, start: int) -> None:\n        self.start: int = start\n        self.total: int = 0\n\n    def bump(self, value: int) -> None:\n        self.total = self.total + value\n")
	art, errs := (emitter{}).Emit(sm, backend.DefaultPreferences())
	if len(errs) != 0 {
		t.Fatalf("unexpected emit errors: %v", errs)
	}
	for _, want := range []string{"type counter = {", "create_counter", "counter_bump"} {
		if !strings.Contains(art.Source, want) {
			t.Errorf("expected %q in output, got:\n%s", want, art.Source)
		}
	}
}

func TestEmitComprehensionRoutesThroughRuntimeHelperByDefault(t *testing.T) {
	sm := lowerToSIR(t, "def filter_numbers(xs: list[int]) -> list[int]:\n    return [x * 2 for x in xs if x > 5]\n")
	art, errs := (emitter{}).Emit(sm, backend.DefaultPreferences())
	if len(errs) != 0 {
		t.Fatalf("unexpected emit errors: %v", errs)
	}
	if !strings.Contains(art.Source, "list_comprehension_with_filter") {
		t.Errorf("expected comprehension to route through the runtime helper, got:\n%s", art.Source)
	}
}

func TestBackendRegisteredAsOCaml(t *testing.T) {
	b, ok := backend.Lookup("ocaml")
	if !ok {
		t.Fatal("expected ocaml backend to be registered")
	}
	if b.FileExtension() != ".ml" {
		t.Errorf("expected .ml extension, got %s", b.FileExtension())
	}
	if !b.SupportsInternalUnion() {
		t.Error("expected ocaml backend to support internal unions")
	}
	if b.ContainerSemantics() != backend.ByReference {
		t.Errorf("expected ByReference container semantics, got %v", b.ContainerSemantics())
	}
}
