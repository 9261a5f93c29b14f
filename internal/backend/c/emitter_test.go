package c

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

func TestEmitAdderProducesTwoParamFunction(t *testing.T) {
	sm := lowerToSIR(t, "def add(x: int, y: int) -> int:\n    return x + y\n")
	art, errs := (emitter{}).Emit(sm, backend.DefaultPreferences())
	if len(errs) != 0 {
		t.Fatalf("unexpected emit errors: %v", errs)
	}
	if !strings.Contains(art.Source, "int64_t add(int64_t x, int64_t y)") {
		t.Errorf("expected add signature in output, got:\n%s", art.Source)
	}
	if !strings.Contains(art.Source, "return (x + y);") {
		t.Errorf("expected return statement in output, got:\n%s", art.Source)
	}
}

func TestEmitCamelCaseNamingConvention(t *testing.T) {
	sm := lowerToSIR(t, "def add_one(x: int) -> int:\n    return x + 1\n")
	prefs := backend.DefaultPreferences()
	prefs.NamingConvention = "camel_case"
	art, errs := (emitter{}).Emit(sm, prefs)
	if len(errs) != 0 {
		t.Fatalf("unexpected emit errors: %v", errs)
	}
	if !strings.Contains(art.Source, "add_one(int64_t x)") {
		t.Errorf("function names are not subject to naming_convention; expected add_one kept, got:\n%s", art.Source)
	}
}

func TestEmitComprehensionBuildsStatementExpression(t *testing.T) {
	sm := lowerToSIR(t, "def doubled(xs: list[int]) -> list[int]:\n    return [x * 2 for x in xs if x > 5]\n")
	art, errs := (emitter{}).Emit(sm, backend.DefaultPreferences())
	if len(errs) != 0 {
		t.Fatalf("unexpected emit errors: %v", errs)
	}
	for _, want := range []string{"mgenc_list_new()", "mgenc_len(xs)", "if (!((x > 5))) continue;", "mgenc_append(__acc, (x * 2));"} {
		if !strings.Contains(art.Source, want) {
			t.Errorf("expected %q in output, got:\n%s", want, art.Source)
		}
	}
}

func TestBackendRegisteredAsC(t *testing.T) {
	b, ok := backend.Lookup("c")
	if !ok {
		t.Fatal("expected c backend to be registered")
	}
	if b.FileExtension() != ".c" {
		t.Errorf("expected .c extension, got %s", b.FileExtension())
	}
	if !b.SupportsFeature(backend.FeatureContainers) {
		t.Error("expected c backend to support containers")
	}
}
