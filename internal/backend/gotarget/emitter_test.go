package gotarget

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
	if !strings.Contains(art.Source, "func add(x int64, y int64) int64") {
		t.Errorf("expected add signature in output, got:\n%s", art.Source)
	}
	if !strings.Contains(art.Source, "return (x + y)") {
		t.Errorf("expected return statement in output, got:\n%s", art.Source)
	}
}

func TestEmitComprehensionBuildsIIFE(t *testing.T) {
	sm := lowerToSIR(t, "def doubled(xs: list[int]) -> list[int]:\n    return [x * 2 for x in xs if x > 5]\n")
	art, errs := (emitter{}).Emit(sm, backend.DefaultPreferences())
	if len(errs) != 0 {
		t.Fatalf("unexpected emit errors: %v", errs)
	}
	for _, want := range []string{"func() []int64 { acc := []int64{};", "for _, x := range xs {", "if !((x > 5)) { continue };", "acc = append(acc, (x * 2));", "return acc }()"} {
		if !strings.Contains(art.Source, want) {
			t.Errorf("expected %q in output, got:\n%s", want, art.Source)
		}
	}
}

func TestEmitPrintBuiltinRoutesThroughFmtAndTracksImport(t *testing.T) {
	sm := lowerToSIR(t, "def show(x: int) -> None:\n    print(x)\n")
	art, errs := (emitter{}).Emit(sm, backend.DefaultPreferences())
	if len(errs) != 0 {
		t.Fatalf("unexpected emit errors: %v", errs)
	}
	if !strings.Contains(art.Source, `"fmt"`) {
		t.Errorf("expected fmt import to be tracked, got:\n%s", art.Source)
	}
	if !strings.Contains(art.Source, "fmt.Println(x)") {
		t.Errorf("expected print(x) routed through fmt.Println, got:\n%s", art.Source)
	}
}

func TestBackendRegisteredAsGo(t *testing.T) {
	b, ok := backend.Lookup("go")
	if !ok {
		t.Fatal("expected go backend to be registered")
	}
	if b.FileExtension() != ".go" {
		t.Errorf("expected .go extension, got %s", b.FileExtension())
	}
	if !b.SupportsFeature(backend.FeatureContainers) {
		t.Error("expected go backend to support containers")
	}
	if b.ContainerSemantics() != backend.ByReference {
		t.Errorf("expected ByReference container semantics, got %v", b.ContainerSemantics())
	}
}
