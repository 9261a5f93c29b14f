package infer

import (
	"testing"

	"github.com/sunholo/mgenc/internal/lexer"
	"github.com/sunholo/mgenc/internal/parser"
	"github.com/sunholo/mgenc/internal/types"
)

func TestFlowSensitiveInferenceAssignsIntWithConfidence(t *testing.T) {
	l := lexer.New("def f(x, y: int) -> int:\n    z = x + y\n    return z\n", "test.py")
	p := parser.New(l)
	mod := p.ParseModule("test")
	f := mod.Funcs[0]

	eng := New()
	res := eng.InferFunction(f)

	xParam := res.Signature.Params[0]
	if xParam.Term.String() != "Int" {
		t.Errorf("expected x inferred as Int, got %s", xParam.Term)
	}
	if xParam.Confidence <= 0.5 {
		t.Errorf("expected confidence > 0.5 for x, got %v", xParam.Confidence)
	}
	if res.Signature.Return.Term.String() != "Int" {
		t.Errorf("expected __return__ Int, got %s", res.Signature.Return.Term)
	}
}

func TestAmbiguousInferenceNumericJoinWidensToFloat(t *testing.T) {
	src := "def g(flag: bool) -> float:\n" +
		"    if flag:\n" +
		"        v = 42\n" +
		"    else:\n" +
		"        v = 3.14\n" +
		"    return v\n"
	l := lexer.New(src, "test.py")
	p := parser.New(l)
	mod := p.ParseModule("test")
	f := mod.Funcs[0]

	eng := New()
	res := eng.InferFunction(f)

	v := res.Locals["v"]
	if v.Term.String() != "Float" {
		t.Fatalf("expected v joined to Float, got %s", v.Term)
	}
	if v.Confidence > 0.9 {
		t.Errorf("expected confidence <= 0.9 after numeric coercion, got %v", v.Confidence)
	}
	if len(eng.Errors()) != 0 {
		t.Errorf("numeric join must not raise AmbiguousInference, got %v", eng.Errors())
	}
}

func TestNonNumericJoinRaisesAmbiguousInference(t *testing.T) {
	src := "def _h(flag: bool):\n" +
		"    if flag:\n" +
		"        v = 1\n" +
		"    else:\n" +
		"        v = \"oops\"\n" +
		"    return v\n"
	l := lexer.New(src, "test.py")
	p := parser.New(l)
	mod := p.ParseModule("test")
	f := mod.Funcs[0]

	eng := New()
	eng.InferFunction(f)

	found := false
	for _, r := range eng.Errors() {
		if r.Code == "AMB001" {
			found = true
		}
	}
	if !found {
		t.Error("expected AMB001 for a non-numeric join surfacing as Union at the return boundary")
	}
}

func TestAnnotatedParamsHaveConfidenceOne(t *testing.T) {
	l := lexer.New("def f(x: int, y: str) -> None:\n    pass\n", "test.py")
	p := parser.New(l)
	mod := p.ParseModule("test")
	f := mod.Funcs[0]

	eng := New()
	res := eng.InferFunction(f)

	for i, param := range res.Signature.Params {
		if param.Confidence != 1.0 {
			t.Errorf("param %d: expected confidence 1.0, got %v", i, param.Confidence)
		}
		if param.Origin != types.OriginAnnotated {
			t.Errorf("param %d: expected OriginAnnotated, got %v", i, param.Origin)
		}
	}
}

func TestReturnJoinedAcrossMultipleReturns(t *testing.T) {
	src := "def pick(flag: bool) -> int:\n" +
		"    if flag:\n" +
		"        return 1\n" +
		"    return 2\n"
	l := lexer.New(src, "test.py")
	p := parser.New(l)
	mod := p.ParseModule("test")
	f := mod.Funcs[0]

	eng := New()
	res := eng.InferFunction(f)
	if res.Signature.Return.Term.String() != "Int" {
		t.Errorf("expected joined return type Int, got %s", res.Signature.Return.Term)
	}
}
