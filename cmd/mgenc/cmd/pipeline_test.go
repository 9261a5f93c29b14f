package cmd

import (
	"testing"

	"github.com/sunholo/mgenc/internal/errors"
)

func TestRunFrontendSucceedsOnAdder(t *testing.T) {
	res := runFrontend("def add(x: int, y: int) -> int:\n    return x + y\n", "test.py")
	if len(res.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diags)
	}
	if len(res.Module.Funcs) != 1 || res.Module.Funcs[0].Name != "add" {
		t.Fatalf("expected a single add function, got %#v", res.Module.Funcs)
	}
}

func TestRunFrontendRecoversUnannotatedParamFromUsage(t *testing.T) {
	res := runFrontend("def f(x, y: int) -> int:\n    z = x + y\n    return z\n", "test.py")
	if len(res.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diags)
	}
	if len(res.Module.Funcs) != 1 {
		t.Fatalf("expected a single function, got %#v", res.Module.Funcs)
	}
}

func TestRunFrontendReportsSyntaxError(t *testing.T) {
	res := runFrontend("def add(x: int\n    return x\n", "test.py")
	if len(res.Diags) == 0 {
		t.Fatal("expected diagnostics for malformed source")
	}
}

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{"", 0},
		{errors.UNS001, 2},
		{errors.HET001, 2},
		{errors.AMB001, 3},
		{errors.ANN001, 3},
		{errors.BKD001, 4},
		{errors.OPT001, 4},
		{errors.IRP001, 5},
		{errors.SYN001, 1},
	}
	for _, tt := range cases {
		var diags []*errors.Report
		if tt.code != "" {
			diags = []*errors.Report{{Code: tt.code}}
		}
		if got := exitCodeFor(diags); got != tt.want {
			t.Errorf("exitCodeFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestLoadCompilationMergesFlagsOverDefaults(t *testing.T) {
	buildTarget = "c"
	buildOptLevel = "O0"
	buildPrefs = []string{"naming_convention=camel_case"}
	defer func() {
		buildTarget, buildOptLevel, buildPrefs, buildConfig = "", "", nil, ""
	}()

	c, err := loadCompilation()
	if err != nil {
		t.Fatalf("loadCompilation failed: %v", err)
	}
	if c.Target != "c" {
		t.Errorf("expected target c, got %s", c.Target)
	}
	if c.Preferences["naming_convention"] != "camel_case" {
		t.Errorf("expected naming_convention camel_case, got %v", c.Preferences)
	}
}

func TestLoadCompilationRejectsMalformedPref(t *testing.T) {
	buildTarget = "c"
	buildPrefs = []string{"not-a-kv-pair"}
	defer func() {
		buildTarget, buildOptLevel, buildPrefs, buildConfig = "", "", nil, ""
	}()

	if _, err := loadCompilation(); err == nil {
		t.Fatal("expected an error for a malformed --pref flag")
	}
}
