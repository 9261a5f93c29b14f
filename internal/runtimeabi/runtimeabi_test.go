package runtimeabi

import "testing"

func TestMissingOpsReportsEveryUnmappedEntry(t *testing.T) {
	tbl := Table{OpAbsInt: {Inlined: true, Template: "(%s < 0 ? -%s : %s)"}}
	missing := tbl.MissingOps()
	if len(missing) != len(All)-1 {
		t.Fatalf("expected %d missing ops, got %d: %v", len(All)-1, len(missing), missing)
	}
	for _, n := range missing {
		if n == OpAbsInt {
			t.Error("op.abs_int should not be reported missing")
		}
	}
}

func TestLookupFindsMappedOp(t *testing.T) {
	tbl := Table{OpPrintValue: {Inlined: false, Helper: "rt_print_value"}}
	m, ok := tbl.Lookup(OpPrintValue)
	if !ok {
		t.Fatal("expected op.print_value to be found")
	}
	if m.Inlined {
		t.Error("expected a runtime-helper mapping, not inlined")
	}
	if m.Helper != "rt_print_value" {
		t.Errorf("expected helper rt_print_value, got %s", m.Helper)
	}
}

func TestCompleteTableReportsNoMissing(t *testing.T) {
	tbl := Table{}
	for _, n := range All {
		tbl[n] = Mapping{Inlined: true, Template: "%s"}
	}
	if missing := tbl.MissingOps(); len(missing) != 0 {
		t.Fatalf("expected a complete table, missing: %v", missing)
	}
}
