package optimize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/mgenc/internal/errors"
)

func TestGetOptimizationInfoReturnsTableValues(t *testing.T) {
	o := New("x86_64-unknown-linux-gnu")
	cases := []struct {
		level Level
		want  Info
	}{
		{O0, Info{OptLevel: O0, OptName: "O0", TargetTriple: "x86_64-unknown-linux-gnu"}},
		{O1, Info{OptLevel: O1, OptName: "O1", InliningThreshold: 75, LoopUnrollingEnabled: true, TargetTriple: "x86_64-unknown-linux-gnu"}},
		{O2, Info{OptLevel: O2, OptName: "O2", InliningThreshold: 225, VectorizationEnabled: true, LoopUnrollingEnabled: true, TargetTriple: "x86_64-unknown-linux-gnu"}},
		{O3, Info{OptLevel: O3, OptName: "O3", InliningThreshold: 275, VectorizationEnabled: true, LoopUnrollingEnabled: true, AggressiveLoopUnroll: true, TargetTriple: "x86_64-unknown-linux-gnu"}},
	}
	for _, c := range cases {
		info, errReport := o.GetOptimizationInfo(c.level)
		require.Nil(t, errReport, "level %d", c.level)
		if diff := cmp.Diff(c.want, info); diff != "" {
			t.Errorf("level %d: Info mismatch (-want +got):\n%s", c.level, diff)
		}
	}
}

func TestGetOptimizationInfoRejectsInvalidLevel(t *testing.T) {
	o := New("x86_64-unknown-linux-gnu")
	_, errReport := o.GetOptimizationInfo(Level(99))
	require.NotNil(t, errReport, "expected an error for an out-of-range optimization level")
	assert.Equal(t, errors.OPT001, errReport.Code)
}

func TestOptimizeRejectsMalformedIR(t *testing.T) {
	o := New("x86_64-unknown-linux-gnu")
	_, errs := o.Optimize("this is not valid LLVM IR at all {{{", O1)
	require.NotEmpty(t, errs, "expected malformed IR to be rejected")
	assert.Equal(t, errors.IRP001, errs[0].Code)
}
