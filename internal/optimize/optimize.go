// Package optimize implements the four canonical optimization levels over
// the low-level IR: each level is a declarative pass pipeline built on
// tinygo.org/x/go-llvm, the same binding the llvmir backend uses to
// construct the IR in the first place. Every context/builder/module is
// disposed on every exit path, the same discipline the llvmir backend
// follows.
package optimize

import (
	"fmt"

	"github.com/sunholo/mgenc/internal/errors"
	"tinygo.org/x/go-llvm"
)

// Level is one of the four canonical optimization levels, O0 through O3.
type Level int

const (
	O0 Level = iota
	O1
	O2
	O3
)

// Info is the record get_optimization_info() returns for a given Level
// (spec §4.8).
type Info struct {
	OptLevel              Level
	OptName               string
	InliningThreshold     int
	VectorizationEnabled  bool
	LoopUnrollingEnabled  bool
	AggressiveLoopUnroll  bool
	TargetTriple          string
}

var levelTable = map[Level]Info{
	O0: {OptLevel: O0, OptName: "O0", InliningThreshold: 0, VectorizationEnabled: false, LoopUnrollingEnabled: false},
	O1: {OptLevel: O1, OptName: "O1", InliningThreshold: 75, VectorizationEnabled: false, LoopUnrollingEnabled: true},
	O2: {OptLevel: O2, OptName: "O2", InliningThreshold: 225, VectorizationEnabled: true, LoopUnrollingEnabled: true},
	O3: {OptLevel: O3, OptName: "O3", InliningThreshold: 275, VectorizationEnabled: true, LoopUnrollingEnabled: true, AggressiveLoopUnroll: true},
}

// Optimizer runs one compilation's worth of optimize() calls against a
// fixed target triple. A new instance is constructed once per compilation,
// matching spec §4.8's "constructed once per compilation" wording.
type Optimizer struct {
	TargetTriple string
}

// New returns an Optimizer targeting triple (e.g. "x86_64-unknown-linux-gnu").
func New(triple string) *Optimizer {
	return &Optimizer{TargetTriple: triple}
}

// GetOptimizationInfo returns the declarative record for level, failing
// with InvalidOptimizationLevel (OPT001) when level is outside O0-O3.
func (o *Optimizer) GetOptimizationInfo(level Level) (Info, *errors.Report) {
	info, ok := levelTable[level]
	if !ok {
		return Info{}, &errors.Report{
			Schema:  "mgenc.error/v1",
			Code:    errors.OPT001,
			Phase:   "optimize",
			Message: fmt.Sprintf("optimization level %d is outside O0-O3", level),
		}
	}
	info.TargetTriple = o.TargetTriple
	return info, nil
}

// Optimize parses irText as LLVM IR, runs the pass pipeline for level
// against it, and returns the optimized IR's text form. Every native
// resource (context, module, memory buffer) is released on every exit
// path, including a parse or verification failure.
func (o *Optimizer) Optimize(irText string, level Level) (string, []*errors.Report) {
	info, errReport := o.GetOptimizationInfo(level)
	if errReport != nil {
		return "", []*errors.Report{errReport}
	}

	ctx := llvm.NewContext()
	defer ctx.Dispose()

	buf := llvm.NewMemoryBufferFromMemoryRangeCopy([]byte(irText), "module")
	mod, err := ctx.ParseIR(buf)
	if err != nil {
		return "", []*errors.Report{{
			Schema:  "mgenc.error/v1",
			Code:    errors.IRP001,
			Phase:   "optimize",
			Message: "malformed IR text: " + err.Error(),
		}}
	}
	defer mod.Dispose()

	if verifyErr := llvm.VerifyModule(mod, llvm.ReturnStatusAction); verifyErr != nil {
		return "", []*errors.Report{{
			Schema:  "mgenc.error/v1",
			Code:    errors.IRP002,
			Phase:   "optimize",
			Message: "IR module failed verification: " + verifyErr.Error(),
		}}
	}

	if level == O0 {
		// Level 0 preserves IR structure; only a verification fixup pass
		// runs, never inlining/vectorization/unrolling.
		pm := llvm.NewPassManager()
		defer pm.Dispose()
		pm.AddVerifierPass()
		pm.Run(mod)
		return mod.String(), nil
	}

	pmb := llvm.NewPassManagerBuilder()
	defer pmb.Dispose()
	pmb.SetOptLevel(int(level))
	pmb.SetSizeLevel(0)
	pmb.UseInlinerWithThreshold(info.InliningThreshold)
	if info.LoopUnrollingEnabled {
		pmb.SetLoopVectorize(info.VectorizationEnabled)
		pmb.SetSLPVectorize(info.VectorizationEnabled)
	}

	pm := llvm.NewPassManager()
	defer pm.Dispose()
	pmb.Populate(pm)
	pm.Run(mod)

	return mod.String(), nil
}
