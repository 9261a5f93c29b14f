package llvmir

import (
	"fmt"

	"github.com/sunholo/mgenc/internal/types"
	"tinygo.org/x/go-llvm"
)

// llvmType returns the LLVM type realizing t: integers are 64-bit signed,
// booleans are represented as 64-bit with 0/1, floats are double-precision.
// Containers and unions have no realization on this target; callers must
// reject them before reaching codegen. Types are built against the global
// LLVM context (module and builder live in a dedicated context; scalar
// types are taken from the shared global one).
func llvmType(t *types.TypeTerm) (llvm.Type, error) {
	switch t.Kind {
	case types.KindInt, types.KindBool:
		return llvm.Int64Type(), nil
	case types.KindFloat:
		return llvm.DoubleType(), nil
	case types.KindStr:
		return llvm.PointerType(llvm.Int8Type(), 0), nil
	case types.KindNone:
		return llvm.VoidType(), nil
	default:
		return llvm.Type{}, fmt.Errorf("llvmir target has no type realization for %s; containers are feature-gated", t)
	}
}

// isFloatType reports whether t lowers to a double, the dispatch rule every
// typed arithmetic/comparison opcode choice in this package uses.
func isFloatType(t *types.TypeTerm) bool { return t.Kind == types.KindFloat }
