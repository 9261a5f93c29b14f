package llvmir

import (
	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/runtimeabi"
)

// table is the llvmir target's op.* assignment (spec §4.6). Inlined entries
// name a dispatch tag the builder's own switch in applyOp() interprets
// directly against llvm.Builder instructions (there is no text template to
// substitute against, unlike the source-emitting targets); Helper entries
// name an extern C symbol declared on first use and called the way the
// pack's LLVM reference declares printf/atoi/atof on demand. Container and
// string-splitting ops are left unmapped: they require the container
// system this target gates off (spec §4.7), so MissingOps() reports them
// and call() returns an error for them, which its caller reports as
// UnsupportedByBackend (BKD001).
var table = runtimeabi.Table{
	runtimeabi.OpAbsInt:     {Inlined: true, Template: "abs_int"},
	runtimeabi.OpAbsFloat:   {Inlined: false, Helper: "fabs"},
	runtimeabi.OpBoolOf:     {Inlined: true, Template: "bool_of"},
	runtimeabi.OpStrOf:      {Inlined: false, Helper: "mgenc_rt_str_of"},
	runtimeabi.OpIntOfFloat: {Inlined: true, Template: "int_of_float"},
	runtimeabi.OpFloatOfInt: {Inlined: true, Template: "float_of_int"},
	runtimeabi.OpMin2Int:    {Inlined: true, Template: "min_int"},
	runtimeabi.OpMax2Int:    {Inlined: true, Template: "max_int"},
	runtimeabi.OpMin2Float:  {Inlined: true, Template: "min_float"},
	runtimeabi.OpMax2Float:  {Inlined: true, Template: "max_float"},
	runtimeabi.OpPrintValue: {Inlined: false, Helper: "mgenc_rt_print_value"},
	runtimeabi.OpStrUpper:   {Inlined: false, Helper: "mgenc_rt_str_upper"},
	runtimeabi.OpStrLower:   {Inlined: false, Helper: "mgenc_rt_str_lower"},
	runtimeabi.OpStrStrip:   {Inlined: false, Helper: "mgenc_rt_str_strip"},
	runtimeabi.OpStrReplace: {Inlined: false, Helper: "mgenc_rt_str_replace"},
}

// runtimeMapper adapts table to the backend.RuntimeMapper contract.
type runtimeMapper struct{}

func (runtimeMapper) Lookup(opName string) (backend.Op, bool) {
	m, ok := table.Lookup(runtimeabi.Name(opName))
	if !ok {
		return backend.Op{}, false
	}
	return backend.Op{Name: opName, Inlined: m.Inlined, Template: m.Template, Helper: m.Helper}, true
}

var _ backend.RuntimeMapper = runtimeMapper{}
