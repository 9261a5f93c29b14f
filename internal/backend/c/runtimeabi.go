package c

import (
	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/runtimeabi"
)

// table is the c target's complete op.* assignment (spec §4.6). Arithmetic
// primitives and string length are inlined as C expressions; the other string
// operations and container operations route to mgenc_rt.h helpers since C
// has no operator overloading.
var table = runtimeabi.Table{
	runtimeabi.OpAbsInt:      {Inlined: true, Template: "(%s < 0 ? -(%s) : (%s))"},
	runtimeabi.OpAbsFloat:    {Inlined: true, Template: "fabs(%s)"},
	runtimeabi.OpBoolOf:      {Inlined: false, Helper: "mgenc_bool_of"},
	runtimeabi.OpStrOf:       {Inlined: false, Helper: "mgenc_str_of"},
	runtimeabi.OpIntOfFloat:  {Inlined: true, Template: "(int64_t)(%s)"},
	runtimeabi.OpFloatOfInt:  {Inlined: true, Template: "(double)(%s)"},
	runtimeabi.OpLenString:   {Inlined: true, Template: "(int64_t)strlen(%s)"},
	runtimeabi.OpLenList:     {Inlined: false, Helper: "mgenc_len"},
	runtimeabi.OpLenDict:     {Inlined: false, Helper: "mgenc_len"},
	runtimeabi.OpLenSet:      {Inlined: false, Helper: "mgenc_len"},
	runtimeabi.OpMin2Int:     {Inlined: true, Template: "((%[1]s) < (%[2]s) ? (%[1]s) : (%[2]s))"},
	runtimeabi.OpMax2Int:     {Inlined: true, Template: "((%[1]s) > (%[2]s) ? (%[1]s) : (%[2]s))"},
	runtimeabi.OpMin2Float:   {Inlined: true, Template: "fmin(%s, %s)"},
	runtimeabi.OpMax2Float:   {Inlined: true, Template: "fmax(%s, %s)"},
	runtimeabi.OpPrintValue:  {Inlined: false, Helper: "mgenc_print_value"},
	runtimeabi.OpStrUpper:    {Inlined: false, Helper: "mgenc_str_upper"},
	runtimeabi.OpStrLower:    {Inlined: false, Helper: "mgenc_str_lower"},
	runtimeabi.OpStrStrip:    {Inlined: false, Helper: "mgenc_str_strip"},
	runtimeabi.OpStrSplit:    {Inlined: false, Helper: "mgenc_str_split"},
	runtimeabi.OpStrReplace:  {Inlined: false, Helper: "mgenc_str_replace"},
	runtimeabi.OpListCompFil: {Inlined: false, Helper: "mgenc_list_comprehension_with_filter"},
	runtimeabi.OpDictComp:    {Inlined: false, Helper: "mgenc_dict_comprehension"},
	runtimeabi.OpSetComp:     {Inlined: false, Helper: "mgenc_set_comprehension"},
}

// runtimeMapper adapts the op.* table to the backend.RuntimeMapper contract.
type runtimeMapper struct{}

func (runtimeMapper) Lookup(opName string) (backend.Op, bool) {
	m, ok := table.Lookup(runtimeabi.Name(opName))
	if !ok {
		return backend.Op{}, false
	}
	return backend.Op{Name: opName, Inlined: m.Inlined, Template: m.Template, Helper: m.Helper}, true
}

var _ backend.RuntimeMapper = runtimeMapper{}
