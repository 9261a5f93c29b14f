package ocaml

import (
	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/runtimeabi"
)

// table is the ocaml target's op.* assignment. Numeric conversions,
// comparisons, string length and case mapping inline onto Stdlib
// operators/functions; bool_of, str_of, printing, strip/split/replace,
// dict/set length and the comprehension ops route through Mgencrt, a module
// this package references but does not generate.
var table = runtimeabi.Table{
	runtimeabi.OpAbsInt:      {Inlined: true, Template: "(abs %s)"},
	runtimeabi.OpAbsFloat:    {Inlined: true, Template: "(abs_float %s)"},
	runtimeabi.OpBoolOf:      {Inlined: false, Helper: "Mgencrt.bool_of"},
	runtimeabi.OpStrOf:       {Inlined: false, Helper: "Mgencrt.str_of"},
	runtimeabi.OpIntOfFloat:  {Inlined: true, Template: "(int_of_float %s)"},
	runtimeabi.OpFloatOfInt:  {Inlined: true, Template: "(float_of_int %s)"},
	runtimeabi.OpLenString:   {Inlined: true, Template: "(String.length %s)"},
	runtimeabi.OpLenList:     {Inlined: true, Template: "(List.length %s)"},
	runtimeabi.OpLenDict:     {Inlined: true, Template: "(Mgencrt.length %s)"},
	runtimeabi.OpLenSet:      {Inlined: true, Template: "(Mgencrt.length %s)"},
	runtimeabi.OpMin2Int:     {Inlined: true, Template: "(min %s %s)"},
	runtimeabi.OpMax2Int:     {Inlined: true, Template: "(max %s %s)"},
	runtimeabi.OpMin2Float:   {Inlined: true, Template: "(min %s %s)"},
	runtimeabi.OpMax2Float:   {Inlined: true, Template: "(max %s %s)"},
	runtimeabi.OpPrintValue:  {Inlined: false, Helper: "Mgencrt.print_value"},
	runtimeabi.OpStrUpper:    {Inlined: true, Template: "(String.uppercase_ascii %s)"},
	runtimeabi.OpStrLower:    {Inlined: true, Template: "(String.lowercase_ascii %s)"},
	runtimeabi.OpStrStrip:    {Inlined: false, Helper: "Mgencrt.str_strip"},
	runtimeabi.OpStrSplit:    {Inlined: false, Helper: "Mgencrt.str_split"},
	runtimeabi.OpStrReplace:  {Inlined: false, Helper: "Mgencrt.str_replace"},
	runtimeabi.OpListCompFil: {Inlined: false, Helper: "Mgencrt.list_comprehension_with_filter"},
	runtimeabi.OpDictComp:    {Inlined: false, Helper: "Mgencrt.dict_comprehension"},
	runtimeabi.OpSetComp:     {Inlined: false, Helper: "Mgencrt.set_comprehension"},
}

type runtimeMapper struct{}

func (runtimeMapper) Lookup(opName string) (backend.Op, bool) {
	m, ok := table.Lookup(runtimeabi.Name(opName))
	if !ok {
		return backend.Op{}, false
	}
	return backend.Op{Name: opName, Inlined: m.Inlined, Template: m.Template, Helper: m.Helper}, true
}

var _ backend.RuntimeMapper = runtimeMapper{}
