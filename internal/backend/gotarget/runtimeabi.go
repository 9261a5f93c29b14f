package gotarget

import (
	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/runtimeabi"
)

// table is the go target's op.* assignment. Most scalar ops and all string
// ops inline directly onto Go operators/stdlib calls; abs_int, bool_of, the
// two-int min/max and the comprehension ops route to the mgencrt support
// package.
var table = runtimeabi.Table{
	runtimeabi.OpAbsInt:      {Inlined: false, Helper: "mgencrt.AbsInt"},
	runtimeabi.OpAbsFloat:    {Inlined: true, Template: "math.Abs(%s)"},
	runtimeabi.OpBoolOf:      {Inlined: false, Helper: "mgencrt.BoolOf"},
	runtimeabi.OpStrOf:       {Inlined: true, Template: "fmt.Sprint(%s)"},
	runtimeabi.OpIntOfFloat:  {Inlined: true, Template: "int64(%s)"},
	runtimeabi.OpFloatOfInt:  {Inlined: true, Template: "float64(%s)"},
	runtimeabi.OpLenString:   {Inlined: true, Template: "int64(len(%s))"},
	runtimeabi.OpLenList:     {Inlined: true, Template: "int64(len(%s))"},
	runtimeabi.OpLenDict:     {Inlined: true, Template: "int64(len(%s))"},
	runtimeabi.OpLenSet:      {Inlined: true, Template: "int64(len(%s))"},
	runtimeabi.OpMin2Int:     {Inlined: false, Helper: "mgencrt.Min2Int"},
	runtimeabi.OpMax2Int:     {Inlined: false, Helper: "mgencrt.Max2Int"},
	runtimeabi.OpMin2Float:   {Inlined: true, Template: "math.Min(%s, %s)"},
	runtimeabi.OpMax2Float:   {Inlined: true, Template: "math.Max(%s, %s)"},
	runtimeabi.OpPrintValue:  {Inlined: true, Template: "fmt.Println(%s)"},
	runtimeabi.OpStrUpper:    {Inlined: true, Template: "strings.ToUpper(%s)"},
	runtimeabi.OpStrLower:    {Inlined: true, Template: "strings.ToLower(%s)"},
	runtimeabi.OpStrStrip:    {Inlined: true, Template: "strings.TrimSpace(%s)"},
	runtimeabi.OpStrSplit:    {Inlined: true, Template: "strings.Split(%s, %s)"},
	runtimeabi.OpStrReplace:  {Inlined: true, Template: "strings.ReplaceAll(%s, %s, %s)"},
	runtimeabi.OpListCompFil: {Inlined: false, Helper: "mgencrt.ListComprehensionWithFilter"},
	runtimeabi.OpDictComp:    {Inlined: false, Helper: "mgencrt.DictComprehension"},
	runtimeabi.OpSetComp:     {Inlined: false, Helper: "mgencrt.SetComprehension"},
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
