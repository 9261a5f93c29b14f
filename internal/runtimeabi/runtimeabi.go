// Package runtimeabi defines the stable, target-independent op.* vocabulary
// (spec §4.6) and the per-target mapping tables that route each op to either
// an inlined expression template or a named runtime helper. No emitter ever
// emits a source-language identifier directly for one of these operations;
// it always goes through a Table lookup first.
package runtimeabi

import (
	"fmt"
	"strings"
)

// Name is one op.* vocabulary entry. Values match spec §4.6 verbatim.
type Name string

const (
	OpAbsInt      Name = "op.abs_int"
	OpAbsFloat    Name = "op.abs_float"
	OpBoolOf      Name = "op.bool_of"
	OpStrOf       Name = "op.str_of"
	OpIntOfFloat  Name = "op.int_of_float"
	OpFloatOfInt  Name = "op.float_of_int"
	OpLenString   Name = "op.len_string"
	OpLenList     Name = "op.len_list"
	OpLenDict     Name = "op.len_dict"
	OpLenSet      Name = "op.len_set"
	OpMin2Int     Name = "op.min2_int"
	OpMax2Int     Name = "op.max2_int"
	OpMin2Float   Name = "op.min2_float"
	OpMax2Float   Name = "op.max2_float"
	OpPrintValue  Name = "op.print_value"
	OpStrUpper    Name = "op.str_upper"
	OpStrLower    Name = "op.str_lower"
	OpStrStrip    Name = "op.str_strip"
	OpStrSplit    Name = "op.str_split"
	OpStrReplace  Name = "op.str_replace"
	OpListCompFil Name = "op.list_comprehension_with_filter"
	OpDictComp    Name = "op.dict_comprehension"
	OpSetComp     Name = "op.set_comprehension"
)

// All enumerates the full vocabulary every emitter must support, in the
// order spec §4.6 lists them.
var All = []Name{
	OpAbsInt, OpAbsFloat,
	OpBoolOf, OpStrOf, OpIntOfFloat, OpFloatOfInt,
	OpLenString, OpLenList, OpLenDict, OpLenSet,
	OpMin2Int, OpMax2Int, OpMin2Float, OpMax2Float,
	OpPrintValue,
	OpStrUpper, OpStrLower, OpStrStrip, OpStrSplit, OpStrReplace,
	OpListCompFil, OpDictComp, OpSetComp,
}

// Mapping is how one target realizes one op: either an inline expression
// template (operands substituted by index, e.g. "(%s < 0 ? -%s : %s)" for
// abs_int) or a call to a named runtime helper routed through a per-target
// runtime module.
type Mapping struct {
	Inlined  bool
	Template string
	Helper   string
}

// Apply renders m against operands, either substituting them into the
// inline Template (repeating a single operand to fill every placeholder,
// the common case for comparison-style templates like abs) or calling the
// named Helper.
func (m Mapping) Apply(operands []string) string {
	if !m.Inlined {
		return fmt.Sprintf("%s(%s)", m.Helper, strings.Join(operands, ", "))
	}
	want := strings.Count(m.Template, "%s")
	args := operands
	if len(operands) == 1 && want > 1 {
		args = make([]string, want)
		for i := range args {
			args[i] = operands[0]
		}
	}
	anyArgs := make([]interface{}, len(args))
	for i, a := range args {
		anyArgs[i] = a
	}
	return fmt.Sprintf(m.Template, anyArgs...)
}

// Table is a target's complete op.* -> Mapping assignment. Every target
// package builds one constant Table and exposes it through its Factory's
// RuntimeABI().
type Table map[Name]Mapping

// Lookup finds name's mapping in t, if the target declares one.
func (t Table) Lookup(name Name) (Mapping, bool) {
	m, ok := t[name]
	return m, ok
}

// MissingOps reports which of the required vocabulary entries t leaves
// unmapped, used by a target's own tests to assert completeness.
func (t Table) MissingOps() []Name {
	var missing []Name
	for _, n := range All {
		if _, ok := t[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// builtinOps maps the source subset's builtin call names to the op.*
// vocabulary entry an emitter must route them through, so no emitter ever
// hand-rolls a builtin's target-language spelling outside the Table. Pairs
// with an int/float variant are resolved by the caller based on the first
// argument's decided type.
var builtinOps = map[string][2]Name{
	"abs":   {OpAbsInt, OpAbsFloat},
	"min":   {OpMin2Int, OpMin2Float},
	"max":   {OpMax2Int, OpMax2Float},
	"print": {OpPrintValue, OpPrintValue},
	"str":   {OpStrOf, OpStrOf},
	"bool":  {OpBoolOf, OpBoolOf},
	"int":   {OpIntOfFloat, OpIntOfFloat},
	"float": {OpFloatOfInt, OpFloatOfInt},
}

// ResolveBuiltin reports the op.* name a call to funcName should route
// through, if funcName names one of the subset's builtins. isFloat selects
// the float-typed variant for the ops that have one.
func ResolveBuiltin(funcName string, isFloat bool) (Name, bool) {
	pair, ok := builtinOps[funcName]
	if !ok {
		return "", false
	}
	if isFloat {
		return pair[1], true
	}
	return pair[0], true
}
