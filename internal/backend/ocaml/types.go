package ocaml

import (
	"fmt"

	"github.com/sunholo/mgenc/internal/types"
)

// typeSpelling returns the OCaml type text for t. Lists spell to native
// persistent lists; sets and dicts route through the Mgencrt runtime module,
// which backs them with Stdlib's Set/Hashtbl so the target never has to
// generate a functor instantiation per element type.
func typeSpelling(t *types.TypeTerm) (string, error) {
	switch t.Kind {
	case types.KindInt:
		return "int", nil
	case types.KindFloat:
		return "float", nil
	case types.KindBool:
		return "bool", nil
	case types.KindStr:
		return "string", nil
	case types.KindNone:
		return "unit", nil
	case types.KindList:
		elem, err := typeSpelling(t.Elems[0])
		if err != nil {
			return "", err
		}
		return elem + " list", nil
	case types.KindSet:
		elem, err := typeSpelling(t.Elems[0])
		if err != nil {
			return "", err
		}
		return elem + " Mgencrt.set", nil
	case types.KindDict:
		key, err := typeSpelling(t.Elems[0])
		if err != nil {
			return "", err
		}
		val, err := typeSpelling(t.Elems[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s, %s) Mgencrt.dict", key, val), nil
	case types.KindTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			spelling, err := typeSpelling(e)
			if err != nil {
				return "", err
			}
			parts[i] = spelling
		}
		out := parts[0]
		for _, p := range parts[1:] {
			out += " * " + p
		}
		return "(" + out + ")", nil
	case types.KindUnion:
		// SupportsInternalUnion is true for this target: a boundary Union
		// widens to a boxed value carried through the runtime module,
		// since the source subset gives no variant constructor names to
		// build a proper sum type from.
		return "Mgencrt.dyn", nil
	default:
		return "", fmt.Errorf("ocaml target cannot spell type %s", t)
	}
}

// defaultLiteral returns the zero value text for t, used to seed a mutable
// ref cell or a constructor field the source never initializes explicitly.
func defaultLiteral(t *types.TypeTerm) string {
	switch t.Kind {
	case types.KindInt:
		return "0"
	case types.KindFloat:
		return "0.0"
	case types.KindBool:
		return "false"
	case types.KindStr:
		return `""`
	case types.KindNone:
		return "()"
	case types.KindList:
		return "[]"
	case types.KindSet:
		return "Mgencrt.set_empty"
	case types.KindDict:
		return "Mgencrt.dict_empty"
	default:
		return "()"
	}
}
