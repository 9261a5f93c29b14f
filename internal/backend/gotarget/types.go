package gotarget

import (
	"fmt"

	"github.com/sunholo/mgenc/internal/types"
)

// typeSpelling returns the Go type text for t. Containers spell to native
// slices/maps, matching the target's ByReference container semantics:
// Go slices and maps already alias through a variable binding, so
// `matrix[i][j] = v` needs no runtime boxing here.
func typeSpelling(t *types.TypeTerm) (string, error) {
	switch t.Kind {
	case types.KindInt:
		return "int64", nil
	case types.KindFloat:
		return "float64", nil
	case types.KindBool:
		return "bool", nil
	case types.KindStr:
		return "string", nil
	case types.KindNone:
		return "", nil
	case types.KindList:
		elem, err := typeSpelling(t.Elems[0])
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case types.KindSet:
		elem, err := typeSpelling(t.Elems[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("map[%s]struct{}", elem), nil
	case types.KindDict:
		key, err := typeSpelling(t.Elems[0])
		if err != nil {
			return "", err
		}
		val, err := typeSpelling(t.Elems[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("map[%s]%s", key, val), nil
	case types.KindTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			spelling, err := typeSpelling(e)
			if err != nil {
				return "", err
			}
			parts[i] = spelling
		}
		out := "struct {"
		for i, p := range parts {
			out += fmt.Sprintf(" F%d %s;", i, p)
		}
		return out + " }", nil
	case types.KindUnion:
		// SupportsInternalUnion is true for this target: a boundary Union
		// widens to interface{}, the natural Go "any of these" spelling.
		return "interface{}", nil
	default:
		return "", fmt.Errorf("go target cannot spell type %s", t)
	}
}
