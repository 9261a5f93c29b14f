package c

import (
	"fmt"

	"github.com/sunholo/mgenc/internal/types"
)

// typeSpelling returns the C type text for t. Containers spell to opaque
// runtime struct pointers (internal/backend/c/containers.go builds their
// expressions); arenas/ownership are left to the generated program's own
// stack discipline, matching the target's ByValue container semantics.
func typeSpelling(t *types.TypeTerm) (string, error) {
	switch t.Kind {
	case types.KindInt:
		return "int64_t", nil
	case types.KindFloat:
		return "double", nil
	case types.KindBool:
		return "bool", nil
	case types.KindStr:
		return "const char*", nil
	case types.KindNone:
		return "void", nil
	case types.KindList:
		elem, err := typeSpelling(t.Elems[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("mgenc_list_%s*", mangleElem(elem)), nil
	case types.KindSet:
		elem, err := typeSpelling(t.Elems[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("mgenc_set_%s*", mangleElem(elem)), nil
	case types.KindDict:
		key, err := typeSpelling(t.Elems[0])
		if err != nil {
			return "", err
		}
		val, err := typeSpelling(t.Elems[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("mgenc_dict_%s_%s*", mangleElem(key), mangleElem(val)), nil
	case types.KindTuple:
		return "", fmt.Errorf("c target has no tuple type spelling; lower tuples to struct fields before emission")
	default:
		return "", fmt.Errorf("c target cannot spell type %s", t)
	}
}

// mangleElem turns a C type spelling into a valid identifier fragment used
// to name the monomorphized container helper family.
func mangleElem(spelling string) string {
	out := make([]byte, 0, len(spelling))
	for i := 0; i < len(spelling); i++ {
		c := spelling[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			out = append(out, c)
		}
	}
	return string(out)
}
