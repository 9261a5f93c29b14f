package ocaml

import (
	"fmt"

	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/sir"
	"github.com/sunholo/mgenc/internal/types"
)

// containerSystem realizes spec §4.5 for the ocaml target: list operations
// lower to native persistent-list syntax, sets and dicts route through the
// Mgencrt runtime module that wraps Stdlib's Set/Hashtbl behind a single
// monomorphic element type decided at generation time.
type containerSystem struct{}

func (containerSystem) TypeSpelling(t *types.TypeTerm) (string, error) { return typeSpelling(t) }

func (containerSystem) Build(op *sir.ContainerOp, operands []string) (string, error) {
	switch op.Kind {
	case sir.OpLen:
		if op.Container == types.KindList {
			return fmt.Sprintf("(List.length %s)", operands[0]), nil
		}
		return fmt.Sprintf("(Mgencrt.length %s)", operands[0]), nil
	case sir.OpAppend:
		return fmt.Sprintf("(%s @ [%s])", operands[0], operands[1]), nil
	case sir.OpGet:
		if op.Container == types.KindList {
			return fmt.Sprintf("(List.nth %s %s)", operands[0], operands[1]), nil
		}
		return fmt.Sprintf("(Mgencrt.dict_get %s %s)", operands[0], operands[1]), nil
	case sir.OpSet:
		if op.Container == types.KindList {
			return fmt.Sprintf("Mgencrt.list_set %s %s %s", operands[0], operands[1], operands[2]), nil
		}
		return fmt.Sprintf("Mgencrt.dict_set %s %s %s", operands[0], operands[1], operands[2]), nil
	case sir.OpContains:
		if op.Container == types.KindList {
			return fmt.Sprintf("(List.mem %s %s)", operands[1], operands[0]), nil
		}
		return fmt.Sprintf("(Mgencrt.contains %s %s)", operands[0], operands[1]), nil
	case sir.OpComprehension:
		return fmt.Sprintf("Mgencrt.list_comprehension_with_filter %s", operands[0]), nil
	default:
		return "", fmt.Errorf("ocaml target has no realization for container op %s", op.Kind)
	}
}

var _ backend.ContainerSystem = containerSystem{}
