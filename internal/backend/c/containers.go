package c

import (
	"fmt"

	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/sir"
	"github.com/sunholo/mgenc/internal/types"
)

// containerSystem realizes spec §4.5 for the c target: every container op is
// routed to a runtime helper declared in mgenc_rt.h (the generated file
// #includes it; this package does not generate it), never inlined, since C
// has no generic container literals or operators.
type containerSystem struct{}

func (containerSystem) TypeSpelling(t *types.TypeTerm) (string, error) { return typeSpelling(t) }

func (containerSystem) Build(op *sir.ContainerOp, operands []string) (string, error) {
	switch op.Kind {
	case sir.OpLen:
		return fmt.Sprintf("mgenc_len(%s)", operands[0]), nil
	case sir.OpAppend:
		return fmt.Sprintf("mgenc_append(%s, %s)", operands[0], operands[1]), nil
	case sir.OpGet:
		return fmt.Sprintf("mgenc_get(%s, %s)", operands[0], operands[1]), nil
	case sir.OpSet:
		return fmt.Sprintf("mgenc_set(%s, %s, %s)", operands[0], operands[1], operands[2]), nil
	case sir.OpContains:
		return fmt.Sprintf("mgenc_contains(%s, %s)", operands[0], operands[1]), nil
	case sir.OpComprehension:
		return fmt.Sprintf("mgenc_comprehension(%s)", operands[0]), nil
	default:
		return "", fmt.Errorf("c target has no realization for container op %s", op.Kind)
	}
}

var _ backend.ContainerSystem = containerSystem{}
