package gotarget

import (
	"fmt"

	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/sir"
	"github.com/sunholo/mgenc/internal/types"
)

// containerSystem realizes spec §4.5 for the go target using native slice
// and map operators/builtins wherever Go has one, falling back to a small
// runtime helper (mgencrt package) only for membership tests (MapHas,
// SliceContains). There is no set-union op, and comprehensions are lowered
// by the emitter as an IIFE whatever prefer_idiomatic_syntax says.
type containerSystem struct{}

func (containerSystem) TypeSpelling(t *types.TypeTerm) (string, error) { return typeSpelling(t) }

func (containerSystem) Build(op *sir.ContainerOp, operands []string) (string, error) {
	switch op.Kind {
	case sir.OpLen:
		return fmt.Sprintf("len(%s)", operands[0]), nil
	case sir.OpAppend:
		return fmt.Sprintf("append(%s, %s)", operands[0], operands[1]), nil
	case sir.OpGet:
		return fmt.Sprintf("%s[%s]", operands[0], operands[1]), nil
	case sir.OpSet:
		return fmt.Sprintf("%s[%s] = %s", operands[0], operands[1], operands[2]), nil
	case sir.OpContains:
		if op.Container == types.KindDict || op.Container == types.KindSet {
			return fmt.Sprintf("mgencrt.MapHas(%s, %s)", operands[0], operands[1]), nil
		}
		return fmt.Sprintf("mgencrt.SliceContains(%s, %s)", operands[0], operands[1]), nil
	default:
		return "", fmt.Errorf("go target has no realization for container op %s", op.Kind)
	}
}

var _ backend.ContainerSystem = containerSystem{}
