package llvmir

import (
	"fmt"

	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/sir"
	"github.com/sunholo/mgenc/internal/types"
)

// containerSystem is the feature-gated container realization spec §4.7
// requires: this target declares no container type spelling or op
// realization at all, so every call fails. The emitter does not call it: it
// rejects container-typed values itself with UnsupportedByBackend (BKD001).
type containerSystem struct{}

func (containerSystem) TypeSpelling(t *types.TypeTerm) (string, error) {
	return "", fmt.Errorf("llvmir target does not lower container type %s; containers are feature-gated", t)
}

func (containerSystem) Build(op *sir.ContainerOp, operands []string) (string, error) {
	return "", fmt.Errorf("llvmir target does not lower container op %s; containers are feature-gated", op.Kind)
}

var _ backend.ContainerSystem = containerSystem{}
