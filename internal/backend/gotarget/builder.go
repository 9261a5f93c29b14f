package gotarget

import (
	"fmt"
	"strings"

	"github.com/sunholo/mgenc/internal/backend"
)

// recipeBuilder produces the makefile recipe for a compiled go artifact
// (spec §4.9), driving `go build` through symbolic toolchain vars rather
// than shelling out directly.
type recipeBuilder struct{}

func (recipeBuilder) BuildRecipe(programName string, artifact *backend.Artifact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "GO ?= go\nGOFLAGS ?=\n\n")
	fmt.Fprintf(&b, ".PHONY: all clean\n\n")
	fmt.Fprintf(&b, "all: %s\n\n", programName)
	fmt.Fprintf(&b, "%s: %s%s\n\t$(GO) build $(GOFLAGS) -o %s %s%s\n\n", programName, programName, artifact.Extension, programName, programName, artifact.Extension)
	fmt.Fprintf(&b, "clean:\n\trm -f %s\n", programName)
	return b.String()
}

var _ backend.Builder = recipeBuilder{}
