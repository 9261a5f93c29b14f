package llvmir

import (
	"fmt"
	"strings"

	"github.com/sunholo/mgenc/internal/backend"
)

// recipeBuilder produces the low-level IR target's build file (spec §4.9):
// a makefile referencing symbolic LLC/CLANG variables, the produced IR
// file, and the target program name. It never invokes either tool itself.
type recipeBuilder struct{}

func (recipeBuilder) BuildRecipe(programName string, artifact *backend.Artifact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "LLC ?= llc\nCLANG ?= clang\n\n")
	fmt.Fprintf(&b, ".PHONY: all clean\n\n")
	fmt.Fprintf(&b, "all: %s\n\n", programName)
	fmt.Fprintf(&b, "%s.s: %s%s\n\t$(LLC) -filetype=asm -o %s.s %s%s\n\n",
		programName, programName, artifact.Extension, programName, programName, artifact.Extension)
	fmt.Fprintf(&b, "%s: %s.s\n\t$(CLANG) -o %s %s.s\n\n", programName, programName, programName, programName)
	fmt.Fprintf(&b, "clean:\n\trm -f %s %s.s\n", programName, programName)
	return b.String()
}

var _ backend.Builder = recipeBuilder{}
