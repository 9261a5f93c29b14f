package ocaml

import (
	"fmt"
	"strings"

	"github.com/sunholo/mgenc/internal/backend"
)

// recipeBuilder produces a dune-based build recipe for a compiled .ml
// artifact (spec §4.9): dune itself does the actual compiler invocation, so
// the generated makefile only has to run `dune build` and copy the built
// executable out of _build.
type recipeBuilder struct{}

func (recipeBuilder) BuildRecipe(programName string, artifact *backend.Artifact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "DUNE ?= dune\n\n")
	fmt.Fprintf(&b, ".PHONY: all clean\n\n")
	fmt.Fprintf(&b, "all: %s\n\n", programName)
	fmt.Fprintf(&b, "%s: %s%s dune-project %s.ml\n\t$(DUNE) build ./%s.exe\n\tcp _build/default/%s.exe %s\n\n",
		programName, programName, artifact.Extension, programName, programName, programName, programName)
	fmt.Fprintf(&b, "clean:\n\t$(DUNE) clean\n\trm -f %s\n", programName)
	return b.String()
}

// DuneProject returns the contents of a minimal dune-project file naming
// the lang version the generated source targets.
func DuneProject() string { return "(lang dune 3.0)\n" }

var _ backend.Builder = recipeBuilder{}
