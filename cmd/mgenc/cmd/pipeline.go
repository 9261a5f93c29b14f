package cmd

import (
	"fmt"
	"os"

	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/errors"
	"github.com/sunholo/mgenc/internal/infer"
	"github.com/sunholo/mgenc/internal/lexer"
	"github.com/sunholo/mgenc/internal/parser"
	"github.com/sunholo/mgenc/internal/sir"
	"github.com/sunholo/mgenc/internal/sirbuild"
)

// pipelineResult carries the SIR module a successful parse+infer+sirbuild
// pass produced, or the first-phase diagnostics that stopped it.
type pipelineResult struct {
	Module *sir.Module
	Diags  []*errors.Report
}

// runFrontend walks source text through the lexer, parser, inference
// engine, and SIR builder in sequence, stopping at the first stage that
// reports diagnostics.
func runFrontend(src, path string) pipelineResult {
	normalized := string(lexer.Normalize([]byte(src)))
	l := lexer.New(normalized, path)
	p := parser.New(l)
	mod := p.ParseModule(path)
	if perrs := p.Errors(); len(perrs) > 0 {
		diags := make([]*errors.Report, len(perrs))
		for i, e := range perrs {
			diags[i] = e.Report()
		}
		return pipelineResult{Diags: diags}
	}

	eng := infer.New()
	results := map[string]*infer.Result{}
	for _, f := range mod.Funcs {
		results[sirbuild.FuncKey("", f.Name)] = eng.InferFunction(f)
	}
	if len(eng.Errors()) > 0 {
		return pipelineResult{Diags: eng.Errors()}
	}

	b := sirbuild.New()
	sm := b.BuildModule(mod, results)
	if len(b.Errors()) > 0 {
		return pipelineResult{Diags: b.Errors()}
	}
	return pipelineResult{Module: sm}
}

// exitCodeFor maps a diagnostic's code prefix to a CLI exit code: 0 success;
// 2 unsupported feature; 3 ambiguous inference; 4 backend limitation; 5 IR
// parse failure. Code families with no named mapping (syntax errors, config
// errors) fall back to a generic failure code of 1.
func exitCodeFor(diags []*errors.Report) int {
	if len(diags) == 0 {
		return 0
	}
	switch diags[0].Code[:3] {
	case "UNS", "HET":
		return 2
	case "AMB", "ANN":
		return 3
	case "BKD", "OPT":
		return 4
	case "IRP":
		return 5
	default:
		return 1
	}
}

func printDiagnostics(diags []*errors.Report) {
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", red(d.Code), d.Phase, d.Message)
	}
}

// writeArtifact emits a compiled program's source file and build recipe
// next to outBase (outBase + the target's file extension, and outBase +
// ".mk").
func writeArtifact(b backend.Backend, art *backend.Artifact, outBase string) error {
	srcPath := outBase + art.Extension
	if err := os.WriteFile(srcPath, []byte(art.Source), 0644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	recipe := b.Builder().BuildRecipe(outBase, art)
	if err := os.WriteFile(outBase+".mk", []byte(recipe), 0644); err != nil {
		return fmt.Errorf("writing build recipe: %w", err)
	}
	return nil
}
