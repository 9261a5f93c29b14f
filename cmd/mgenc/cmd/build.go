package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/config"
	"github.com/sunholo/mgenc/internal/errors"
	"github.com/sunholo/mgenc/internal/optimize"
	"github.com/sunholo/mgenc/internal/xlog"

	_ "github.com/sunholo/mgenc/internal/backend/c"
	_ "github.com/sunholo/mgenc/internal/backend/gotarget"
	_ "github.com/sunholo/mgenc/internal/backend/llvmir"
	_ "github.com/sunholo/mgenc/internal/backend/ocaml"
)

var (
	buildTarget   string
	buildOptLevel string
	buildPrefs    []string
	buildOutput   string
	buildConfig   string
)

var buildCmd = &cobra.Command{
	Use:   "build <file>",
	Short: "Compile a source file to a target backend",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildTarget, "target", "", "backend target: c, go, ocaml, llvmir")
	buildCmd.Flags().StringVar(&buildOptLevel, "opt", "O0", "optimization level O0-O3 (llvmir target only)")
	buildCmd.Flags().StringArrayVar(&buildPrefs, "pref", nil, "preference key=value, repeatable")
	buildCmd.Flags().StringVar(&buildOutput, "out", "", "output path base (default: input file name without extension)")
	buildCmd.Flags().StringVar(&buildConfig, "config", "", "optional compilation config YAML file")
}

func runBuild(_ *cobra.Command, args []string) error {
	path := args[0]
	log := xlog.Default()
	if verbose {
		log = xlog.New(os.Stderr, slog.LevelDebug)
	}

	c, err := loadCompilation()
	if err != nil {
		printDiagnostics([]*errors.Report{reportFromError(err)})
		os.Exit(1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading source file: %w", err)
	}

	res := runFrontend(string(data), path)
	if len(res.Diags) > 0 {
		printDiagnostics(res.Diags)
		os.Exit(exitCodeFor(res.Diags))
	}

	b, ok := backend.Lookup(c.Target)
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: unknown target %q (known: %v)\n", red("Error"), c.Target, backend.Names())
		os.Exit(1)
	}

	prefs := c.ToPreferences()
	art, errs := b.Emitter().Emit(res.Module, prefs)
	if len(errs) > 0 {
		printDiagnostics(errs)
		os.Exit(exitCodeFor(errs))
	}

	if b.Name() == "llvmir" {
		level, err := c.OptimizationLevel()
		if err != nil {
			printDiagnostics([]*errors.Report{reportFromError(err)})
			os.Exit(exitCodeFor([]*errors.Report{reportFromError(err)}))
		}
		if level != optimize.O0 {
			opt := optimize.New("x86_64-unknown-linux-gnu")
			optimized, oerrs := opt.Optimize(art.Source, level)
			if len(oerrs) > 0 {
				printDiagnostics(oerrs)
				os.Exit(exitCodeFor(oerrs))
			}
			art.Source = optimized
		}
	}

	outBase := buildOutput
	if outBase == "" {
		base := filepath.Base(path)
		outBase = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := writeArtifact(b, art, outBase); err != nil {
		return err
	}

	log.Info("build succeeded", "target", c.Target, "output", outBase+art.Extension)
	fmt.Fprintf(os.Stdout, "%s %s -> %s%s\n", green("compiled"), path, outBase, art.Extension)
	return nil
}

// loadCompilation assembles a config.Compilation from an optional YAML
// file merged with the build command's direct flags; flags always win
// over the file, since they are the more specific, later-applied input.
func loadCompilation() (*config.Compilation, error) {
	var c config.Compilation
	if buildConfig != "" {
		loaded, err := config.Load(buildConfig)
		if err != nil {
			return nil, err
		}
		c = *loaded
	}
	if c.Preferences == nil {
		c.Preferences = map[string]string{}
	}
	if buildTarget != "" {
		c.Target = buildTarget
	}
	if buildOptLevel != "" {
		c.Optimization = buildOptLevel
	}
	for _, kv := range buildPrefs {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --pref %q, expected key=value", kv)
		}
		c.Preferences[parts[0]] = parts[1]
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func reportFromError(err error) *errors.Report {
	if rep, ok := errors.AsReport(err); ok {
		return rep
	}
	return &errors.Report{Schema: "mgenc.error/v1", Code: errors.CFG002, Phase: "config", Message: err.Error()}
}
