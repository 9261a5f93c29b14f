package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "mgenc",
	Short: "Ahead-of-time translator for the typed source subset",
	Long: `mgenc parses an annotated, Python-like source subset, resolves every
type through a two-stage inference engine, lowers it to a fully typed
static intermediate representation, and emits one of several target
backends (c, go, ocaml, llvmir) plus a build recipe.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostic and stage-timing output")
}
