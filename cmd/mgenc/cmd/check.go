package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Parse and type-check a source file without emitting any target",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading source file: %w", err)
	}

	res := runFrontend(string(data), path)
	if len(res.Diags) > 0 {
		printDiagnostics(res.Diags)
		os.Exit(exitCodeFor(res.Diags))
	}

	for _, f := range res.Module.Funcs {
		params := make([]string, len(f.Params))
		for i, p := range f.Params {
			params[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
		}
		fmt.Printf("%s(%s) -> %s\n", green(f.Name), strings.Join(params, ", "), f.Return)
	}
	return nil
}
