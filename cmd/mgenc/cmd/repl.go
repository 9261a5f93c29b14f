package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively type-check source snippets",
	Long: `repl reads one function definition at a time, parses and
infers it, and reports the resolved signature or the diagnostics that
stopped resolution. It never evaluates anything; it's a type-checker,
not an interpreter.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(_ *cobra.Command, _ []string) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".mgenc_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Println(bold("mgenc check-repl"))
	fmt.Println(dim("Paste a `def ...:` block, blank line to check, :quit to exit"))

	for {
		var lines []string
		for {
			prompt := "mgenc> "
			if len(lines) > 0 {
				prompt = "   ... "
			}
			input, err := line.Prompt(prompt)
			if err == io.EOF {
				fmt.Println(green("\nGoodbye!"))
				saveHistory(line, historyFile)
				return nil
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
				return nil
			}
			if strings.TrimSpace(input) == ":quit" {
				saveHistory(line, historyFile)
				return nil
			}
			if strings.TrimSpace(input) == "" {
				break
			}
			lines = append(lines, input)
		}
		if len(lines) == 0 {
			continue
		}
		src := strings.Join(lines, "\n") + "\n"
		line.AppendHistory(src)

		res := runFrontend(src, "<repl>")
		if len(res.Diags) > 0 {
			printDiagnostics(res.Diags)
			continue
		}
		for _, f := range res.Module.Funcs {
			fmt.Printf("%s -> %s\n", green(f.Name), f.Return)
		}
	}
}

func saveHistory(line *liner.State, path string) {
	if f, err := os.Create(path); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}
