package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sunholo/mgenc/internal/backend"

	_ "github.com/sunholo/mgenc/internal/backend/c"
	_ "github.com/sunholo/mgenc/internal/backend/gotarget"
	_ "github.com/sunholo/mgenc/internal/backend/llvmir"
	_ "github.com/sunholo/mgenc/internal/backend/ocaml"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List registered backend targets and their capabilities",
	RunE:  runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(_ *cobra.Command, _ []string) error {
	for _, name := range backend.Names() {
		b, _ := backend.Lookup(name)
		fmt.Printf("%s\t%s\tcontainers=%v\tsemantics=%s\n",
			bold(b.Name()), b.FileExtension(),
			b.SupportsFeature(backend.FeatureContainers), b.ContainerSemantics())
	}
	return nil
}
