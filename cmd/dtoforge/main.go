// Command dtoforge generates DTO artifacts from an entity declaration
// manifest produced by the source-analysis front end.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dtoforge",
		Short: "Generate DTOs, filters and mappers from entity declarations",
		Long: `dtoforge resolves the semantic model of annotated entity declarations
(relations, inherited properties, per-operation field policies) and emits
the requested artifacts per entity: data/create/update DTOs, findMany
filters and mapping functions.`,
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dtoforge %s (%s)\n", Version, GitCommit)
		},
	}
}
