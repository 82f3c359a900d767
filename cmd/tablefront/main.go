package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "tablefront",
		Short: "Typed GraphQL APIs over tabular datasets",
		Long: `tablefront exposes columnar tables as a typed GraphQL API without
hand-written per-table code. Given each table's column schema and a
little entity metadata it builds, at startup, one GraphQL object type
per table plus get-by-key and paginated list queries.`,
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
