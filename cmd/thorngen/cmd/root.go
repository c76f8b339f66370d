package cmd

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "thorngen",
		Short:        "thorngen",
		SilenceUsage: true,
		Long:         `Compile-time SQL generator for thorn: lowers .thorn emission files into Go source.`,
	}

	directory   string
	packageName string
	dumpIR      bool
)

// Execute executes the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVarP(&directory, "directory", "d", ".", "directory to scan for *.thorn files")
	rootCmd.PersistentFlags().StringVar(&packageName, "package", "", "package name for generated files (defaults to the Go package already declared in the target directory)")
	rootCmd.PersistentFlags().BoolVar(&dumpIR, "dump-ir", false, "print the translated IR for each file instead of writing Go source")
	return rootCmd.Execute()
}

func init() {
}
