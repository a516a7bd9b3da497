package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cooklang/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "cook",
	Short: "Cooklang recipe parser and toolchain",
	Long:  `Cook parses cooklang recipe files and reports everything wrong with them`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(metadataCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(unitsCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("extensions", "all", "cooklang extension set (all|compat|none)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
