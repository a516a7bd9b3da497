package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cooklang/internal/diagfmt"
	"cooklang/internal/driver"
	"cooklang/internal/parser"
	"cooklang/internal/units"
)

// buildParser assembles the pipeline front end from the persistent flags.
func buildParser(cmd *cobra.Command) (*driver.Parser, error) {
	ext, err := readExtensions(cmd)
	if err != nil {
		return nil, err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return driver.New(driver.Options{
		Extensions:     ext,
		Converter:      units.Bundled(),
		MaxDiagnostics: maxDiagnostics,
	}), nil
}

func readExtensions(cmd *cobra.Command) (parser.Extensions, error) {
	value, err := cmd.Root().PersistentFlags().GetString("extensions")
	if err != nil {
		return 0, fmt.Errorf("failed to get extensions flag: %w", err)
	}
	switch value {
	case "", "all":
		return parser.AllExtensions(), nil
	case "compat":
		return parser.CompatExtensions(), nil
	case "none":
		return parser.NoExtensions(), nil
	default:
		return 0, fmt.Errorf("invalid --extensions value %q (expected all|compat|none)", value)
	}
}

// useColor resolves the --color flag against the output terminal.
func useColor(cmd *cobra.Command, f *os.File) bool {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	switch value {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}

// printDiagnostics renders a bag to stderr when it has anything to say.
func printDiagnostics(cmd *cobra.Command, result *driver.Result) {
	if result.Bag.Len() == 0 {
		return
	}
	diagfmt.Pretty(os.Stderr, result.Bag, result.FileSet, diagfmt.PrettyOpts{
		Color:     useColor(cmd, os.Stderr),
		ShowNotes: true,
		ShowHelp:  true,
	})
}
