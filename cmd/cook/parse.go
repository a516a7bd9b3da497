package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"cooklang/internal/diagfmt"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.cook",
	Short: "Parse a recipe and print the result",
	Long:  `Parse reads one recipe, runs the full pipeline and prints the recipe model`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "json", "output format (json|msgpack|diag-json)")
	parseCmd.Flags().Bool("scale-default", false, "collapse scalable values to their defaults")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	scaleDefault, err := cmd.Flags().GetBool("scale-default")
	if err != nil {
		return fmt.Errorf("failed to get scale-default flag: %w", err)
	}

	p, err := buildParser(cmd)
	if err != nil {
		return err
	}
	result, err := p.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if scaleDefault {
		result.Recipe.DefaultScale()
	}

	switch format {
	case "json":
		printDiagnostics(cmd, result)
		if err := diagfmt.RecipeJSONTo(cmd.OutOrStdout(), result.Recipe, p.Converter()); err != nil {
			return err
		}
	case "msgpack":
		printDiagnostics(cmd, result)
		enc := msgpack.NewEncoder(cmd.OutOrStdout())
		if err := enc.Encode(diagfmt.BuildRecipeOutput(result.Recipe, p.Converter())); err != nil {
			return err
		}
	case "diag-json":
		if err := diagfmt.JSON(cmd.OutOrStdout(), result.Bag, result.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
		}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q (must be json, msgpack or diag-json)", format)
	}

	if result.HasErrors() {
		os.Exit(1)
	}
	return nil
}
