package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cooklang/internal/units"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List the known units",
	Args:  cobra.NoArgs,
	RunE:  runUnits,
}

func runUnits(cmd *cobra.Command, _ []string) error {
	conv := units.Bundled()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UNIT\tSYMBOL\tQUANTITY\tSYSTEM")
	for _, u := range conv.AllUnits() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Name(), u.Symbol(), u.Quantity, u.System)
	}
	return w.Flush()
}

var convertCmd = &cobra.Command{
	Use:   "convert value from-unit to-unit",
	Short: "Convert a value between units",
	Args:  cobra.ExactArgs(3),
	RunE:  runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[0], err)
	}

	conv := units.Bundled()
	out, err := conv.Convert(value, args[1], args[2])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", strconv.FormatFloat(out, 'f', -1, 64), args[2])
	return nil
}
