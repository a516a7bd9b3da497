package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cooklang/internal/driver"
	"cooklang/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] path",
	Short: "Check recipes for problems",
	Long:  `Check parses one recipe or every recipe under a directory and reports all diagnostics`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	checkCmd.Flags().Int("jobs", 0, "parallel workers, 0 uses all CPUs")
	checkCmd.Flags().Bool("cache", false, "cache parse results on disk")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	p, err := buildParser(cmd)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		result, err := p.ParseFile(path)
		if err != nil {
			return err
		}
		return reportResults(cmd, []driver.DirResult{{Path: path, Result: result}})
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	var cache *driver.RecipeCache
	if useCache, _ := cmd.Flags().GetBool("cache"); useCache {
		cache, err = driver.OpenRecipeCache("cook")
		if err != nil {
			return fmt.Errorf("failed to open recipe cache: %w", err)
		}
	}

	if !shouldUseTUI(mode) {
		results, err := p.ParseDir(context.Background(), path, jobs, cache, nil)
		if err != nil {
			return err
		}
		return reportResults(cmd, results)
	}

	files, err := driver.ListRecipeFiles(path)
	if err != nil {
		return err
	}

	events := make(chan ui.Event, len(files)+1)
	var results []driver.DirResult
	var parseErr error
	go func() {
		defer close(events)
		results, parseErr = p.ParseDir(context.Background(), path, jobs, cache, func(res driver.DirResult) {
			status := ui.StatusOK
			switch {
			case res.Result.HasErrors():
				status = ui.StatusErrors
			case res.Result.Bag.HasWarnings():
				status = ui.StatusWarnings
			}
			events <- ui.Event{Path: res.Path, Status: status}
		})
	}()

	if err := ui.RunProgress("checking recipes", files, events); err != nil {
		return err
	}
	if parseErr != nil {
		return parseErr
	}
	return reportResults(cmd, results)
}

func reportResults(cmd *cobra.Command, results []driver.DirResult) error {
	colorize := useColor(cmd, os.Stderr)
	okColor := color.New(color.FgGreen)
	badColor := color.New(color.FgRed, color.Bold)
	if !colorize {
		okColor.DisableColor()
		badColor.DisableColor()
	}

	var withErrors int
	for _, res := range results {
		if res.Result.Bag.Len() > 0 {
			printDiagnostics(cmd, res.Result)
		}
		if res.Result.HasErrors() {
			withErrors++
			fmt.Fprintf(os.Stderr, "%s %s\n", badColor.Sprint("FAIL"), res.Path)
		} else {
			fmt.Fprintf(os.Stderr, "%s %s\n", okColor.Sprint("ok"), res.Path)
		}
	}

	fmt.Fprintf(os.Stderr, "checked %d recipes, %d with errors\n", len(results), withErrors)
	if withErrors > 0 {
		return fmt.Errorf("%d recipes have errors", withErrors)
	}
	return nil
}
