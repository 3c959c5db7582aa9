package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"declgraph/internal/driver"
	"declgraph/internal/observ"
)

var hashCmd = &cobra.Command{
	Use:   "hash [flags] file.declb...",
	Short: "Print position-insensitive declaration fingerprints",
	Long: `Hash decodes wire files and prints one cache key per top-level declaration.
Keys ignore source positions, so a formatting-only rewrite keeps them stable`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHash,
}

func runHash(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	jobs, _ := cmd.Root().PersistentFlags().GetInt("jobs")
	timings, _ := cmd.Root().PersistentFlags().GetBool("timings")

	timer := observ.NewTimer()
	load := timer.Begin("load")
	units, err := driver.LoadUnits(cmd.Context(), args, jobs)
	if err != nil {
		return err
	}
	timer.End(load, fmt.Sprintf("%d files", len(args)))

	kindColor := color.New(color.FgGreen)
	if !useColor(cmd, cfg) {
		kindColor.DisableColor()
	}
	report := timer.Begin("hash")
	for _, path := range args {
		for _, entry := range driver.HashReport(units[path]) {
			fmt.Fprintf(os.Stdout, "%016x  %s %s\n", entry.Hash, kindColor.Sprint(entry.Kind), entry.Name)
		}
	}
	timer.End(report, "")
	if timings {
		fmt.Fprint(os.Stderr, timer.Summary())
	}
	return nil
}
