package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"declgraph/internal/driver"
	"declgraph/internal/observ"
	"declgraph/internal/wire"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] file.declb...",
	Short: "Render declaration units as stable text",
	Long:  `Dump decodes wire files and prints a position-free text form suitable for diffing across runs`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().Bool("positions", false, "include source positions")
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	positions, err := cmd.Flags().GetBool("positions")
	if err != nil {
		return fmt.Errorf("failed to get positions flag: %w", err)
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

	header := color.New(color.FgCyan, color.Bold)
	if !useColor(cmd, cfg) {
		header.DisableColor()
	}
	render := timer.Begin("render")
	opts := wire.DumpOptions{Mode: cfg.enforceMode(), Positions: positions}
	for _, path := range args {
		if len(args) > 1 {
			header.Fprintf(os.Stdout, "== %s\n", path)
		}
		if err := wire.Dump(os.Stdout, units[path], opts); err != nil {
			return err
		}
	}
	timer.End(render, "")
	if timings {
		fmt.Fprint(os.Stderr, timer.Summary())
	}
	return nil
}
