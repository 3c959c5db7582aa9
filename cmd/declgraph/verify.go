package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"declgraph/internal/driver"
)

var verifyCmd = &cobra.Command{
	Use:   "verify file.declb...",
	Short: "Check wire files round-trip losslessly",
	Long: `Verify decodes each file, re-encodes it and decodes again, then requires
exact structural equality and byte-identical encodings`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	okColor := color.New(color.FgGreen)
	badColor := color.New(color.FgRed, color.Bold)
	if !useColor(cmd, cfg) {
		okColor.DisableColor()
		badColor.DisableColor()
	}

	failures := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := driver.Verify(data); err != nil {
			badColor.Fprintf(os.Stdout, "FAIL %s: %v\n", path, err)
			failures++
			continue
		}
		okColor.Fprintf(os.Stdout, "ok   %s\n", path)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d files failed verification", failures, len(args))
	}
	return nil
}
