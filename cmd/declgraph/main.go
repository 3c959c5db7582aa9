package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"declgraph/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "declgraph",
	Short: "Declaration graph inspection toolchain",
	Long:  `declgraph decodes, diffs and fingerprints serialized declaration units`,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to declgraph.toml (default: search upward from cwd)")
	rootCmd.PersistentFlags().Int("jobs", 0, "decode concurrency (0 = number of CPUs)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command, cfg *config) bool {
	flag, _ := cmd.Root().PersistentFlags().GetString("color")
	if flag == "auto" && cfg != nil && cfg.Color != "" {
		flag = cfg.Color
	}
	switch flag {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}
