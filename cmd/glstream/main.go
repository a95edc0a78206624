// Command glstream inspects, summarizes and replays archived GL command
// streams.
//
//	glstream demo frame.glst
//	glstream inspect frame.glst
//	glstream stats a.glst b.msgpack
//	glstream replay --target trace a.glst b.glst
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:               "glstream",
	Short:             "GL command stream toolkit",
	Long:              `glstream records, inspects and replays serialized WebGL-style command streams`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(demoCmd)

	rootCmd.PersistentFlags().String("config", "", "config file (default ./glstream.toml if present)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().String("text", "utf8", "string encoding of the streams (utf8|utf16)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
