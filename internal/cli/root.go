package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

// Exit codes
const (
	ExitSuccess    = 0
	ExitFailure    = 1
	ExitUsageError = 2
)

var rootCmd = &cobra.Command{
	Use:   "codesan [files...]",
	Short: "Redact sensitive data from source files",
	Long: "codesan removes API keys, passwords, emails, URLs, IP addresses, file paths,\n" +
		"database connection strings and comments from source files, writing a\n" +
		"sanitized copy next to each input.",
	Args: cobra.MinimumNArgs(1),
	RunE: runSanitize,
}

func init() {
	addSanitizeFlags(rootCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(versionCmd)
}

// Run executes the root command and returns an exit code.
func Run() int {
	exitCode = ExitSuccess
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print codesan version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "codesan version %s\n", version)
	},
}

// newLogger returns the diagnostics logger for the verbosity flags.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
