package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pipeconf",
	Short: "Resolve and inspect layered pipeline configurations",
	Long: `pipeconf resolves a named pipeline configuration by following its FROM
chain, migrating every document to the current schema version, deep-merging
derived documents over their bases, and validating the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagLogLevel string
	flagNoColor  bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(migrateCmd)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if flagNoColor {
			color.NoColor = true
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel(flagLogLevel),
		})))
	}
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(exitCode(err))
	}
}
