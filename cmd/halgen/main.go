package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"omibyte.io/stm32hal/pkg"
)

// logFormat is the --log-format flag.
type logFormat pkg.LogFormat

var _ pflag.Value = (*logFormat)(nil)

func (f *logFormat) String() string {
	if pkg.LogFormat(*f) == pkg.LogFormatJSON {
		return "json"
	}
	return "text"
}

func (f *logFormat) Set(s string) error {
	switch strings.ToLower(s) {
	case "text":
		*f = logFormat(pkg.LogFormatText)
	case "json":
		*f = logFormat(pkg.LogFormatJSON)
	default:
		return fmt.Errorf("unknown log format %q (=text, =json)", s)
	}
	return nil
}

func (f *logFormat) Type() string { return "format" }

func newRootCmd() *cobra.Command {
	opts := struct {
		logLevel  string
		logFormat logFormat
	}{}

	rootCmd := &cobra.Command{
		Use:           "halgen",
		Short:         "Register table generator for STM32 devices",
		Long:          "Generate register tables, interrupt enumerations and vector tables for STM32 devices from CMSIS-SVD descriptions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
				return fmt.Errorf("invalid log level %q", opts.logLevel)
			}
			pkg.SetLogLevel(level)
			pkg.SetLogFormat(cmd.ErrOrStderr(), pkg.LogFormat(opts.logFormat))
			pkg.LogDebug(pkg.ComponentCLI, "running", "command", cmd.CommandPath(), "args", args)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "minimum log level (=debug, =info, =warn, =error)")
	rootCmd.PersistentFlags().Var(&opts.logFormat, "log-format", "log output format (=text, =json)")

	rootCmd.AddCommand(newGenCmd(), newVectorsCmd(), newTargetsCmd(), newPeekCmd(), newPokeCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		pkg.LogError(pkg.ComponentCLI, "command failed", "error", err)
		os.Exit(1)
	}
}
