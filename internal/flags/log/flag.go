// Package log wires slog to the --logformat, --loglevel and --logoutput flags.
// Logs are diagnostics only; operator-facing messages go through the prompter.
package log

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rubygems/configure-trusted-publisher/internal/flags/enum"
)

const (
	FormatFlagName = "logformat"
	LevelFlagName  = "loglevel"
	OutputFlagName = "logoutput"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	LevelWarn  = "warn"
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelError = "error"

	OutputStderr = "stderr"
	OutputStdout = "stdout"
)

// The first entry of each option list is the flag default.
var (
	formatOptions = []string{FormatText, FormatJSON}
	levelOptions  = []string{LevelWarn, LevelDebug, LevelInfo, LevelError}
	outputOptions = []string{OutputStderr, OutputStdout}
)

var levels = map[string]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

var handlers = map[string]func(io.Writer, *slog.HandlerOptions) slog.Handler{
	FormatText: func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewTextHandler(w, o) },
	FormatJSON: func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewJSONHandler(w, o) },
}

// RegisterLoggingFlags adds the logging flags to flagset. A normal run logs
// warnings to stderr only, so stdout carries nothing but the conversation.
//
//	--loglevel debug     # trace every registry and gh call
//	--logformat json     # machine-readable logs
//	--logoutput stdout   # interleave logs with prompts
func RegisterLoggingFlags(flagset *pflag.FlagSet) {
	enum.Var(flagset, FormatFlagName, formatOptions, "log format")
	enum.Var(flagset, LevelFlagName, levelOptions, "minimum level to log")
	enum.Var(flagset, OutputFlagName, outputOptions, "stream the logs are written to")
}

// GetBaseLogger creates a slog.Logger from the command's logging flags.
func GetBaseLogger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := loggerLevelFromCommand(cmd)
	if err != nil {
		return nil, err
	}

	format, err := enum.Get(cmd.Flags(), FormatFlagName)
	if err != nil {
		return nil, fmt.Errorf("reading --%s: %w", FormatFlagName, err)
	}
	newHandler, ok := handlers[format]
	if !ok {
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	output, err := enum.Get(cmd.Flags(), OutputFlagName)
	if err != nil {
		return nil, fmt.Errorf("reading --%s: %w", OutputFlagName, err)
	}
	w := cmd.ErrOrStderr()
	if output == OutputStdout {
		w = cmd.OutOrStdout()
	}

	return slog.New(newHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func loggerLevelFromCommand(cmd *cobra.Command) (slog.Level, error) {
	name, err := enum.Get(cmd.Flags(), LevelFlagName)
	if err != nil {
		return slog.LevelWarn, fmt.Errorf("reading --%s: %w", LevelFlagName, err)
	}
	level, ok := levels[name]
	if !ok {
		return slog.LevelWarn, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}
