// Package cli is the command-line driving adapter. It parses flags, sets up
// logging and hands a terminal Prompter to the application layer.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rubygems/configure-trusted-publisher/internal/application"
	"github.com/rubygems/configure-trusted-publisher/internal/config"
	"github.com/rubygems/configure-trusted-publisher/internal/domain/port/driven"
	"github.com/rubygems/configure-trusted-publisher/internal/flags/log"
)

const noColorFlagName = "no-color"

// Streams are the terminal streams the commands talk through.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// RubygemOptions are the inputs of the rubygem command.
type RubygemOptions struct {
	RepositoryDir string
	Name          string
	OTP           string
}

// Configurer runs a configuration. *application.ConfigureService satisfies it.
type Configurer interface {
	Configure(ctx context.Context, req application.ConfigureRequest) (application.ConfigureResult, error)
}

// ConfigurerFactory builds the Configurer for one run. It is called after
// flags and environment are known.
type ConfigurerFactory func(cfg *config.Config, opts RubygemOptions, prompter driven.Prompter) (Configurer, error)

// App holds the state shared by the command tree.
type App struct {
	streams    Streams
	prompter   *Prompter
	factory    ConfigurerFactory
	loadConfig func() (*config.Config, error)
	cfg        *config.Config
}

// NewApp creates an App talking through streams.
func NewApp(streams Streams, factory ConfigurerFactory) *App {
	return &App{
		streams:    streams,
		prompter:   NewTerminalPrompter(streams.In, streams.Out, streams.Err, false),
		factory:    factory,
		loadConfig: config.Load,
	}
}

// Execute runs the command tree with args. Errors are reported to the
// operator before being returned.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.NewRootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		a.prompter.Error(err.Error())
	}
	return err
}

// NewRootCommand builds the command tree.
func (a *App) NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure-trusted-publisher [sub-command]",
		Short: "Configure trusted publishing for packages",
		Long: `Configures a trusted publisher on the package registry so that a GitHub
Actions workflow can release without a long-lived API key, and writes that
workflow into the repository.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: a.preRun,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	cmd.SetIn(a.streams.In)
	cmd.SetOut(a.streams.Out)
	cmd.SetErr(a.streams.Err)

	cmd.PersistentFlags().Bool(noColorFlagName, false, "disable colored output")
	log.RegisterLoggingFlags(cmd.PersistentFlags())

	cmd.AddCommand(a.newRubygemCommand())
	return cmd
}

func (a *App) preRun(cmd *cobra.Command, _ []string) error {
	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	slog.SetDefault(logger)

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	noColor, err := cmd.Flags().GetBool(noColorFlagName)
	if err != nil {
		return err
	}
	if noColor || cfg.NoColor {
		a.prompter.SetColor(false)
	} else {
		a.prompter.SetColor(isTerminal(a.streams.Out))
	}
	return nil
}

func (a *App) newRubygemCommand() *cobra.Command {
	opts := RubygemOptions{}
	cmd := &cobra.Command{
		Use:   "rubygem [REPOSITORY]",
		Short: "Configure trusted publishing for a gem",
		Long: `Sets up trusted publishing for the gem in REPOSITORY (default: the current
directory): optionally adds a "rubygems.org" GitHub environment, writes
.github/workflows/push_gem.yml and registers the workflow as a trusted
publisher of the gem.`,
		Example: `  configure-trusted-publisher rubygem
  configure-trusted-publisher rubygem ../my_gem --name my_gem`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.RepositoryDir = "."
			if len(args) == 1 {
				opts.RepositoryDir = args[0]
			}
			return a.runRubygem(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "name of the gem, when it cannot be read from a single gemspec")
	cmd.Flags().StringVar(&opts.OTP, "otp", "", "one-time code for accounts with multi-factor authentication")
	return cmd
}

func (a *App) runRubygem(ctx context.Context, opts RubygemOptions) error {
	if opts.OTP == "" {
		opts.OTP = a.cfg.OTP
	}

	configurer, err := a.factory(a.cfg, opts, a.prompter)
	if err != nil {
		return err
	}

	result, err := configurer.Configure(ctx, application.ConfigureRequest{
		RepositoryDir: opts.RepositoryDir,
		GemName:       opts.Name,
	})
	if err != nil {
		return err
	}

	a.prompter.Success(fmt.Sprintf("Successfully configured trusted publisher for %s:\n  %s", result.Gem, result.ConfigurationURL))
	return nil
}
