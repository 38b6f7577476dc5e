package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for minimal containers

	githubadapter "github.com/rubygems/configure-trusted-publisher/internal/adapter/driven/github"
	"github.com/rubygems/configure-trusted-publisher/internal/adapter/driven/ruby"
	"github.com/rubygems/configure-trusted-publisher/internal/adapter/driven/rubygems"
	"github.com/rubygems/configure-trusted-publisher/internal/adapter/driven/shell"
	"github.com/rubygems/configure-trusted-publisher/internal/adapter/driving/cli"
	"github.com/rubygems/configure-trusted-publisher/internal/application"
	"github.com/rubygems/configure-trusted-publisher/internal/config"
	"github.com/rubygems/configure-trusted-publisher/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		// The CLI has already shown the error to the operator.
		slog.Debug("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cli.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}, newConfigurer)
	return app.Execute(ctx, os.Args[1:])
}

// newConfigurer is the composition root: it wires every adapter into the
// application services for one run.
func newConfigurer(cfg *config.Config, opts cli.RubygemOptions, prompter driven.Prompter) (cli.Configurer, error) {
	runner := shell.ExecRunner{}

	registry, err := rubygems.NewClient(rubygems.Options{
		BaseURL: cfg.RubyGemsHost,
		APIKey:  cfg.APIKey,
		OTP:     opts.OTP,
	}, prompter)
	if err != nil {
		return nil, err
	}

	var host driven.EnvironmentHost
	if cfg.HasGitHubToken() {
		slog.Debug("managing environments through the GitHub REST API")
		host = githubadapter.NewClient(cfg.GitHubToken)
	} else {
		host = githubadapter.NewCLI(runner)
	}

	return application.NewConfigureService(
		ruby.NewGemspecReader(runner),
		ruby.NewReleaseCheck(runner),
		application.NewEnvironmentService(host),
		application.NewWorkflowSynthesizer(afero.NewOsFs()),
		registry,
		application.NewTrustedPublisherService(registry),
		prompter,
		application.Registry{URL: registry.URL(), Host: registry.Host().ForDisplay()},
	), nil
}
