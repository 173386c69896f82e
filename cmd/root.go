// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the dawgtools command-line interface: feature
// extraction with a language model, templated SQL queries and the commands
// that manage the secrets they need.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dawgtools/cli/internal/config"
	apperr "dawgtools/cli/internal/errors"
	"dawgtools/cli/internal/keychain"
	"dawgtools/cli/internal/logging"
	"dawgtools/cli/internal/terminal"
)

// app carries what the root command sets up for its subcommands.
type app struct {
	verbosity  int
	quiet      bool
	configFile string

	cfg config.Config
	log *zap.Logger

	// keychain opens the secret store; tests swap in an in-memory ring.
	keychain func() (*keychain.Manager, error)
	prompter *terminal.Prompter
}

func newApp() *app {
	a := &app{log: zap.NewNop()}
	a.keychain = func() (*keychain.Manager, error) {
		return keychain.GetManager(a.filePassword)
	}
	return a
}

// filePassword unlocks the file keyring used when no native store exists.
func (a *app) filePassword(prompt string) (string, error) {
	if a.prompter == nil {
		return "", errors.New("no terminal to ask for the keyring password")
	}
	return a.prompter.Secret(prompt + ": ")
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "dawgtools",
		Short: "Feature extraction and SQL query tools",
		Long: `dawgtools sends text files to a language model to extract structured
features, and renders parameterized SQL templates against SQL Server,
PostgreSQL or SQLite.

Global flags go before the command name:

  dawgtools -v query -q "select 'foo' as col1, %(barval)s as col2" -p barval=bar`,
		Version:          Version,
		SilenceUsage:     true,
		SilenceErrors:    true,
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.Flags().CountVarP(&a.verbosity, "verbose", "v", "Increase verbosity of screen output (-v is verbose, -vv more so)")
	root.Flags().BoolVarP(&a.quiet, "quiet", "q", false, "Only print errors")
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/dawgtools/config.yaml)")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return apperr.Wrap(apperr.Usage, cmd.CommandPath(), err)
	})

	for _, c := range commands {
		sub := c.build(a)
		// builders declare only the argument synopsis
		sub.Use = strings.TrimSpace(c.name + " " + sub.Use)
		root.AddCommand(sub)
	}
	return root
}

// setup loads configuration and builds the logger once flags are parsed.
func (a *app) setup(cmd *cobra.Command) error {
	// each -v adds to the default level
	if !cmd.Root().Flags().Changed("verbose") {
		a.verbosity = logging.DefaultVerbosity
	} else {
		a.verbosity++
	}
	if a.quiet {
		a.verbosity = 0
	}
	a.log = logging.New(logging.Options{Verbosity: a.verbosity, Writer: cmd.ErrOrStderr()})

	cfg, err := config.Load(a.configFile)
	if err != nil {
		return apperr.Wrap(apperr.Config, "loading configuration", err)
	}
	a.cfg = cfg
	if a.prompter == nil {
		a.prompter = terminal.NewPrompter()
	}
	a.log.Debug("configuration loaded", zap.String("file", a.configFile), zap.String("model", cfg.Extract.Model))
	return nil
}

// Execute runs the CLI and exits with the code mapped from the error kind.
func Execute() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, newApp(), args, stdout, stderr)
}

func execute(ctx context.Context, a *app, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return apperr.ExitSuccess
	}
	_ = a.log.Sync()
	reportError(stderr, err)
	return apperr.ExitCode(err)
}

// reportError prints err once, masked.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", logging.PresentError("", err))
}

// usageArgs wraps a positional argument check so that its failures exit
// with the usage code.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return apperr.Wrap(apperr.Usage, cmd.CommandPath(), err)
		}
		return nil
	}
}
