// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperr "dawgtools/cli/internal/errors"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Short: "Store an OpenAI API key in the OS keychain",
		Long: `Prompt for an OpenAI API key and store it in the OS keychain, where
extract_batch finds it when OPENAI_API_KEY is not set.

The key is read without echo.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.prompter.Secret("OpenAI API key: ")
			if err != nil {
				return apperr.Wrap(apperr.IO, "reading API key", err)
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return apperr.New(apperr.Usage, "API key is required")
			}

			km, err := a.keychain()
			if err != nil {
				return apperr.Wrap(apperr.Config, "opening keychain", err)
			}
			if err := km.SaveAPIKey(key); err != nil {
				return apperr.Wrap(apperr.Config, "saving API key", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), pterm.Green("API key saved."))
			return nil
		},
	}
}
