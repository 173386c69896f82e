// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	apperr "dawgtools/cli/internal/errors"
)

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Short: "Remove all saved secrets",
		Long: `Remove the database connection string and the OpenAI API key stored in
the OS keychain. Environment variables and the config file are not touched.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			km, err := a.keychain()
			if err != nil {
				return apperr.Wrap(apperr.Config, "opening keychain", err)
			}
			if err := km.ClearAll(); err != nil {
				return apperr.Wrap(apperr.Config, "clearing keychain", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "All saved secrets have been removed")
			return nil
		},
	}
}
