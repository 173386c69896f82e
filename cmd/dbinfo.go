// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dawgtools/cli/internal/dsn"
	"dawgtools/cli/internal/logging"
)

func newDBInfoCmd(a *app) *cobra.Command {
	var rawFlag string
	c := &cobra.Command{
		Short: "Show the database connection in use",
		Long: `Show which database connection string (DSN) query and sql2csv would use,
where it came from and the dialect it selects. Passwords are masked.

No connection is made.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, source := a.resolveDSN(rawFlag)

			lines := []string{"Source:     " + source}
			info, err := dsn.ParseInfo(raw)
			if err != nil {
				lines = append(lines, "DSN:        "+logging.Mask(raw), "", pterm.Red(err.Error()))
			} else {
				normalized, dialect, _ := dsn.Resolve(raw)
				lines = append(lines,
					"DSN:        "+logging.Mask(normalized),
					"Type:       "+string(info.Type),
					"Driver:     "+dialect.Driver,
					"Host:       "+hostPort(info),
					"Database:   "+info.Database,
				)
			}

			box := pterm.DefaultBox.
				WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
				WithPadding(1).
				Sprint(strings.Join(lines, "\n"))
			fmt.Fprintln(cmd.OutOrStdout(), box)
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "To update this connection, run: dawgtools connect")
			return nil
		},
	}
	c.Flags().StringVar(&rawFlag, "dsn", "", "Show this DSN instead of the configured one")
	return c
}

func hostPort(info *dsn.DSNInfo) string {
	if info.Host == "" {
		return "-"
	}
	if info.Port == "" {
		return info.Host
	}
	return info.Host + ":" + info.Port
}
