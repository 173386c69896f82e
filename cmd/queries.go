// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dawgtools/cli/internal/queries"
)

func newQueriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Short: "List named queries",
		Long: `List the queries available to 'dawgtools query -n NAME'.

Built-in queries ship with dawgtools. Files named NAME.sql in the directory
set by queries.dir (DAWGTOOLS_QUERIES_DIR) are listed too and take precedence
over a built-in query of the same name.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := queries.NewCatalog(a.cfg.Queries.Dir).List()
			if err != nil {
				return err
			}

			data := pterm.TableData{{"NAME", "SOURCE", "DESCRIPTION"}}
			for _, q := range list {
				data = append(data, []string{q.Name, q.Source, q.Description})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}
