// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dawgtools/cli/internal/dsn"
	apperr "dawgtools/cli/internal/errors"
	"dawgtools/cli/internal/output"
	"dawgtools/cli/internal/sqlexec"
	"dawgtools/cli/internal/sqltemplate"
)

// sql2csvMaxChars limits every CSV cell.
const sql2csvMaxChars = 1000

type sql2csvOptions struct {
	outfile     string
	printQuery  bool
	dryRun      bool
	environment []string
	dsn         string
}

func newSQL2CSVCmd(a *app) *cobra.Command {
	var o sql2csvOptions
	c := &cobra.Command{
		Use:   "<infile>",
		Short: "Run an SQL script and write its result as CSV",
		Long: `Run an SQL script and write the rows of its final statement as CSV.

The script may contain {var} placeholders, filled from -e var=val. The same
variables are substituted in the output file name:

  $ cat test.sql
  select
  1 as col1
  ,cast('{date}' as date) as col2

  $ dawgtools sql2csv test.sql -o 'test-{date}.csv' -p -e date=2023-03-01

Batches separated by GO lines run in order in one transaction; the last batch
produces the output. NULL becomes an empty cell and cells are cut to 1000
characters.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSQL2CSV(cmd, args[0], o)
		},
	}

	f := c.Flags()
	f.StringVarP(&o.outfile, "outfile", "o", "", "Output file; .gz compresses (default stdout)")
	f.BoolVarP(&o.printQuery, "print-query", "p", false, "Print the query before executing")
	f.BoolVarP(&o.dryRun, "dry-run", "n", false, "Read the query file and exit")
	f.StringArrayVarP(&o.environment, "environment", "e", nil, "Format variable as var=val (repeatable)")
	f.StringVar(&o.dsn, "dsn", "", "Database connection string")
	return c
}

func (a *app) runSQL2CSV(cmd *cobra.Command, infile string, o sql2csvOptions) error {
	env, err := parsePairs("-e", o.environment)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(infile)
	if err != nil {
		return apperr.Wrap(apperr.IO, "reading query file", err)
	}
	script, err := sqltemplate.FormatBraces(string(raw), env)
	if err != nil {
		return err
	}

	if o.printQuery {
		fmt.Fprintln(cmd.OutOrStdout(), script)
	}
	if o.dryRun {
		return nil
	}

	batches := sqlexec.SplitBatches(script)
	if len(batches) == 0 {
		return apperr.Newf(apperr.Usage, "%s contains no statements", infile)
	}
	outfile := o.outfile
	if outfile != "" {
		if outfile, err = sqltemplate.FormatBraces(outfile, env); err != nil {
			return err
		}
	}

	dsnRaw, source := a.resolveDSN(o.dsn)
	a.log.Info("using DSN", zap.String("source", source))

	ctx := cmd.Context()
	ex, err := a.openDB(ctx, dsnRaw)
	if err != nil {
		return explainDBError(cmd, err)
	}
	defer ex.Close()

	var leading sqlexec.Statements
	if ex.Dialect.Type == dsn.DBTypeSQLServer {
		// row counts of leading statements would otherwise arrive as results
		leading = append(leading, "set nocount on")
	}
	leading = append(leading, batches[:len(batches)-1]...)

	stop := startSpinner(cmd.ErrOrStderr(), "Running "+infile)
	res, err := ex.Query(ctx, sqltemplate.Rendered{SQL: batches[len(batches)-1]}, leading)
	stop()
	if err != nil {
		return explainDBError(cmd, err)
	}

	w, err := openOutput(cmd, outfile)
	if err != nil {
		return err
	}
	if err := output.WriteCSV(w, res, output.CSVOptions{MaxChars: sql2csvMaxChars}); err != nil {
		_ = w.Close()
		return apperr.Wrap(apperr.IO, "writing CSV", err)
	}
	if err := w.Close(); err != nil {
		return apperr.Wrap(apperr.IO, "closing output", err)
	}
	a.log.Info("wrote CSV", zap.Int("rows", len(res.Rows)), zap.String("outfile", outfile))
	return nil
}
