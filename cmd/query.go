// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apperr "dawgtools/cli/internal/errors"
	"dawgtools/cli/internal/output"
	"dawgtools/cli/internal/queries"
	"dawgtools/cli/internal/sqlexec"
	"dawgtools/cli/internal/sqltemplate"
)

type queryOptions struct {
	query      string
	infile     string
	name       string
	params     []string
	paramsFile string
	mrns       string
	tempSchema string
	tempData   string
	outfile    string
	format     string
	dryRun     bool
	dsn        string
}

func newQueryCmd(a *app) *cobra.Command {
	var o queryOptions
	c := &cobra.Command{
		Short: "Execute an SQL query template",
		Long: `Render a query template into a parameterized SQL statement and run it.

Templates may use {% if %}, {% for %} and {{ var }} blocks, which are expanded
first, and %(name)s directives, which become bound parameters:

  dawgtools query -q "select 'foo' as col1, %(barval)s as col2" -p barval=bar
  {"col1":"foo","col2":"bar"}

A temporary table can be staged before the query runs, either from a list of
MRNs (loaded into #mrns) or from a create statement and a CSV file.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, o)
		},
	}

	f := c.Flags()
	f.StringVarP(&o.query, "query", "q", "", "SQL query template")
	f.StringVarP(&o.infile, "infile", "i", "", "File containing the query template")
	f.StringVarP(&o.name, "name", "n", "", "Named query (see 'dawgtools queries')")
	f.StringArrayVarP(&o.params, "param", "p", nil, "Template parameter as var=val (repeatable)")
	f.StringVarP(&o.paramsFile, "params-file", "P", "", "JSON or YAML file of template parameters")
	f.StringVar(&o.mrns, "mrns", "", "Whitespace-delimited MRNs to load into a temporary table")
	f.StringVar(&o.tempSchema, "temp-schema", "", "File with a create table statement to run before the query")
	f.StringVar(&o.tempData, "temp-data", "", "CSV file of rows for the --temp-schema table")
	f.StringVarP(&o.outfile, "outfile", "o", "", "Output file; {var} is replaced from parameters, .gz compresses (default stdout)")
	f.StringVarP(&o.format, "format", "f", string(output.JSONL), fmt.Sprintf("Output format %v", output.Formats()))
	f.BoolVarP(&o.dryRun, "dry-run", "x", false, "Print the rendered query and parameters and exit")
	f.StringVar(&o.dsn, "dsn", "", "Database connection string")
	return c
}

func (o queryOptions) validate() error {
	given := 0
	for _, s := range []string{o.query, o.infile, o.name} {
		if s != "" {
			given++
		}
	}
	if given != 1 {
		return apperr.New(apperr.Usage, "exactly one of -q/--query, -i/--infile or -n/--name must be specified")
	}
	if o.mrns != "" && (o.tempSchema != "" || o.tempData != "") {
		return apperr.New(apperr.Usage, "--mrns cannot be combined with --temp-schema/--temp-data")
	}
	if (o.tempSchema == "") != (o.tempData == "") {
		return apperr.New(apperr.Usage, "--temp-schema and --temp-data must be given together")
	}
	return nil
}

func (a *app) runQuery(cmd *cobra.Command, o queryOptions) error {
	if err := o.validate(); err != nil {
		return err
	}
	format, err := output.ParseFormat(o.format)
	if err != nil {
		return err
	}

	tmpl, err := a.queryText(o)
	if err != nil {
		return err
	}
	params, err := queryParams(o)
	if err != nil {
		return err
	}

	if o.dryRun {
		rendered, err := sqltemplate.Render(tmpl, params)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rendered.String())
		return nil
	}

	outfile := o.outfile
	if outfile != "" {
		if outfile, err = sqltemplate.FormatBraces(outfile, params); err != nil {
			return err
		}
	}
	stagers, err := loadStagers(o)
	if err != nil {
		return err
	}

	raw, source := a.resolveDSN(o.dsn)
	a.log.Info("using DSN", zap.String("source", source))

	ctx := cmd.Context()
	ex, err := a.openDB(ctx, raw)
	if err != nil {
		return explainDBError(cmd, err)
	}
	defer ex.Close()

	rendered, err := sqltemplate.RenderStyle(tmpl, params, ex.Dialect.Placeholder)
	if err != nil {
		return err
	}

	start := time.Now()
	stop := startSpinner(cmd.ErrOrStderr(), "Running query")
	res, err := ex.Query(ctx, rendered, stagers...)
	stop()
	if err != nil {
		return explainDBError(cmd, err)
	}
	a.log.Info("query complete", zap.Int("rows", len(res.Rows)), zap.Duration("elapsed", time.Since(start)))

	w, err := openOutput(cmd, outfile)
	if err != nil {
		return err
	}
	if err := output.Write(w, format, res); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return apperr.Wrap(apperr.IO, "closing output", err)
	}
	return nil
}

func (a *app) queryText(o queryOptions) (string, error) {
	switch {
	case o.query != "":
		return o.query, nil
	case o.infile != "":
		b, err := os.ReadFile(o.infile)
		if err != nil {
			return "", apperr.Wrap(apperr.IO, "reading query file", err)
		}
		return string(b), nil
	default:
		return queries.NewCatalog(a.cfg.Queries.Dir).Get(o.name)
	}
}

// queryParams merges the params file with -p pairs; pairs win.
func queryParams(o queryOptions) (map[string]any, error) {
	params := map[string]any{}
	if o.paramsFile != "" {
		p, err := loadParamsFile(o.paramsFile)
		if err != nil {
			return nil, err
		}
		params = p
	}
	pairs, err := parsePairs("-p", o.params)
	if err != nil {
		return nil, err
	}
	for k, v := range pairs {
		params[k] = v
	}
	return params, nil
}

func loadStagers(o queryOptions) ([]sqlexec.Stager, error) {
	switch {
	case o.mrns != "":
		ids, err := sqlexec.LoadIDs(o.mrns)
		if err != nil {
			return nil, err
		}
		return []sqlexec.Stager{sqlexec.IDList{IDs: ids}}, nil
	case o.tempSchema != "":
		create, err := os.ReadFile(o.tempSchema)
		if err != nil {
			return nil, apperr.Wrap(apperr.IO, "reading temp schema", err)
		}
		// Fail before connecting when the statement names no table.
		if _, err := sqlexec.TableName(string(create)); err != nil {
			return nil, err
		}
		rows, err := sqlexec.LoadCSVRows(o.tempData)
		if err != nil {
			return nil, err
		}
		return []sqlexec.Stager{sqlexec.TempTable{Create: string(create), Rows: rows}}, nil
	}
	return nil, nil
}
