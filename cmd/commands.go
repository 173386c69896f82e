// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import "github.com/spf13/cobra"

// command is one entry of the subcommand registry. build declares flags and
// returns a command whose RunE does the work.
type command struct {
	name  string
	build func(a *app) *cobra.Command
}

var commands = []command{
	{name: "extract_batch", build: newExtractBatchCmd},
	{name: "query", build: newQueryCmd},
	{name: "sql2csv", build: newSQL2CSVCmd},
	{name: "queries", build: newQueriesCmd},
	{name: "connect", build: newConnectCmd},
	{name: "dbinfo", build: newDBInfoCmd},
	{name: "login", build: newLoginCmd},
	{name: "logout", build: newLogoutCmd},
	{name: "version", build: newVersionCmd},
}
