// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"

	"dawgtools/cli/internal/sqltemplate"
)

// Dialect captures what differs between the supported databases when running
// rendered templates and staging temporary tables.
type Dialect struct {
	Type DBType
	// Driver is the database/sql driver name.
	Driver string
	// Placeholder is the positional parameter style the driver expects.
	Placeholder sqltemplate.Style
	// IDTable is the name of the one-column table filled from an ID list.
	IDTable string
	// DropIDTable removes IDTable if a previous statement left it behind.
	DropIDTable string
	// CreateIDTable creates IDTable with a single text column named mrn.
	CreateIDTable string
}

var dialects = map[DBType]Dialect{
	DBTypeSQLServer: {
		Type:          DBTypeSQLServer,
		Driver:        "sqlserver",
		Placeholder:   sqltemplate.AtP,
		IDTable:       "#mrns",
		DropIDTable:   "if object_id('tempdb..#mrns') is not null drop table #mrns",
		CreateIDTable: "create table #mrns (mrn varchar(255))",
	},
	DBTypePostgreSQL: {
		Type:          DBTypePostgreSQL,
		Driver:        "pgx",
		Placeholder:   sqltemplate.Dollar,
		IDTable:       "mrns",
		DropIDTable:   "drop table if exists pg_temp.mrns",
		CreateIDTable: "create temporary table mrns (mrn text)",
	},
	DBTypeSQLite: {
		Type:          DBTypeSQLite,
		Driver:        "sqlite",
		Placeholder:   sqltemplate.Question,
		IDTable:       "mrns",
		DropIDTable:   "drop table if exists temp.mrns",
		CreateIDTable: "create temp table mrns (mrn text)",
	},
}

// DialectFor returns the dialect of t. Unknown types get the SQL Server
// dialect, matching the default DSN.
func DialectFor(t DBType) Dialect {
	if d, ok := dialects[t]; ok {
		return d
	}
	return dialects[DBTypeSQLServer]
}

// InsertIDSQL returns the single-row insert into the ID table.
func (d Dialect) InsertIDSQL() string {
	return "insert into " + d.IDTable + " (mrn) values (" + d.Placeholder.Token(1) + ")"
}

// QuoteIdent quotes a column name for use in generated statements.
func (d Dialect) QuoteIdent(name string) string {
	if d.Type == DBTypeSQLServer {
		return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
