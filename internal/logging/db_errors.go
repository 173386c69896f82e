// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"strings"

	"github.com/pterm/pterm"
)

// DBErrorType represents the category of a database driver error.
type DBErrorType int

const (
	DBErrorUnknown DBErrorType = iota
	DBErrorNetwork
	DBErrorAuth
	DBErrorTimeout
	DBErrorPermission
	DBErrorSyntax
)

// ParseDBError categorizes a database error message.
func ParseDBError(errMsg string) DBErrorType {
	lower := strings.ToLower(errMsg)

	if strings.Contains(lower, "login failed") || strings.Contains(lower, "password authentication failed") ||
		strings.Contains(lower, "kerberos") || strings.Contains(lower, "sspi") {
		return DBErrorAuth
	}
	if strings.Contains(lower, "deadline") || strings.Contains(lower, "timeout") || strings.Contains(lower, "i/o timeout") {
		return DBErrorTimeout
	}
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "unable to open tcp connection") || strings.Contains(lower, "connection reset") {
		return DBErrorNetwork
	}
	if strings.Contains(lower, "permission denied") || strings.Contains(lower, "permission was denied") {
		return DBErrorPermission
	}
	if strings.Contains(lower, "incorrect syntax") || strings.Contains(lower, "syntax error") ||
		strings.Contains(lower, "invalid object name") || strings.Contains(lower, "invalid column name") {
		return DBErrorSyntax
	}
	return DBErrorUnknown
}

// FormatDBError formats a database error in a user-friendly way.
func FormatDBError(errMsg string) string {
	errType := ParseDBError(errMsg)

	var builder strings.Builder
	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Database error"))
	builder.WriteString("\n\n")

	switch errType {
	case DBErrorNetwork:
		builder.WriteString("The database server could not be reached.\n")
		builder.WriteString("Check the server name in your DSN and that you are on the network (or VPN) that can see it.\n")
	case DBErrorAuth:
		builder.WriteString("The database rejected the login.\n")
		builder.WriteString("Trusted connections need a valid Kerberos ticket; SQL logins need a correct user and password.\n")
	case DBErrorTimeout:
		builder.WriteString("The database did not answer in time.\n")
	case DBErrorPermission:
		builder.WriteString("Your login is not allowed to read one of the objects in the query.\n")
	case DBErrorSyntax:
		builder.WriteString("The server could not run the rendered SQL.\n")
		builder.WriteString("Re-run with --dry-run to inspect the statement and its parameters.\n")
	default:
		builder.WriteString("The query failed.\n")
	}

	builder.WriteString("\n")
	if errType == DBErrorNetwork || errType == DBErrorAuth {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Run 'dawgtools dbinfo' to see which DSN is in use"))
		builder.WriteString("\n")
	}

	if strings.TrimSpace(errMsg) != "" {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(errMsg)))
	}
	return builder.String()
}
