// Package main is the entry point for the dawgtools CLI application.
// It provides feature extraction with a language model and templated SQL queries.
package main

import (
	"dawgtools/cli/cmd"
)

// main is the entry point for the dawgtools CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
