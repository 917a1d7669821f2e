// Package main provides the entry point for the agrigraph CLI.
package main

import (
	"os"

	"github.com/agrigpt/agrigraph/cmd/agrigraph/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
