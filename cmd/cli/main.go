// Package main is the entry point for the memarea CLI.
package main

import (
	"os"

	"memarea/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
