// Package main is the entry point for the catalogx CLI.
package main

import (
	"os"

	"github.com/jmylchreest/catalogx/cmd/catalogx/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
