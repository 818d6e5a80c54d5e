// Package main is the entry point for the sessionctl CLI tool.
package main

import (
	"os"

	"github.com/dmitrymomot/couchsession/cmd/sessionctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
