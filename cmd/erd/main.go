// Package main provides the erd command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/erd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
