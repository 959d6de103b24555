// Package main provides the scriptdeps CLI, an explorer for the call graph
// of a program dump.
package main

import (
	"os"

	"github.com/leapstack-labs/scriptdeps/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
