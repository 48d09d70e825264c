// Package main provides the modguard CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/modguard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
