// Package main provides the reportlens CLI entry point.
package main

import (
	"os"

	"github.com/reportlens/reportlens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
