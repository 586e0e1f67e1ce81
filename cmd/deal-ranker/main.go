// Package main is the entry point for the deal-ranker server.
package main

import (
	"os"

	"github.com/mkessler/deal-ranker/cmd/deal-ranker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
