// Package main is the entry point for the drk CLI.
package main

import (
	"github.com/mkessler/deal-ranker/cmd/drk/cmd"
)

func main() {
	cmd.Execute()
}
