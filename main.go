// Package main is the entry point for the pokermetrics CLI tool, which
// counts behavioral poker stats from enriched hand histories and scores
// them against configured ideals.
package main

import "github.com/mgonc/go-poker-metrics/cmd"

func main() {
	cmd.Execute()
}
