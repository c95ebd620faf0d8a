// Package main is the entry point for the schlussel CLI.
package main

import (
	"fmt"
	"os"

	"github.com/pepicrft/schlussel/cmd/schlussel/app"
	"github.com/pepicrft/schlussel/internal/formula"
)

func main() {
	registry := formula.NewRegistry()
	if err := app.NewRootCmd(registry).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "there was an error: %v\n", err)
		os.Exit(1)
	}
}
