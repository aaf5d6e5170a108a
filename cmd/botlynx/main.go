package main

import (
	"os"

	"botlynx/internal/cli"

	"github.com/pterm/pterm"
)

func main() {
	if err := cli.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
