package main

import (
	"os"

	"github.com/Swind/go-thread/cmd/threadprio/commands"
	"github.com/pterm/pterm"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
