package main

import (
	"os"

	"github.com/dosanma1/forge-sub000/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
