package main

import (
	"os"

	"github.com/agewise-dev/agewise/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
