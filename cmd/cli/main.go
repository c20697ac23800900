package main

import (
	"os"

	"github.com/dvloznov/expense-extractor/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
