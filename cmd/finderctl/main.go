package main

import (
	"os"

	"github.com/laptopfinder/backend/cmd/finderctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
