package main

import (
	"os"

	"socialdash/cmd"
)

func main() {
	// Execute the CLI
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
