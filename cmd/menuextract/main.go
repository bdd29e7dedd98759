package main

import (
	"fmt"
	"os"

	"github.com/menuforge/extractor-core/cmd/menuextract/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
