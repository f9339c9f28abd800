package main

import (
	"fmt"
	"os"

	"github.com/MrSnakeDoc/marketbot/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ marketbot: %v\n", err)
		os.Exit(1)
	}
}
